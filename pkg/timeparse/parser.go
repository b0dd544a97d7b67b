package timeparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/sirupsen/logrus"
)

// ErrUnparseable is returned when no attempt in the chain accepts the text
var ErrUnparseable = errors.New("unparseable timestamp")

// Attempt tries to read text as an absolute instant.
// now anchors formats that omit the date or the year.
type Attempt func(text string, now time.Time) (time.Time, bool)

// Parser runs an ordered chain of attempts and stops at the first success.
type Parser struct {
	clock    clock.Clock
	attempts []Attempt
}

// NewParser creates a parser over the given chain
func NewParser(clk clock.Clock, attempts ...Attempt) *Parser {
	return &Parser{
		clock:    clk,
		attempts: attempts,
	}
}

// Protection is the chain used for shot times: ISO, day/month, time of day
func Protection(clk clock.Clock) *Parser {
	return NewParser(clk, RFC3339, DayMonth, TimeOfDay)
}

// Cooldown is the chain used for skill-use times: ISO, month/day with AM/PM, time of day
func Cooldown(clk clock.Clock) *Parser {
	return NewParser(clk, RFC3339, MonthDay, TimeOfDay)
}

// Parse resolves text to a UTC instant
func (p *Parser) Parse(text string) (time.Time, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("%w: empty input", ErrUnparseable)
	}

	now := p.clock.Now()
	for i, attempt := range p.attempts {
		if t, ok := attempt(cleaned, now); ok {
			logrus.Debugf("timestamp %q accepted by attempt %d: %v", cleaned, i, t)
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseable, cleaned)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

// RFC3339 accepts ISO-8601 style timestamps and RFC 1123 dates.
// Layouts without a zone are read as UTC.
func RFC3339(text string, _ time.Time) (time.Time, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

var dayMonthPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\s+(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// DayMonth accepts "DD/MM HH:MM", "DD/MM/YY HH:MM:SS" and "DD/MM/YYYY HH:MM".
// A two digit year means 20YY; a missing year means the current one.
func DayMonth(text string, now time.Time) (time.Time, bool) {
	m := dayMonthPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		year = expandYear(m[3])
	}

	return buildUTC(year, month, day, atoi(m[4]), atoi(m[5]), atoi(m[6]))
}

var timeOfDayPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?$`)

// TimeOfDay accepts "HH:MM" or "HH:MM:SS" on today's date
func TimeOfDay(text string, now time.Time) (time.Time, bool) {
	m := timeOfDayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	return buildUTC(now.Year(), int(now.Month()), now.Day(), atoi(m[1]), atoi(m[2]), atoi(m[3]))
}

var monthDayPattern = regexp.MustCompile(`(?i)^(\d{1,2})/(\d{1,2})/(\d{2,4})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*(AM|PM))?)?$`)

// MonthDay accepts "M/D/YYYY [HH:MM[:SS]] [AM|PM]".
// When the first two numbers cannot be month/day they are read as day/month.
func MonthDay(text string, _ time.Time) (time.Time, bool) {
	m := monthDayPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}

	first, second := atoi(m[1]), atoi(m[2])
	year := expandYear(m[3])
	hours, minutes, seconds := atoi(m[4]), atoi(m[5]), atoi(m[6])

	switch strings.ToUpper(m[7]) {
	case "PM":
		if hours < 12 {
			hours += 12
		}
	case "AM":
		if hours == 12 {
			hours = 0
		}
	}

	if t, ok := buildUTC(year, first, second, hours, minutes, seconds); ok {
		return t, true
	}
	return buildUTC(year, second, first, hours, minutes, seconds)
}

// buildUTC rejects out of range fields instead of letting time.Date normalize them
func buildUTC(year, month, day, hour, minute, second int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func expandYear(s string) int {
	year := atoi(s)
	if len(s) == 2 {
		year += 2000
	}
	return year
}

func atoi(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
