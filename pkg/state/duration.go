// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned when a duration text has no hour or minute part
// or does not fit in a time.Duration
var ErrInvalidDuration = errors.New("invalid duration")

var (
	bareMinutesPattern = regexp.MustCompile(`^(0|[1-9]\d*)$`)
	hoursPattern       = regexp.MustCompile(`(\d+)\s*h`)
	minutesPattern     = regexp.MustCompile(`(\d+)\s*m`)
)

// ParseDuration reads a timer duration such as "90", "2h", "45m" or "1h 30m".
// A bare integer is minutes and must be written without leading zeros, so
// "007" is rejected. The total must be strictly positive.
func ParseDuration(text string) (time.Duration, error) {
	cleaned := strings.ToLower(strings.TrimSpace(text))
	if cleaned == "" {
		return 0, ErrInvalidDuration
	}

	if bareMinutesPattern.MatchString(cleaned) {
		d, err := scaled(cleaned, time.Minute)
		if err != nil {
			return 0, err
		}
		return positive(d)
	}

	h := hoursPattern.FindStringSubmatch(cleaned)
	m := minutesPattern.FindStringSubmatch(cleaned)
	if h == nil && m == nil {
		return 0, ErrInvalidDuration
	}

	var total time.Duration
	if h != nil {
		hours, err := scaled(h[1], time.Hour)
		if err != nil {
			return 0, err
		}
		total = hours
	}
	if m != nil {
		minutes, err := scaled(m[1], time.Minute)
		if err != nil {
			return 0, err
		}
		if total > math.MaxInt64-minutes {
			return 0, ErrInvalidDuration
		}
		total += minutes
	}

	return positive(total)
}

// scaled converts a run of digits into a count of unit, refusing overflow
func scaled(digits string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n > math.MaxInt64/int64(unit) {
		return 0, ErrInvalidDuration
	}
	return time.Duration(n) * unit, nil
}

func positive(d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, ErrNonPositiveDuration
	}
	return d, nil
}
