package timeparse

import (
	"errors"
	"testing"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
)

var now = time.Date(2025, 11, 21, 18, 45, 0, 0, time.UTC)

func TestAttempts(t *testing.T) {
	tests := []struct {
		name     string
		attempt  Attempt
		input    string
		expected time.Time
		ok       bool
	}{
		{"rfc3339 with zone", RFC3339, "2025-11-21T15:30:00+02:00", time.Date(2025, 11, 21, 13, 30, 0, 0, time.UTC), true},
		{"iso without zone is utc", RFC3339, "2025-11-21 15:30", time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC), true},
		{"rfc3339 rejects slashes", RFC3339, "21/11 15:30", time.Time{}, false},

		{"day month without year", DayMonth, "21/11 15:30", time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC), true},
		{"day month short year with seconds", DayMonth, "03/01/26 07:05:09", time.Date(2026, 1, 3, 7, 5, 9, 0, time.UTC), true},
		{"day month full year", DayMonth, "21/11/2024 15:30:00", time.Date(2024, 11, 21, 15, 30, 0, 0, time.UTC), true},
		{"day month invalid month", DayMonth, "11/21 15:30", time.Time{}, false},
		{"day month requires time", DayMonth, "21/11", time.Time{}, false},

		{"time of day", TimeOfDay, "15:30", time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC), true},
		{"time of day with seconds", TimeOfDay, "7:05:09", time.Date(2025, 11, 21, 7, 5, 9, 0, time.UTC), true},
		{"time of day out of range", TimeOfDay, "25:00", time.Time{}, false},

		{"month day pm", MonthDay, "11/21/2025 3:30 PM", time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC), true},
		{"month day midnight am", MonthDay, "11/21/2025 12:10 am", time.Date(2025, 11, 21, 0, 10, 0, 0, time.UTC), true},
		{"month day date only", MonthDay, "1/2/2025", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), true},
		{"month day falls back to day month", MonthDay, "21/11/25 08:00", time.Date(2025, 11, 21, 8, 0, 0, 0, time.UTC), true},
		{"month day impossible either way", MonthDay, "31/31/2025", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.attempt(tt.input, now)
			if ok != tt.ok {
				t.Fatalf("ok = %v, expected %v (got %v)", ok, tt.ok, got)
			}
			if ok && !got.Equal(tt.expected) {
				t.Errorf("got %v, expected %v", got, tt.expected)
			}
		})
	}
}

func TestParser_ChainOrder(t *testing.T) {
	clk := clock.NewManual(now)

	got, err := Protection(clk).Parse("  21/11 15:30 ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Equal(time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC)) {
		t.Errorf("protection chain read %v", got)
	}

	got, err = Cooldown(clk).Parse("11/21/2025 3:30 PM")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !got.Equal(time.Date(2025, 11, 21, 15, 30, 0, 0, time.UTC)) {
		t.Errorf("cooldown chain read %v", got)
	}
}

func TestParser_Unparseable(t *testing.T) {
	p := Protection(clock.NewManual(now))

	for _, input := range []string{"", "yesterday", "99/99 99:99"} {
		if _, err := p.Parse(input); !errors.Is(err, ErrUnparseable) {
			t.Errorf("Parse(%q) error = %v, expected ErrUnparseable", input, err)
		}
	}
}
