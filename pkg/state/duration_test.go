// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"errors"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  time.Duration
		expectErr error
	}{
		{"bare integer is minutes", "90", 90 * time.Minute, nil},
		{"hours and minutes", "1h30m", 90 * time.Minute, nil},
		{"spaced with words", "2 hours 15 mins", 2*time.Hour + 15*time.Minute, nil},
		{"hours only", "3h", 3 * time.Hour, nil},
		{"minutes only", "45m", 45 * time.Minute, nil},
		{"upper case", "1H 5M", time.Hour + 5*time.Minute, nil},
		{"zero rejected", "0", 0, ErrNonPositiveDuration},
		{"zero parts rejected", "0h0m", 0, ErrNonPositiveDuration},
		{"empty rejected", "   ", 0, ErrInvalidDuration},
		{"garbage rejected", "soon", 0, ErrInvalidDuration},
		{"leading zeros rejected", "007", 0, ErrInvalidDuration},
		{"minutes beyond range", "307445735", 0, ErrInvalidDuration},
		{"huge bare integer", "999999999999", 0, ErrInvalidDuration},
		{"digits beyond int64", "99999999999999999999", 0, ErrInvalidDuration},
		{"hours beyond range", "5124096h", 0, ErrInvalidDuration},
		{"sum beyond range", "2562047h 59m", 0, ErrInvalidDuration},
		{"largest hours accepted", "2562047h", 2562047 * time.Hour, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Errorf("ParseDuration(%q) error = %v, expected %v", tt.input, err, tt.expectErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDuration(%q) error = %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ParseDuration(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
