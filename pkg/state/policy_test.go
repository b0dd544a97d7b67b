// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"testing"
	"time"
)

func TestThresholdCrossed(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		expected  bool
	}{
		{"exactly at threshold", 30 * time.Minute, true},
		{"just inside window", 29*time.Minute + time.Second, true},
		{"lower bound excluded", 29 * time.Minute, false},
		{"above threshold", 30*time.Minute + time.Second, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ThresholdCrossed(tt.remaining, 30*time.Minute, time.Minute); got != tt.expected {
				t.Errorf("ThresholdCrossed(%v) = %v, expected %v", tt.remaining, got, tt.expected)
			}
		})
	}
}

func TestEvaluateCombatant_FiresOncePerCrossing(t *testing.T) {
	c := shotAt(baseTime)
	counts := map[AlertKind]int{}

	// Start at an odd offset so polls never line up with the boundaries
	for now := at(200*time.Minute + 17*time.Second); now.Before(at(270 * time.Minute)); now = now.Add(time.Minute) {
		for _, kind := range EvaluateCombatant(c, now, time.Minute) {
			counts[kind]++
			ApplyCombatantAlert(c, kind)
		}
	}

	for _, kind := range CombatantAlerts {
		if counts[kind] != 1 {
			t.Errorf("%s fired %d times, expected 1", kind, counts[kind])
		}
	}
	if c.Status != StatusOpen {
		t.Errorf("status = %s after NOW_OPEN, expected OPEN", c.Status)
	}
}

func TestEvaluateCombatant_WindowScalesWithCadence(t *testing.T) {
	c := shotAt(baseTime)
	fired := 0

	for now := at(200 * time.Minute); now.Before(at(240 * time.Minute)); now = now.Add(5 * time.Minute) {
		for _, kind := range EvaluateCombatant(c, now, 5*time.Minute) {
			if kind == AlertThreshold30Min {
				fired++
			}
		}
	}

	if fired != 1 {
		t.Errorf("THRESHOLD_30MIN fired %d times at a 5 minute cadence, expected 1", fired)
	}
}

func TestEvaluateCombatant_SkipsDeadAndUntriggered(t *testing.T) {
	now := at(230 * time.Minute)

	dead := shotAt(baseTime)
	dead.Status = StatusDead
	if got := EvaluateCombatant(dead, now, time.Minute); len(got) != 0 {
		t.Errorf("dead combatant raised %v", got)
	}

	fresh := &Combatant{ID: "c2", Status: StatusOpen}
	if got := EvaluateCombatant(fresh, now, time.Minute); len(got) != 0 {
		t.Errorf("untriggered combatant raised %v", got)
	}
}

func TestEvaluateTimer(t *testing.T) {
	timer := &AdhocTimer{ID: "t1", Status: TimerStopped}
	if err := StartTimer(timer, 20*time.Minute, baseTime); err != nil {
		t.Fatalf("StartTimer() error = %v", err)
	}

	counts := map[AlertKind]int{}
	for now := at(30 * time.Second); now.Before(at(30 * time.Minute)); now = now.Add(time.Minute) {
		for _, kind := range EvaluateTimer(timer, now, time.Minute) {
			counts[kind]++
			ApplyTimerAlert(timer, kind)
		}
	}

	if counts[AlertThreshold5Min] != 1 {
		t.Errorf("THRESHOLD_5MIN fired %d times, expected 1", counts[AlertThreshold5Min])
	}
	if counts[AlertTimerExpired] != 1 {
		t.Errorf("TIMER_EXPIRED fired %d times, expected 1", counts[AlertTimerExpired])
	}
	if timer.Status != TimerExpired || !timer.Notified {
		t.Errorf("status = %s notified = %v, expected EXPIRED and true", timer.Status, timer.Notified)
	}
}

func TestEvaluateTimer_ExpiredByRecomputeStillNotifies(t *testing.T) {
	timer := &AdhocTimer{ID: "t1", Status: TimerStopped}
	_ = StartTimer(timer, time.Minute, baseTime)

	RefreshTimer(timer, at(2*time.Minute))
	if timer.Status != TimerExpired {
		t.Fatalf("status = %s, expected EXPIRED", timer.Status)
	}

	due := EvaluateTimer(timer, at(2*time.Minute), time.Minute)
	if len(due) != 1 || due[0] != AlertTimerExpired {
		t.Errorf("due = %v, expected [TIMER_EXPIRED]", due)
	}
}

func TestParseAlertKind(t *testing.T) {
	if k, ok := ParseAlertKind("now_open"); !ok || k != AlertNowOpen {
		t.Errorf("ParseAlertKind(now_open) = %s, %v", k, ok)
	}
	if _, ok := ParseAlertKind("THRESHOLD_1MIN"); ok {
		t.Error("unknown alert kind should not parse")
	}
}
