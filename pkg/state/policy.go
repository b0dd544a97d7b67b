// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// AlertKind identifies a threshold crossing worth telling someone about
type AlertKind string

const (
	AlertThreshold30Min AlertKind = "THRESHOLD_30MIN"
	AlertThreshold15Min AlertKind = "THRESHOLD_15MIN"
	AlertNowOpen        AlertKind = "NOW_OPEN"
	AlertThreshold5Min  AlertKind = "THRESHOLD_5MIN"
	AlertTimerExpired   AlertKind = "TIMER_EXPIRED"
)

// CombatantAlerts lists the alert kinds a combatant can raise, in firing order
var CombatantAlerts = []AlertKind{AlertThreshold30Min, AlertThreshold15Min, AlertNowOpen}

// TimerAlerts lists the alert kinds an ad-hoc timer can raise, in firing order
var TimerAlerts = []AlertKind{AlertThreshold5Min, AlertTimerExpired}

// ParseAlertKind resolves an alert label case-insensitively
func ParseAlertKind(s string) (AlertKind, bool) {
	k := AlertKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range append(append([]AlertKind{}, CombatantAlerts...), TimerAlerts...) {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// ThresholdCrossed reports whether remaining lies in (threshold-width, threshold].
// With width equal to the poll cadence exactly one poll lands inside.
func ThresholdCrossed(remaining, threshold, width time.Duration) bool {
	return remaining > threshold-width && remaining <= threshold
}

// CombatantAlertDue reports whether kind should fire for c at now.
// All combatant thresholds are measured against the end of the window.
func CombatantAlertDue(c *Combatant, kind AlertKind, now time.Time, width time.Duration) bool {
	if c.Status == StatusDead || c.TriggerTime == nil || c.Alerted.Has(kind) {
		return false
	}

	timeToEnd := ComputeWindow(*c.TriggerTime).End.Sub(now)

	switch kind {
	case AlertThreshold30Min:
		return ThresholdCrossed(timeToEnd, 30*time.Minute, width)
	case AlertThreshold15Min:
		return ThresholdCrossed(timeToEnd, 15*time.Minute, width)
	case AlertNowOpen:
		return ThresholdCrossed(timeToEnd, 0, width)
	}

	return false
}

// TimerAlertDue reports whether kind should fire for t at now
func TimerAlertDue(t *AdhocTimer, kind AlertKind, now time.Time, width time.Duration) bool {
	if t.Status == TimerStopped || t.EndTime == nil || t.Alerted.Has(kind) {
		return false
	}

	remaining := t.EndTime.Sub(now)

	switch kind {
	case AlertThreshold5Min:
		return t.Status == TimerActive && ThresholdCrossed(remaining, 5*time.Minute, width)
	case AlertTimerExpired:
		return !t.Notified && remaining <= 0
	}

	return false
}

// EvaluateCombatant returns every alert due for c at now
func EvaluateCombatant(c *Combatant, now time.Time, width time.Duration) []AlertKind {
	var due []AlertKind
	for _, kind := range CombatantAlerts {
		if CombatantAlertDue(c, kind, now, width) {
			due = append(due, kind)
		}
	}
	return due
}

// EvaluateTimer returns every alert due for t at now
func EvaluateTimer(t *AdhocTimer, now time.Time, width time.Duration) []AlertKind {
	var due []AlertKind
	for _, kind := range TimerAlerts {
		if TimerAlertDue(t, kind, now, width) {
			due = append(due, kind)
		}
	}
	return due
}

// ApplyCombatantAlert marks kind as fired and performs its state transition
func ApplyCombatantAlert(c *Combatant, kind AlertKind) {
	if c.Alerted == nil {
		c.Alerted = AlertSet{}
	}
	c.Alerted[kind] = true

	if kind == AlertNowOpen && c.Status != StatusDead {
		logrus.Debugf("combatant %s is open", c.ID)
		c.Status = StatusOpen
	}
}

// ApplyTimerAlert marks kind as fired and performs its state transition
func ApplyTimerAlert(t *AdhocTimer, kind AlertKind) {
	if t.Alerted == nil {
		t.Alerted = AlertSet{}
	}
	t.Alerted[kind] = true

	if kind == AlertTimerExpired {
		logrus.Debugf("timer %s expired", t.ID)
		t.Status = TimerExpired
		t.Notified = true
	}
}
