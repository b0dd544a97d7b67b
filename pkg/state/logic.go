// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNonPositiveDuration is returned when a timer is started with a duration <= 0
var ErrNonPositiveDuration = errors.New("duration must be positive")

// ResolveCombatant derives a combatant's status at now.
// The returned remaining duration counts down to the next boundary and is nil
// when nothing is counting down (DEAD or OPEN).
func ResolveCombatant(c *Combatant, now time.Time) (ProtectionStatus, *time.Duration) {
	// DEAD is sticky and time-independent
	if c.Status == StatusDead {
		return StatusDead, nil
	}

	if c.TriggerTime == nil {
		return StatusOpen, nil
	}

	w := ComputeWindow(*c.TriggerTime)
	switch {
	case now.Before(w.Start):
		remaining := w.Start.Sub(now)
		return StatusProtected, &remaining
	case now.Before(w.End):
		remaining := w.End.Sub(now)
		return StatusDropping, &remaining
	default:
		return StatusOpen, nil
	}
}

// ResolveCooldown derives a cooldown subject's status at now
func ResolveCooldown(s *CooldownSubject, now time.Time) (CooldownStatus, *time.Duration) {
	if s.TriggerTime == nil {
		return CooldownOpen, nil
	}

	expiry := CooldownExpiry(*s.TriggerTime)
	if now.Before(expiry) {
		remaining := expiry.Sub(now)
		return CooldownClosed, &remaining
	}

	return CooldownOpen, nil
}

// ResolveTimer derives an ad-hoc timer's status at now.
// EXPIRED and STOPPED are sticky until the timer is started again.
func ResolveTimer(t *AdhocTimer, now time.Time) (TimerStatus, *time.Duration) {
	if t.Status != TimerActive || t.EndTime == nil {
		return t.Status, nil
	}

	if !t.EndTime.After(now) {
		return TimerExpired, nil
	}

	remaining := t.EndTime.Sub(now)
	return TimerActive, &remaining
}

// FormatRemaining renders d as zero-padded HH:MM:SS, clamped at 00:00:00
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}

	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// RefreshCombatant writes the derived status back into c.
// Returns true only when the stored status changed. DEAD is never touched.
func RefreshCombatant(c *Combatant, now time.Time) bool {
	if c.Status == StatusDead {
		return false
	}

	status, _ := ResolveCombatant(c, now)
	if status == c.Status {
		return false
	}

	logrus.Debugf("combatant %s status %s -> %s", c.ID, c.Status, status)
	c.Status = status
	return true
}

// RefreshCooldown writes the derived cooldown status back into s.
// Returns true only when the stored status changed.
func RefreshCooldown(s *CooldownSubject, now time.Time) bool {
	status, _ := ResolveCooldown(s, now)
	if status == s.Status {
		return false
	}

	logrus.Debugf("cooldown %s status %s -> %s", s.ID, s.Status, status)
	s.Status = status
	return true
}

// RefreshTimer moves an elapsed ACTIVE timer to EXPIRED.
// Returns true only when the stored status changed.
func RefreshTimer(t *AdhocTimer, now time.Time) bool {
	status, _ := ResolveTimer(t, now)
	if status == t.Status {
		return false
	}

	logrus.Debugf("timer %s status %s -> %s", t.ID, t.Status, status)
	t.Status = status
	return true
}

// RecordShot starts a fresh protection window at now
func RecordShot(c *Combatant, now time.Time) {
	c.TriggerTime = &now
	c.Status = StatusProtected
	c.Alerted = AlertSet{}

	logrus.Debugf("shot recorded for %s at %v", c.ID, now)
}

// RecordSkillUse starts a fresh cooldown at now
func RecordSkillUse(s *CooldownSubject, now time.Time) {
	s.TriggerTime = &now
	s.Status = CooldownClosed

	logrus.Debugf("skill use recorded for %s at %v", s.ID, now)
}

// ForceCombatantState overrides the derived status and drops the trigger time
// so that no stale window can resurrect an older status.
func ForceCombatantState(c *Combatant, status ProtectionStatus) {
	c.Status = status
	c.TriggerTime = nil
	c.Alerted = AlertSet{}
}

// ForceCooldownState overrides the cooldown status and drops the trigger time
func ForceCooldownState(s *CooldownSubject, status CooldownStatus) {
	s.Status = status
	s.TriggerTime = nil
}

// EditCombatantTrigger applies a manual correction of the shot time.
// A new instant clears DEAD and re-derives the status; clearing the instant
// leaves DEAD in place and opens everything else.
func EditCombatantTrigger(c *Combatant, trigger *time.Time, now time.Time) {
	c.Alerted = AlertSet{}

	if trigger == nil {
		c.TriggerTime = nil
		if c.Status != StatusDead {
			c.Status = StatusOpen
		}
		return
	}

	t := trigger.UTC()
	c.TriggerTime = &t
	c.Status = StatusOpen
	RefreshCombatant(c, now)
}

// EditCooldownTrigger applies a manual correction of the skill-use time
func EditCooldownTrigger(s *CooldownSubject, trigger *time.Time, now time.Time) {
	if trigger == nil {
		s.TriggerTime = nil
		s.Status = CooldownOpen
		return
	}

	t := trigger.UTC()
	s.TriggerTime = &t
	RefreshCooldown(s, now)
}

// StartTimer arms t to run for d from now
func StartTimer(t *AdhocTimer, d time.Duration, now time.Time) error {
	if d <= 0 {
		return ErrNonPositiveDuration
	}

	end := now.Add(d)
	t.EndTime = &end
	t.Status = TimerActive
	t.Notified = false
	t.Alerted = AlertSet{}

	logrus.Debugf("timer %s started, ends at %v", t.ID, end)
	return nil
}

// StopTimer disarms t regardless of its current state
func StopTimer(t *AdhocTimer) {
	t.EndTime = nil
	t.Status = TimerStopped
	t.Notified = false
	t.Alerted = AlertSet{}
}
