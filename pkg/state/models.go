// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package state

import (
	"strings"
	"time"
)

// Faction separates our side of the war from theirs
type Faction string

const (
	FactionFriendly Faction = "FRIENDLY"
	FactionEnemy    Faction = "ENEMY"
)

// ParseFaction resolves a faction label case-insensitively
func ParseFaction(s string) (Faction, bool) {
	switch Faction(strings.ToUpper(strings.TrimSpace(s))) {
	case FactionFriendly:
		return FactionFriendly, true
	case FactionEnemy:
		return FactionEnemy, true
	}
	return "", false
}

// ProtectionStatus is the lifecycle state of a combatant
type ProtectionStatus string

const (
	StatusOpen      ProtectionStatus = "OPEN"
	StatusProtected ProtectionStatus = "PROTECTED"
	StatusDropping  ProtectionStatus = "DROPPING"
	StatusDead      ProtectionStatus = "DEAD"
)

// ParseProtectionStatus resolves a status label case-insensitively
func ParseProtectionStatus(s string) (ProtectionStatus, bool) {
	switch st := ProtectionStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusOpen, StatusProtected, StatusDropping, StatusDead:
		return st, true
	}
	return "", false
}

// CooldownStatus is the lifecycle state of a skill cooldown subject
type CooldownStatus string

const (
	CooldownOpen   CooldownStatus = "OPEN"
	CooldownClosed CooldownStatus = "CLOSED"
)

// ParseCooldownStatus resolves a cooldown label case-insensitively
func ParseCooldownStatus(s string) (CooldownStatus, bool) {
	switch st := CooldownStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case CooldownOpen, CooldownClosed:
		return st, true
	}
	return "", false
}

// TimerStatus is the lifecycle state of an ad-hoc timer
type TimerStatus string

const (
	TimerActive  TimerStatus = "ACTIVE"
	TimerExpired TimerStatus = "EXPIRED"
	TimerStopped TimerStatus = "STOPPED"
)

// Kind tells which family an entity belongs to
type Kind string

const (
	KindCombatant Kind = "combatant"
	KindCooldown  Kind = "cooldown"
	KindTimer     Kind = "timer"
)

// AlertSet records the alert kinds already dispatched for the current run
type AlertSet map[AlertKind]bool

// Has reports whether kind already fired. A nil set has nothing.
func (s AlertSet) Has(kind AlertKind) bool {
	return s[kind]
}

// Clone copies the set
func (s AlertSet) Clone() AlertSet {
	out := make(AlertSet, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Combatant is a player tracked on the war board
type Combatant struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Faction     Faction          `json:"faction"`
	ExternalRef string           `json:"externalRef,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	TriggerTime *time.Time       `json:"triggerTime"`
	Status      ProtectionStatus `json:"status"`
	CreatedAt   time.Time        `json:"createdAt"`
	Alerted     AlertSet         `json:"-"`
}

// Clone returns a deep copy
func (c *Combatant) Clone() *Combatant {
	out := *c
	out.TriggerTime = cloneTime(c.TriggerTime)
	out.Alerted = c.Alerted.Clone()
	return &out
}

// CooldownSubject is a player whose skill sits on a fixed 24h cooldown
type CooldownSubject struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ExternalRef string         `json:"externalRef,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	TriggerTime *time.Time     `json:"triggerTime"`
	Status      CooldownStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Clone returns a deep copy
func (s *CooldownSubject) Clone() *CooldownSubject {
	out := *s
	out.TriggerTime = cloneTime(s.TriggerTime)
	return &out
}

// AdhocTimer is a named countdown with a user supplied duration
type AdhocTimer struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	ExternalRef string      `json:"externalRef,omitempty"`
	EndTime     *time.Time  `json:"endTime"`
	Status      TimerStatus `json:"status"`
	Notified    bool        `json:"notified"`
	CreatedAt   time.Time   `json:"createdAt"`
	Alerted     AlertSet    `json:"-"`
}

// Clone returns a deep copy
func (t *AdhocTimer) Clone() *AdhocTimer {
	out := *t
	out.EndTime = cloneTime(t.EndTime)
	out.Alerted = t.Alerted.Clone()
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
