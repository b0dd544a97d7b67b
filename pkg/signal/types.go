package signal

import (
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

const (
	// TypeCombatantObserved is emitted once per combatant per poll.
	TypeCombatantObserved = "combatant_observed"

	// TypeTimerObserved is emitted once per ad-hoc timer per poll.
	TypeTimerObserved = "timer_observed"
)

// CombatantObservedSignal carries a combatant snapshot taken at a poll instant.
type CombatantObservedSignal struct {
	BaseSignal
	Combatant *state.Combatant
}

// NewCombatantObservedSignal creates a signal for c observed at now.
func NewCombatantObservedSignal(c *state.Combatant, now time.Time) *CombatantObservedSignal {
	metadata := map[string]interface{}{
		"status":  string(c.Status),
		"faction": string(c.Faction),
	}
	if c.TriggerTime != nil {
		window := state.ComputeWindow(*c.TriggerTime)
		metadata["time_to_end"] = window.End.Sub(now)
	}

	ctx := &EntityContext{
		Kind:        state.KindCombatant,
		ID:          c.ID,
		Name:        c.Name,
		ExternalRef: c.ExternalRef,
		Faction:     c.Faction,
		Combatant:   c,
	}

	return &CombatantObservedSignal{
		BaseSignal: NewBaseSignal(TypeCombatantObserved, c.ID, now, metadata, ctx),
		Combatant:  c,
	}
}

// TimerObservedSignal carries an ad-hoc timer snapshot taken at a poll instant.
type TimerObservedSignal struct {
	BaseSignal
	Timer *state.AdhocTimer
}

// NewTimerObservedSignal creates a signal for t observed at now.
func NewTimerObservedSignal(t *state.AdhocTimer, now time.Time) *TimerObservedSignal {
	metadata := map[string]interface{}{
		"status":   string(t.Status),
		"notified": t.Notified,
	}
	if t.EndTime != nil {
		metadata["remaining"] = t.EndTime.Sub(now)
	}

	ctx := &EntityContext{
		Kind:        state.KindTimer,
		ID:          t.ID,
		Name:        t.Name,
		ExternalRef: t.ExternalRef,
		Timer:       t,
	}

	return &TimerObservedSignal{
		BaseSignal: NewBaseSignal(TypeTimerObserved, t.ID, now, metadata, ctx),
		Timer:      t,
	}
}
