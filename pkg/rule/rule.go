package rule

import (
	"context"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// Rule evaluates signals and emits triggers when conditions are met.
// Rules are registered in a Registry and evaluated by the Engine.
type Rule interface {
	// ID returns unique rule identifier.
	ID() string

	// Name returns human-readable rule name.
	Name() string

	// SignalTypes returns which signal types this rule handles.
	// An empty slice means the rule handles all signal types.
	SignalTypes() []string

	// Evaluate checks if the signal matches rule conditions.
	// Returns true and trigger data if rule matches, false otherwise.
	// Returns error only for unexpected failures, not rule mismatches.
	Evaluate(ctx context.Context, sig signal.Signal) (bool, *Trigger, error)

	// Config returns the rule's configuration.
	Config() RuleConfig
}

// Trigger represents a due alert that should execute actions.
type Trigger struct {
	RuleID    string                 // ID of the rule that triggered
	EntityID  string                 // Entity the alert is about
	Kind      state.Kind             // Kind of that entity
	Alert     state.AlertKind        // Which alert is due
	Timestamp time.Time              // Poll instant the alert was found due
	Reason    string                 // Human-readable reason for the trigger
	Metadata  map[string]interface{} // Rule-specific data for actions
	Priority  int                    // Priority for action ordering (higher = first)
}

// NewTrigger creates a new trigger for the entity observed by sig.
func NewTrigger(ruleID string, sig signal.Signal, alert state.AlertKind, reason string, priority int) *Trigger {
	t := &Trigger{
		RuleID:    ruleID,
		EntityID:  sig.EntityID(),
		Alert:     alert,
		Timestamp: sig.Timestamp(),
		Reason:    reason,
		Metadata:  make(map[string]interface{}),
		Priority:  priority,
	}
	if ctx := sig.Context(); ctx != nil {
		t.Kind = ctx.Kind
	}
	return t
}

// WithMetadata adds metadata to the trigger and returns it for chaining.
func (t *Trigger) WithMetadata(key string, value interface{}) *Trigger {
	t.Metadata[key] = value
	return t
}
