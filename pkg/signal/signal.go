package signal

import (
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// Signal represents one observation of a tracked entity at a poll instant.
// Signals are produced by the Processor from a store snapshot and
// are consumed by the Rule Engine for evaluation.
type Signal interface {
	// Type returns the signal type identifier (e.g., "combatant_observed").
	Type() string

	// EntityID returns the observed entity identifier.
	EntityID() string

	// Timestamp returns the poll instant the observation was taken at.
	Timestamp() time.Time

	// Metadata returns additional signal-specific data.
	// This allows rules to access signal-specific information without type assertions.
	Metadata() map[string]interface{}

	// Context returns the observed entity.
	Context() *EntityContext
}

// EntityContext wraps a snapshot copy of the observed entity.
// Exactly one of Combatant or Timer is set, matching Kind.
type EntityContext struct {
	Kind        state.Kind
	ID          string
	Name        string
	ExternalRef string
	Faction     state.Faction
	Combatant   *state.Combatant
	Timer       *state.AdhocTimer
}

// BaseSignal carries the fields every signal shares
type BaseSignal struct {
	signalType string
	entityID   string
	timestamp  time.Time
	metadata   map[string]interface{}
	context    *EntityContext
}

// NewBaseSignal creates a BaseSignal. A nil metadata map is replaced by an empty one.
func NewBaseSignal(signalType, entityID string, timestamp time.Time, metadata map[string]interface{}, context *EntityContext) BaseSignal {
	if metadata == nil {
		metadata = make(map[string]interface{})
	}
	return BaseSignal{
		signalType: signalType,
		entityID:   entityID,
		timestamp:  timestamp,
		metadata:   metadata,
		context:    context,
	}
}

// Type implements Signal interface.
func (s *BaseSignal) Type() string {
	return s.signalType
}

// EntityID implements Signal interface.
func (s *BaseSignal) EntityID() string {
	return s.entityID
}

// Timestamp implements Signal interface.
func (s *BaseSignal) Timestamp() time.Time {
	return s.timestamp
}

// Metadata implements Signal interface.
func (s *BaseSignal) Metadata() map[string]interface{} {
	return s.metadata
}

// Context implements Signal interface.
func (s *BaseSignal) Context() *EntityContext {
	return s.context
}
