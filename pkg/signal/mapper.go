package signal

import (
	"sync"

	"github.com/MattchuPichuu/WarDaddy/pkg/service"
)

// SignalMapper turns one slice of a store snapshot into signals.
// This allows extending the processor with observations of other entity kinds.
type SignalMapper interface {
	// Name identifies the mapper (e.g., "combatants").
	Name() string

	// MapToSignals converts the snapshot into signals.
	MapToSignals(snap *service.Snapshot) []Signal
}

// MapperRegistry manages registered signal mappers.
// Mappers run in registration order so signal order is stable across polls.
type MapperRegistry struct {
	mappers map[string]SignalMapper
	order   []string
	mu      sync.RWMutex
}

// NewMapperRegistry creates a new empty mapper registry.
func NewMapperRegistry() *MapperRegistry {
	return &MapperRegistry{
		mappers: make(map[string]SignalMapper),
	}
}

// Register adds a mapper to the registry.
// If a mapper with the same name already exists, it is replaced in place.
func (r *MapperRegistry) Register(mapper SignalMapper) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.mappers[mapper.Name()]; !exists {
		r.order = append(r.order, mapper.Name())
	}
	r.mappers[mapper.Name()] = mapper
}

// Get returns the mapper with the given name, or nil.
func (r *MapperRegistry) Get(name string) SignalMapper {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mappers[name]
}

// All returns the registered mappers in registration order.
func (r *MapperRegistry) All() []SignalMapper {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]SignalMapper, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.mappers[name])
	}
	return out
}

// Count returns the number of registered mappers.
func (r *MapperRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.mappers)
}

type combatantMapper struct{}

func (combatantMapper) Name() string { return "combatants" }

func (combatantMapper) MapToSignals(snap *service.Snapshot) []Signal {
	out := make([]Signal, 0, len(snap.Combatants))
	for _, c := range snap.Combatants {
		out = append(out, NewCombatantObservedSignal(c, snap.At))
	}
	return out
}

type timerMapper struct{}

func (timerMapper) Name() string { return "timers" }

func (timerMapper) MapToSignals(snap *service.Snapshot) []Signal {
	out := make([]Signal, 0, len(snap.Timers))
	for _, t := range snap.Timers {
		out = append(out, NewTimerObservedSignal(t, snap.At))
	}
	return out
}
