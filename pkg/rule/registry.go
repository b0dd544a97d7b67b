package rule

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Registry holds the configured alert rules indexed by the signal type they
// observe. A rule that names no signal types observes every signal.
type Registry struct {
	mu        sync.RWMutex
	byID      map[string]Rule
	bySignal  map[string][]Rule
	anySignal []Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:     make(map[string]Rule),
		bySignal: make(map[string][]Rule),
	}
}

// Register indexes rule under each of its signal types. Rule ids are unique.
func (r *Registry) Register(rule Rule) error {
	if rule == nil {
		return fmt.Errorf("cannot register nil rule")
	}
	id := rule.ID()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[id]; dup {
		return fmt.Errorf("rule %s already registered", id)
	}
	r.byID[id] = rule

	types := slices.Clone(rule.SignalTypes())
	if len(types) == 0 {
		r.anySignal = append(r.anySignal, rule)
		return nil
	}
	slices.Sort(types)
	for _, t := range slices.Compact(types) {
		r.bySignal[t] = append(r.bySignal[t], rule)
	}
	return nil
}

// Get returns the rule with id, or nil.
func (r *Registry) Get(id string) Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byID[id]
}

// GetBySignalType returns the enabled rules observing signalType ordered by id,
// so alerts of one poll are claimed in a stable order.
func (r *Registry) GetBySignalType(signalType string) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Rule
	for _, group := range [][]Rule{r.bySignal[signalType], r.anySignal} {
		for _, rule := range group {
			if rule.Config().Enabled {
				out = append(out, rule)
			}
		}
	}

	slices.SortFunc(out, func(a, b Rule) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

// Count returns the number of registered rules.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}
