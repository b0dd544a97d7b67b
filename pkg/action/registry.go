package action

import (
	"fmt"
	"sync"
)

// Registry holds the configured alert deliveries by id.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]Action
}

func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Action)}
}

// Register adds a. Action ids are unique.
func (r *Registry) Register(a Action) error {
	if a == nil {
		return fmt.Errorf("cannot register nil action")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.actions[a.ID()]; dup {
		return fmt.Errorf("action %s already registered", a.ID())
	}
	r.actions[a.ID()] = a
	return nil
}

// Get returns the action with id, or nil.
func (r *Registry) Get(id string) Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.actions[id]
}

// GetEnabled is Get restricted to actions whose config is enabled.
func (r *Registry) GetEnabled(id string) Action {
	if a := r.Get(id); a != nil && a.Config().Enabled {
		return a
	}
	return nil
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.actions)
}
