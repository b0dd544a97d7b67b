package action

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// ActionFactory builds an action from its YAML entry.
type ActionFactory func(config ActionConfig) (Action, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]ActionFactory)
)

// RegisterActionType makes actionType available to pipeline.yaml. Builtin
// deliveries register themselves from the builtin package.
func RegisterActionType(actionType string, factory ActionFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[actionType] = factory
	logrus.Debugf("registered action type: %s", actionType)
}

// IsActionTypeRegistered reports whether a factory exists for actionType.
func IsActionTypeRegistered(actionType string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	_, ok := factories[actionType]
	return ok
}

// CreateAction builds the delivery described by config.
// A disabled action yields (nil, nil).
func CreateAction(config ActionConfig) (Action, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled action: %s", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, ok := factories[config.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown action type: %s", config.Type)
	}

	logrus.Infof("creating action: id=%s, type=%s", config.ID, config.Type)
	return factory(config)
}

// RegisterActions builds every enabled action in configs and adds it to
// registry. An action that cannot be built is logged and left out, so a rule
// routed to it fails ValidateWiring. A duplicate id is an error.
func RegisterActions(registry *Registry, configs []ActionConfig) error {
	var skipped []error
	registered := 0

	for _, config := range configs {
		a, err := CreateAction(config)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("action %s: %w", config.ID, err))
			continue
		}
		if a == nil {
			continue
		}
		if err := registry.Register(a); err != nil {
			return fmt.Errorf("failed to register action %s: %w", a.ID(), err)
		}
		registered++
	}

	if len(skipped) > 0 {
		logrus.Warnf("skipped %d actions: %v", len(skipped), errors.Join(skipped...))
	}
	logrus.Infof("registered %d actions", registered)
	return nil
}
