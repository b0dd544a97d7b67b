package rule

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// RuleFactory builds a rule from its YAML entry.
type RuleFactory func(config RuleConfig) (Rule, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]RuleFactory)
)

// RegisterRuleType makes ruleType available to pipeline.yaml. Registering a
// type again replaces its factory.
func RegisterRuleType(ruleType string, factory RuleFactory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()

	factories[ruleType] = factory
	logrus.Debugf("registered rule type: %s", ruleType)
}

// IsRuleTypeRegistered reports whether a factory exists for ruleType.
func IsRuleTypeRegistered(ruleType string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	_, ok := factories[ruleType]
	return ok
}

// CreateRule builds the rule described by config.
// A disabled rule yields (nil, nil).
func CreateRule(config RuleConfig) (Rule, error) {
	if !config.Enabled {
		logrus.Infof("skipping disabled rule: %s", config.ID)
		return nil, nil
	}

	factoriesMu.RLock()
	factory, ok := factories[config.Type]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown rule type: %s", config.Type)
	}

	logrus.Infof("creating rule: id=%s, type=%s, priority=%d", config.ID, config.Type, config.Priority)
	return factory(config)
}

// RegisterRules builds every enabled rule in configs and adds it to registry.
// A rule that cannot be built is logged and left out, and ValidateWiring
// reports it at startup. A duplicate id is an error.
func RegisterRules(registry *Registry, configs []RuleConfig) error {
	var skipped []error
	registered := 0

	for _, config := range configs {
		r, err := CreateRule(config)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("rule %s: %w", config.ID, err))
			continue
		}
		if r == nil {
			continue
		}
		if err := registry.Register(r); err != nil {
			return fmt.Errorf("failed to register rule %s: %w", r.ID(), err)
		}
		registered++
	}

	if len(skipped) > 0 {
		logrus.Warnf("skipped %d rules: %v", len(skipped), errors.Join(skipped...))
	}
	logrus.Infof("registered %d rules", registered)
	return nil
}
