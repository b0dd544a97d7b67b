package pipeline

import (
	"fmt"
	"strings"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
)

// ValidateWiring validates that the pipeline is correctly wired.
// It checks that:
// - All enabled rules in config have a registered type and instance
// - All enabled actions in config have a registered type and instance
// - Enabled rules only point at enabled actions
//
// This catches common mistakes like:
// - Forgetting to register a rule or action type factory
// - Typos in rule/action IDs or types
// - An alert rule whose only delivery was switched off
func ValidateWiring(ruleRegistry *rule.Registry, actionRegistry *action.Registry, config *Config) error {
	var errors []string

	for _, rc := range config.Rules {
		if !rc.Enabled {
			continue
		}

		if !rule.IsRuleTypeRegistered(rc.Type) {
			errors = append(errors, fmt.Sprintf("rule '%s' has unknown type '%s'", rc.ID, rc.Type))
		}

		if ruleRegistry.Get(rc.ID) == nil {
			errors = append(errors, fmt.Sprintf("rule '%s' (type=%s) is enabled in config but not registered", rc.ID, rc.Type))
		}

		for _, actionID := range rc.Actions {
			if actionRegistry.GetEnabled(actionID) == nil {
				errors = append(errors, fmt.Sprintf("rule '%s' references action '%s' which is disabled or not registered", rc.ID, actionID))
			}
		}
	}

	for _, ac := range config.Actions {
		if !ac.Enabled {
			continue
		}

		if !action.IsActionTypeRegistered(ac.Type) {
			errors = append(errors, fmt.Sprintf("action '%s' has unknown type '%s'", ac.ID, ac.Type))
		}

		if actionRegistry.Get(ac.ID) == nil {
			errors = append(errors, fmt.Sprintf("action '%s' (type=%s) is enabled in config but not registered", ac.ID, ac.Type))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("pipeline wiring validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
