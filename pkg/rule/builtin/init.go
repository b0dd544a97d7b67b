package builtin

import (
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
)

// RegisterBuiltinRules registers all built-in rule types with the factory.
// deps can be nil, in which case the default alert window is used.
func RegisterBuiltinRules(deps *rule.RuleDependencies) {
	rule.RegisterRuleType(CombatantAlertRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewCombatantAlertRule(config, deps)
		if err != nil {
			return nil, err
		}
		return r, nil
	})

	rule.RegisterRuleType(TimerAlertRuleID, func(config rule.RuleConfig) (rule.Rule, error) {
		r, err := NewTimerAlertRule(config, deps)
		if err != nil {
			return nil, err
		}
		return r, nil
	})
}
