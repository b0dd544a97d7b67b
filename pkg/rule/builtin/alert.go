package builtin

import (
	"context"
	"fmt"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/sirupsen/logrus"
)

const (
	// CombatantAlertRuleID is the rule type for protection window alerts
	CombatantAlertRuleID = "combatant_alert"

	// TimerAlertRuleID is the rule type for ad-hoc timer alerts
	TimerAlertRuleID = "timer_alert"
)

// parseAlert reads the required "alert" parameter and checks it belongs to allowed.
func parseAlert(config rule.RuleConfig, allowed []state.AlertKind) (state.AlertKind, error) {
	raw := config.GetString("alert", "")
	if raw == "" {
		return "", fmt.Errorf("rule %s: parameter 'alert' is required", config.ID)
	}

	alert, ok := state.ParseAlertKind(raw)
	if !ok {
		return "", fmt.Errorf("rule %s: unknown alert %q", config.ID, raw)
	}

	for _, a := range allowed {
		if a == alert {
			return alert, nil
		}
	}
	return "", fmt.Errorf("rule %s: alert %s does not apply to %s", config.ID, alert, config.Type)
}

// CombatantAlertRule fires one protection alert per crossing.
// Every threshold is measured against the end of the protection window.
type CombatantAlertRule struct {
	config rule.RuleConfig
	alert  state.AlertKind
	window time.Duration
}

// NewCombatantAlertRule creates a combatant alert rule from config.
func NewCombatantAlertRule(config rule.RuleConfig, deps *rule.RuleDependencies) (*CombatantAlertRule, error) {
	alert, err := parseAlert(config, state.CombatantAlerts)
	if err != nil {
		return nil, err
	}
	window := config.GetDuration("window", deps.Window())

	logrus.Infof("creating combatant alert rule %s: alert=%s window=%v", config.ID, alert, window)

	return &CombatantAlertRule{
		config: config,
		alert:  alert,
		window: window,
	}, nil
}

// ID returns the rule identifier.
func (r *CombatantAlertRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *CombatantAlertRule) Name() string {
	if r.config.Name != "" {
		return r.config.Name
	}
	return "Combatant Alert"
}

// SignalTypes returns the signal types this rule handles.
func (r *CombatantAlertRule) SignalTypes() []string {
	return []string{signal.TypeCombatantObserved}
}

// Config returns the rule configuration.
func (r *CombatantAlertRule) Config() rule.RuleConfig {
	return r.config
}

// Alert returns the alert kind this rule fires.
func (r *CombatantAlertRule) Alert() state.AlertKind {
	return r.alert
}

// Evaluate checks whether the alert is due for the observed combatant.
func (r *CombatantAlertRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *rule.Trigger, error) {
	observed, ok := sig.(*signal.CombatantObservedSignal)
	if !ok {
		return false, nil, fmt.Errorf("expected CombatantObservedSignal, got %T", sig)
	}

	c := observed.Combatant
	if !state.CombatantAlertDue(c, r.alert, sig.Timestamp(), r.window) {
		return false, nil, nil
	}

	trigger := rule.NewTrigger(r.ID(), sig, r.alert, fmt.Sprintf("%s for %s", r.alert, c.Name), r.config.Priority).
		WithMetadata("name", c.Name).
		WithMetadata("faction", string(c.Faction)).
		WithMetadata("external_ref", c.ExternalRef).
		WithMetadata("window", r.window)

	return true, trigger, nil
}

// TimerAlertRule fires the 5-minute warning or the expiry notice for ad-hoc timers.
type TimerAlertRule struct {
	config rule.RuleConfig
	alert  state.AlertKind
	window time.Duration
}

// NewTimerAlertRule creates a timer alert rule from config.
func NewTimerAlertRule(config rule.RuleConfig, deps *rule.RuleDependencies) (*TimerAlertRule, error) {
	alert, err := parseAlert(config, state.TimerAlerts)
	if err != nil {
		return nil, err
	}
	window := config.GetDuration("window", deps.Window())

	logrus.Infof("creating timer alert rule %s: alert=%s window=%v", config.ID, alert, window)

	return &TimerAlertRule{
		config: config,
		alert:  alert,
		window: window,
	}, nil
}

// ID returns the rule identifier.
func (r *TimerAlertRule) ID() string {
	return r.config.ID
}

// Name returns the rule name.
func (r *TimerAlertRule) Name() string {
	if r.config.Name != "" {
		return r.config.Name
	}
	return "Timer Alert"
}

// SignalTypes returns the signal types this rule handles.
func (r *TimerAlertRule) SignalTypes() []string {
	return []string{signal.TypeTimerObserved}
}

// Config returns the rule configuration.
func (r *TimerAlertRule) Config() rule.RuleConfig {
	return r.config
}

// Alert returns the alert kind this rule fires.
func (r *TimerAlertRule) Alert() state.AlertKind {
	return r.alert
}

// Evaluate checks whether the alert is due for the observed timer.
func (r *TimerAlertRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *rule.Trigger, error) {
	observed, ok := sig.(*signal.TimerObservedSignal)
	if !ok {
		return false, nil, fmt.Errorf("expected TimerObservedSignal, got %T", sig)
	}

	t := observed.Timer
	if !state.TimerAlertDue(t, r.alert, sig.Timestamp(), r.window) {
		return false, nil, nil
	}

	trigger := rule.NewTrigger(r.ID(), sig, r.alert, fmt.Sprintf("%s for timer %s", r.alert, t.Name), r.config.Priority).
		WithMetadata("name", t.Name).
		WithMetadata("external_ref", t.ExternalRef).
		WithMetadata("window", r.window)

	return true, trigger, nil
}
