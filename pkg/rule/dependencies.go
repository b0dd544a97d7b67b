package rule

import "time"

// DefaultAlertWindow is used when neither the rule nor the process configures a width.
const DefaultAlertWindow = time.Minute

// RuleDependencies holds process-level settings that rule factories can use.
// Rules receive this struct and read only what they need.
type RuleDependencies struct {
	// AlertWindow is the default threshold window width, normally the poll cadence
	AlertWindow time.Duration
}

// NewRuleDependencies creates a new dependencies container
func NewRuleDependencies() *RuleDependencies {
	return &RuleDependencies{AlertWindow: DefaultAlertWindow}
}

// WithAlertWindow sets the default window width. Non-positive values are ignored.
func (d *RuleDependencies) WithAlertWindow(width time.Duration) *RuleDependencies {
	if width > 0 {
		d.AlertWindow = width
	}
	return d
}

// Window returns the configured width, tolerating a nil receiver
func (d *RuleDependencies) Window() time.Duration {
	if d == nil || d.AlertWindow <= 0 {
		return DefaultAlertWindow
	}
	return d.AlertWindow
}
