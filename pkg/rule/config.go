package rule

import (
	"time"

	"github.com/sirupsen/logrus"
)

// RuleConfig is the base configuration for all rules.
// This is typically loaded from YAML configuration files.
type RuleConfig struct {
	ID         string                 `yaml:"id" json:"id"`
	Name       string                 `yaml:"name" json:"name"`
	Type       string                 `yaml:"type" json:"type"` // e.g., "combatant_alert"
	Enabled    bool                   `yaml:"enabled" json:"enabled"`
	Priority   int                    `yaml:"priority" json:"priority"`
	Parameters map[string]interface{} `yaml:"parameters" json:"parameters"` // Rule-specific parameters
}

// GetInt retrieves an integer value from parameters with a default.
func (c *RuleConfig) GetInt(key string, defaultValue int) int {
	if val, ok := c.Parameters[key]; ok {
		if intVal, ok := val.(int); ok {
			return intVal
		}
	}
	return defaultValue
}

// GetString retrieves a string value from parameters with a default.
func (c *RuleConfig) GetString(key string, defaultValue string) string {
	if val, ok := c.Parameters[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

// GetBool retrieves a boolean value from parameters with a default.
func (c *RuleConfig) GetBool(key string, defaultValue bool) bool {
	if val, ok := c.Parameters[key]; ok {
		if boolVal, ok := val.(bool); ok {
			return boolVal
		}
	}
	return defaultValue
}

// GetDuration retrieves a duration from parameters with a default.
// Accepts Go duration strings ("90s", "1m") or a time.Duration.
func (c *RuleConfig) GetDuration(key string, defaultValue time.Duration) time.Duration {
	val, ok := c.Parameters[key]
	if !ok {
		return defaultValue
	}

	switch v := val.(type) {
	case time.Duration:
		return v
	case string:
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			logrus.Warnf("rule %s: invalid duration %q for %s, using %v", c.ID, v, key, defaultValue)
			return defaultValue
		}
		return d
	}
	return defaultValue
}
