package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfig_Shipped(t *testing.T) {
	t.Setenv("PIPELINE_CONCURRENT", "")
	t.Setenv("ALERT_WEBHOOK_URL", "")

	config, err := LoadConfig(filepath.Join("..", "..", "config", "pipeline.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if config.Name != "alerts" {
		t.Errorf("name = %q", config.Name)
	}
	if config.Concurrent {
		t.Error("expected sequential dispatch by default")
	}
	if len(config.Rules) != 5 {
		t.Errorf("expected 5 rules, got %d", len(config.Rules))
	}
	if len(config.Actions) != 3 {
		t.Errorf("expected 3 actions, got %d", len(config.Actions))
	}

	for _, ac := range config.Actions {
		if ac.ID == "board_webhook" && ac.Parameters["url"] != nil {
			t.Errorf("expected empty webhook url, got %v", ac.Parameters["url"])
		}
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseConfig_EnvExpansion(t *testing.T) {
	t.Setenv("WARDADDY_TEST_LEVEL", "warn")

	data := []byte(`
name: ${WARDADDY_TEST_NAME:fallback}
rules:
  - id: r1
    type: combatant_alert
    enabled: true
    actions: [a1]
    parameters:
      alert: NOW_OPEN
actions:
  - id: a1
    type: log
    enabled: true
    parameters:
      level: ${WARDADDY_TEST_LEVEL:info}
`)

	config, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}

	if config.Name != "fallback" {
		t.Errorf("name = %q, expected the default", config.Name)
	}
	if got := config.Actions[0].Parameters["level"]; got != "warn" {
		t.Errorf("level = %v, expected warn", got)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "valid",
			config: Config{
				Rules:   []RuleConfig{{ID: "r1", Type: "combatant_alert", Actions: []string{"a1"}}},
				Actions: []ActionConfig{{ID: "a1", Type: "log"}},
			},
		},
		{
			name:    "empty rule id",
			config:  Config{Rules: []RuleConfig{{Type: "combatant_alert"}}},
			wantErr: "rule with empty ID",
		},
		{
			name:    "duplicate rule id",
			config:  Config{Rules: []RuleConfig{{ID: "r1", Type: "x"}, {ID: "r1", Type: "x"}}},
			wantErr: "duplicate rule ID: r1",
		},
		{
			name:    "empty rule type",
			config:  Config{Rules: []RuleConfig{{ID: "r1"}}},
			wantErr: "rule r1 has empty type",
		},
		{
			name:    "empty action id",
			config:  Config{Actions: []ActionConfig{{Type: "log"}}},
			wantErr: "action with empty ID",
		},
		{
			name:    "duplicate action id",
			config:  Config{Actions: []ActionConfig{{ID: "a1", Type: "log"}, {ID: "a1", Type: "log"}}},
			wantErr: "duplicate action ID: a1",
		},
		{
			name:    "empty action type",
			config:  Config{Actions: []ActionConfig{{ID: "a1"}}},
			wantErr: "action a1 has empty type",
		},
		{
			name: "unknown action reference",
			config: Config{
				Rules: []RuleConfig{{ID: "r1", Type: "x", Actions: []string{"missing"}}},
			},
			wantErr: "references unknown action: missing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, expected %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Pipeline(t *testing.T) {
	config := Config{
		Concurrent: true,
		Rules: []RuleConfig{
			{ID: "r1", Type: "x", Enabled: true, Actions: []string{"a1", "a2", "a1"}},
			{ID: "r0", Type: "x", Enabled: true},
			{ID: "r2", Type: "x", Enabled: false, Actions: []string{"a1"}},
		},
	}

	p := config.Pipeline()

	if p.Name != "alerts" {
		t.Errorf("name = %q, expected default", p.Name)
	}
	if !p.Concurrent {
		t.Error("expected concurrent pipeline")
	}
	if got := p.GetActions("r1"); len(got) != 2 || got[0] != "a1" || got[1] != "a2" {
		t.Errorf("r1 actions = %v", got)
	}
	if got := p.GetActions("r2"); len(got) != 0 {
		t.Errorf("disabled rule mapped to %v", got)
	}
	if got := p.RoutedRules(); len(got) != 1 || got[0] != "r1" {
		t.Errorf("routed rules = %v, expected [r1]", got)
	}
}

func TestConfig_Conversions(t *testing.T) {
	config := Config{
		Rules: []RuleConfig{{
			ID: "r1", Name: "Rule", Type: "timer_alert", Enabled: true, Priority: 5,
			Parameters: map[string]interface{}{"alert": "TIMER_EXPIRED"},
		}},
		Actions: []ActionConfig{{
			ID: "a1", Name: "Action", Type: "log", Enabled: true,
			Parameters: map[string]interface{}{"level": "debug"},
		}},
	}

	rules := config.RuleConfigs()
	if len(rules) != 1 || rules[0].Priority != 5 || rules[0].GetString("alert", "") != "TIMER_EXPIRED" {
		t.Errorf("RuleConfigs() = %+v", rules)
	}

	actions := config.ActionConfigs()
	if len(actions) != 1 || actions[0].GetParameterString("level", "") != "debug" {
		t.Errorf("ActionConfigs() = %+v", actions)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WARDADDY_SET", "value")
	os.Unsetenv("WARDADDY_UNSET")

	tests := []struct {
		in   string
		want string
	}{
		{"${WARDADDY_SET}", "value"},
		{"${WARDADDY_SET:other}", "value"},
		{"${WARDADDY_UNSET:fallback}", "fallback"},
		{"${WARDADDY_UNSET}", ""},
		{"plain", "plain"},
		{"url: ${WARDADDY_UNSET:https://example.com/x}", "url: https://example.com/x"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := expandEnvVars(tt.in); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, expected %q", tt.in, got, tt.want)
			}
		})
	}
}
