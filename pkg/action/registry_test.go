package action

import (
	"context"
	"testing"

	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
)

// stubDelivery stands in for the discord, webhook and log deliveries
type stubDelivery struct {
	id      string
	enabled bool
}

func (d *stubDelivery) ID() string   { return d.id }
func (d *stubDelivery) Name() string { return d.id }
func (d *stubDelivery) Execute(context.Context, *rule.Trigger, *signal.EntityContext) error {
	return nil
}
func (d *stubDelivery) Config() ActionConfig {
	return ActionConfig{ID: d.id, Type: "discord_message", Enabled: d.enabled}
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	if registry.Count() != 0 {
		t.Fatalf("Expected empty registry, got count %d", registry.Count())
	}

	channel := &stubDelivery{id: "discord_channel", enabled: true}
	if err := registry.Register(channel); err != nil {
		t.Fatalf("Failed to register action: %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected count 1, got %d", registry.Count())
	}

	if err := registry.Register(&stubDelivery{id: "discord_channel"}); err == nil {
		t.Error("Expected error when registering duplicate action id")
	}
	if err := registry.Register(nil); err == nil {
		t.Error("Expected error when registering nil action")
	}
}

func TestRegistry_Lookup(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&stubDelivery{id: "discord_channel", enabled: true})
	_ = registry.Register(&stubDelivery{id: "board_webhook", enabled: false})

	tests := []struct {
		id          string
		wantGet     bool
		wantEnabled bool
	}{
		{"discord_channel", true, true},
		{"board_webhook", true, false},
		{"alert_log", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := registry.Get(tt.id) != nil; got != tt.wantGet {
				t.Errorf("Get(%s) present = %v, expected %v", tt.id, got, tt.wantGet)
			}
			if got := registry.GetEnabled(tt.id) != nil; got != tt.wantEnabled {
				t.Errorf("GetEnabled(%s) present = %v, expected %v", tt.id, got, tt.wantEnabled)
			}
		})
	}
}

func TestActionConfig_GetParameterHelpers(t *testing.T) {
	config := ActionConfig{
		Parameters: map[string]interface{}{
			"int_value":    42,
			"yaml_slice":   []interface{}{"x", 1, "y"},
			"string_value": "test",
			"bool_value":   true,
			"slice_value":  []string{"a", "b", "c"},
		},
	}

	// Test GetParameterInt
	if val := config.GetParameterInt("int_value", 0); val != 42 {
		t.Errorf("Expected int 42, got %d", val)
	}
	if val := config.GetParameterInt("missing", 99); val != 99 {
		t.Errorf("Expected default 99, got %d", val)
	}

	// Test GetParameterString
	if val := config.GetParameterString("string_value", ""); val != "test" {
		t.Errorf("Expected string 'test', got '%s'", val)
	}

	// Test GetParameterBool
	if val := config.GetParameterBool("bool_value", false); val != true {
		t.Errorf("Expected bool true, got %v", val)
	}

	// Test GetParameterStringSlice
	slice := config.GetParameterStringSlice("slice_value", nil)
	if len(slice) != 3 {
		t.Errorf("Expected slice length 3, got %d", len(slice))
	}
	if slice[0] != "a" || slice[1] != "b" || slice[2] != "c" {
		t.Errorf("Expected slice [a b c], got %v", slice)
	}

	// non-string entries of a decoded yaml list are dropped
	yamlSlice := config.GetParameterStringSlice("yaml_slice", nil)
	if len(yamlSlice) != 2 || yamlSlice[0] != "x" || yamlSlice[1] != "y" {
		t.Errorf("Expected slice [x y], got %v", yamlSlice)
	}
}
