package rule

import (
	"context"
	"testing"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// testRule is a rule with scripted outcomes for testing
type testRule struct {
	id          string
	name        string
	signalTypes []string
	config      RuleConfig
	shouldMatch bool
	shouldError bool
}

func (r *testRule) ID() string            { return r.id }
func (r *testRule) Name() string          { return r.name }
func (r *testRule) SignalTypes() []string { return r.signalTypes }
func (r *testRule) Config() RuleConfig    { return r.config }

func (r *testRule) Evaluate(ctx context.Context, sig signal.Signal) (bool, *Trigger, error) {
	if r.shouldError {
		return false, nil, &testError{msg: "test error"}
	}

	if !r.shouldMatch {
		return false, nil, nil
	}

	trigger := NewTrigger(r.id, sig, state.AlertNowOpen, "test trigger", r.config.Priority)
	trigger.Metadata["test"] = true

	return true, trigger, nil
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

var pollTime = time.Date(2025, 11, 21, 16, 20, 0, 0, time.UTC)

func newTestSignal(signalType, entityID string) signal.Signal {
	base := signal.NewBaseSignal(signalType, entityID, pollTime, nil, &signal.EntityContext{
		Kind: state.KindCombatant,
		ID:   entityID,
	})
	return &base
}

func TestNewEngine(t *testing.T) {
	registry := NewRegistry()
	engine := NewEngine(registry)

	if engine.Rules() != registry {
		t.Error("Expected engine to use provided registry")
	}
}

func TestEngine_Evaluate_NoRules(t *testing.T) {
	engine := NewEngine(NewRegistry())

	triggers, err := engine.Evaluate(context.Background(), newTestSignal(signal.TypeCombatantObserved, "c1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 0 {
		t.Errorf("Expected 0 triggers, got %d", len(triggers))
	}
}

func TestEngine_Evaluate_NilSignal(t *testing.T) {
	engine := NewEngine(NewRegistry())

	triggers, err := engine.Evaluate(context.Background(), nil)
	if err != nil || triggers != nil {
		t.Errorf("Evaluate(nil) = %v, %v", triggers, err)
	}
}

func TestEngine_Evaluate_TriggerFields(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&testRule{
		id:          "open_now",
		signalTypes: []string{signal.TypeCombatantObserved},
		config:      RuleConfig{ID: "open_now", Enabled: true, Priority: 7},
		shouldMatch: true,
	})

	triggers, err := NewEngine(registry).Evaluate(context.Background(), newTestSignal(signal.TypeCombatantObserved, "c1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 1 {
		t.Fatalf("Expected 1 trigger, got %d", len(triggers))
	}

	tr := triggers[0]
	if tr.RuleID != "open_now" || tr.EntityID != "c1" || tr.Kind != state.KindCombatant {
		t.Errorf("trigger identity = %+v", tr)
	}
	if tr.Alert != state.AlertNowOpen || tr.Priority != 7 {
		t.Errorf("trigger alert/priority = %s/%d", tr.Alert, tr.Priority)
	}
	if !tr.Timestamp.Equal(pollTime) {
		t.Errorf("trigger timestamp = %v, expected the signal's poll time", tr.Timestamp)
	}
}

func TestEngine_Evaluate_ErrorDoesNotStopOthers(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&testRule{
		id:          "a_broken",
		config:      RuleConfig{ID: "a_broken", Enabled: true},
		shouldError: true,
	})
	_ = registry.Register(&testRule{
		id:          "b_working",
		config:      RuleConfig{ID: "b_working", Enabled: true},
		shouldMatch: true,
	})

	triggers, err := NewEngine(registry).Evaluate(context.Background(), newTestSignal(signal.TypeTimerObserved, "t1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(triggers) != 1 || triggers[0].RuleID != "b_working" {
		t.Errorf("triggers = %+v, expected only b_working", triggers)
	}
}

func TestEngine_Evaluate_PriorityOrder(t *testing.T) {
	registry := NewRegistry()
	for _, r := range []struct {
		id       string
		priority int
	}{{"low", 1}, {"high", 10}, {"mid", 5}} {
		_ = registry.Register(&testRule{
			id:          r.id,
			config:      RuleConfig{ID: r.id, Enabled: true, Priority: r.priority},
			shouldMatch: true,
		})
	}

	triggers, _ := NewEngine(registry).Evaluate(context.Background(), newTestSignal(signal.TypeCombatantObserved, "c1"))

	expected := []string{"high", "mid", "low"}
	if len(triggers) != len(expected) {
		t.Fatalf("Expected %d triggers, got %d", len(expected), len(triggers))
	}
	for i, id := range expected {
		if triggers[i].RuleID != id {
			t.Errorf("trigger %d = %s, expected %s", i, triggers[i].RuleID, id)
		}
	}
}

func TestEngine_Evaluate_TiesBreakOnRuleID(t *testing.T) {
	registry := NewRegistry()
	for _, id := range []string{"timer_5min", "combatant_open", "timer_30min"} {
		_ = registry.Register(&testRule{
			id:          id,
			config:      RuleConfig{ID: id, Enabled: true, Priority: 3},
			shouldMatch: true,
		})
	}
	_ = registry.Register(&testRule{
		id:          "timer_ended",
		config:      RuleConfig{ID: "timer_ended", Enabled: true, Priority: 9},
		shouldMatch: true,
	})

	for run := 0; run < 3; run++ {
		triggers, err := NewEngine(registry).Evaluate(context.Background(), newTestSignal(signal.TypeTimerObserved, "t1"))
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		expected := []string{"timer_ended", "combatant_open", "timer_30min", "timer_5min"}
		if len(triggers) != len(expected) {
			t.Fatalf("Expected %d triggers, got %d", len(expected), len(triggers))
		}
		for i, id := range expected {
			if triggers[i].RuleID != id {
				t.Errorf("run %d: trigger %d = %s, expected %s", run, i, triggers[i].RuleID, id)
			}
		}
	}
}

func TestEngine_Evaluate_Cancelled(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&testRule{
		id:          "any",
		config:      RuleConfig{ID: "any", Enabled: true},
		shouldMatch: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	triggers, err := NewEngine(registry).Evaluate(ctx, newTestSignal(signal.TypeCombatantObserved, "c1"))
	if err == nil {
		t.Error("Expected context error after cancellation")
	}
	if len(triggers) != 0 {
		t.Errorf("Expected no triggers after cancellation, got %d", len(triggers))
	}
}
