package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/clock"
	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	ruleBuiltin "github.com/MattchuPichuu/WarDaddy/pkg/rule/builtin"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

func init() {
	ruleBuiltin.RegisterBuiltinRules(nil)
}

var t0 = time.Date(2025, 11, 21, 12, 0, 0, 0, time.UTC)

// recordingAction remembers every alert it was asked to deliver
type recordingAction struct {
	id  string
	err error

	mu       sync.Mutex
	received []string
}

func (a *recordingAction) ID() string   { return a.id }
func (a *recordingAction) Name() string { return "Recording Action" }
func (a *recordingAction) Config() action.ActionConfig {
	return action.ActionConfig{ID: a.id, Type: "recording", Enabled: true}
}

func (a *recordingAction) Execute(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, fmt.Sprintf("%s:%s", entityCtx.Name, trigger.Alert))
	return a.err
}

func (a *recordingAction) Received() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.received...)
}

type harness struct {
	clock    *clock.Manual
	store    *service.EntityStore
	manager  *pipeline.Manager
	recorder *recordingAction
}

var alertRules = []struct {
	id       string
	ruleType string
	alert    state.AlertKind
}{
	{"combatant_30", ruleBuiltin.CombatantAlertRuleID, state.AlertThreshold30Min},
	{"combatant_15", ruleBuiltin.CombatantAlertRuleID, state.AlertThreshold15Min},
	{"combatant_open", ruleBuiltin.CombatantAlertRuleID, state.AlertNowOpen},
	{"timer_5", ruleBuiltin.TimerAlertRuleID, state.AlertThreshold5Min},
	{"timer_expired", ruleBuiltin.TimerAlertRuleID, state.AlertTimerExpired},
}

func newHarness(t *testing.T, concurrent bool, actionErr error) *harness {
	t.Helper()

	clk := clock.NewManual(t0)
	seq := 0
	store := service.NewEntityStore(clk, service.EntityStoreConfig{
		IDGenerator: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})

	ruleRegistry := rule.NewRegistry()
	p := pipeline.NewPipeline("test")
	p.Concurrent = concurrent
	var configs []rule.RuleConfig
	for _, r := range alertRules {
		configs = append(configs, rule.RuleConfig{
			ID:         r.id,
			Type:       r.ruleType,
			Enabled:    true,
			Parameters: map[string]interface{}{"alert": string(r.alert)},
		})
		p.Route(r.id, "record")
	}
	if err := rule.RegisterRules(ruleRegistry, configs); err != nil {
		t.Fatalf("RegisterRules() error = %v", err)
	}

	recorder := &recordingAction{id: "record", err: actionErr}
	actionRegistry := action.NewRegistry()
	if err := actionRegistry.Register(recorder); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	manager := pipeline.NewManager(
		signal.NewProcessor(store),
		rule.NewEngine(ruleRegistry),
		action.NewExecutor(actionRegistry),
		p,
		store,
		pipeline.WithAlertWindow(time.Minute),
	)

	return &harness{clock: clk, store: store, manager: manager, recorder: recorder}
}

func (h *harness) tick(t *testing.T) *pipeline.TickResult {
	t.Helper()
	result, err := h.manager.Tick(context.Background())
	if err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	h.manager.Wait()
	return result
}

func TestManager_CombatantAlerts(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	if _, err := h.store.RecordShot(c.ID); err != nil {
		t.Fatalf("RecordShot() error = %v", err)
	}

	tests := []struct {
		name     string
		at       time.Duration
		claimed  int
		status   state.ProtectionStatus
		received []string
	}{
		{"nothing due while protected", time.Hour, 0, state.StatusProtected, nil},
		{"30 minutes before the end", 230 * time.Minute, 1, state.StatusDropping, []string{"Magus:THRESHOLD_30MIN"}},
		{"same instant fires nothing", 230 * time.Minute, 0, state.StatusDropping, []string{"Magus:THRESHOLD_30MIN"}},
		{"15 minutes before the end", 245 * time.Minute, 1, state.StatusDropping, []string{"Magus:THRESHOLD_30MIN", "Magus:THRESHOLD_15MIN"}},
		{"window end", 260 * time.Minute, 1, state.StatusOpen, []string{"Magus:THRESHOLD_30MIN", "Magus:THRESHOLD_15MIN", "Magus:NOW_OPEN"}},
		{"past the end", 262 * time.Minute, 0, state.StatusOpen, []string{"Magus:THRESHOLD_30MIN", "Magus:THRESHOLD_15MIN", "Magus:NOW_OPEN"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.clock.Set(t0.Add(tt.at))
			result := h.tick(t)

			if len(result.Claimed) != tt.claimed {
				t.Errorf("claimed %d alerts, expected %d", len(result.Claimed), tt.claimed)
			}

			got, _ := h.store.GetCombatant(c.ID)
			if got.Status != tt.status {
				t.Errorf("status = %s, expected %s", got.Status, tt.status)
			}

			received := h.recorder.Received()
			if fmt.Sprint(received) != fmt.Sprint(tt.received) {
				t.Errorf("received %v, expected %v", received, tt.received)
			}
		})
	}

	stats := h.manager.GetStats()
	if stats.Claimed != 3 || stats.Delivered != 3 || stats.Failed != 0 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.Rules != len(alertRules) || stats.Actions != 1 {
		t.Errorf("stats registry counts = %+v", stats)
	}
}

func TestManager_RecomputeWritesBack(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)

	h.clock.Set(t0.Add(221 * time.Minute))
	result := h.tick(t)

	if len(result.Changes) != 1 || result.Changes[0].To != string(state.StatusDropping) {
		t.Errorf("changes = %+v", result.Changes)
	}

	if changes := h.manager.Refresh(); len(changes) != 0 {
		t.Errorf("second recompute wrote %d changes", len(changes))
	}
}

func TestManager_DeadNeverAlerts(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)
	if _, err := h.store.ForceState(c.ID, "DEAD"); err != nil {
		t.Fatalf("ForceState() error = %v", err)
	}

	for _, at := range []time.Duration{230 * time.Minute, 245 * time.Minute, 260 * time.Minute} {
		h.clock.Set(t0.Add(at))
		if result := h.tick(t); len(result.Claimed) != 0 {
			t.Errorf("dead combatant claimed %d alerts at %v", len(result.Claimed), at)
		}
	}

	got, _ := h.store.GetCombatant(c.ID)
	if got.Status != state.StatusDead {
		t.Errorf("status = %s, expected DEAD", got.Status)
	}
}

func TestManager_TimerAlerts(t *testing.T) {
	h := newHarness(t, false, nil)

	timer, _ := h.store.AddTimer("Boss", "")
	if _, err := h.store.StartTimer(timer.ID, 10*time.Minute); err != nil {
		t.Fatalf("StartTimer() error = %v", err)
	}

	h.clock.Set(t0.Add(5 * time.Minute))
	if result := h.tick(t); len(result.Claimed) != 1 || result.Claimed[0].Alert != state.AlertThreshold5Min {
		t.Fatalf("expected THRESHOLD_5MIN, got %+v", result.Claimed)
	}

	h.clock.Set(t0.Add(10 * time.Minute))
	if result := h.tick(t); len(result.Claimed) != 1 || result.Claimed[0].Alert != state.AlertTimerExpired {
		t.Fatalf("expected TIMER_EXPIRED, got %+v", result.Claimed)
	}

	got, _ := h.store.GetTimer(timer.ID)
	if got.Status != state.TimerExpired || !got.Notified {
		t.Errorf("timer = %+v, expected EXPIRED and notified", got)
	}

	// expiry is announced once however many passes follow
	for i := 1; i <= 3; i++ {
		h.clock.Set(t0.Add(time.Duration(10+i) * time.Minute))
		if result := h.tick(t); len(result.Claimed) != 0 {
			t.Errorf("pass %d claimed %+v", i, result.Claimed)
		}
	}

	if received := h.recorder.Received(); len(received) != 2 {
		t.Errorf("received %v", received)
	}
}

func TestManager_FailedDeliveryKeepsState(t *testing.T) {
	h := newHarness(t, false, errors.New("discord is down"))

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)

	h.clock.Set(t0.Add(260 * time.Minute))
	result := h.tick(t)
	if len(result.Claimed) != 1 {
		t.Fatalf("claimed %d alerts", len(result.Claimed))
	}

	got, _ := h.store.GetCombatant(c.ID)
	if got.Status != state.StatusOpen {
		t.Errorf("status = %s, expected OPEN despite the failed delivery", got.Status)
	}

	// the failed alert is not retried on the next pass
	h.clock.Set(t0.Add(260*time.Minute + 30*time.Second))
	if result := h.tick(t); len(result.Claimed) != 0 {
		t.Errorf("retried %+v", result.Claimed)
	}

	if stats := h.manager.GetStats(); stats.Failed != 1 || stats.Delivered != 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestManager_Concurrent(t *testing.T) {
	h := newHarness(t, true, nil)

	for _, name := range []string{"Magus", "Oishi", "Zuko"} {
		c, _ := h.store.AddCombatant(name, state.FactionEnemy, "", "")
		h.store.RecordShot(c.ID)
	}

	h.clock.Set(t0.Add(230 * time.Minute))
	result := h.tick(t)

	if len(result.Claimed) != 3 {
		t.Errorf("claimed %d alerts, expected 3", len(result.Claimed))
	}
	if received := h.recorder.Received(); len(received) != 3 {
		t.Errorf("received %v", received)
	}
}

func TestManager_CancelledContext(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)
	h.clock.Set(t0.Add(260 * time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.manager.Tick(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Tick() error = %v, expected context.Canceled", err)
	}

	// nothing was claimed, so the next pass still fires
	if result := h.tick(t); len(result.Claimed) != 1 {
		t.Errorf("claimed %d alerts after cancellation", len(result.Claimed))
	}
}
