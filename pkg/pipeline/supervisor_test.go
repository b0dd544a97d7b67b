package pipeline_test

import (
	"context"
	"testing"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/pipeline"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSupervisor_StartStop(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)
	// already due when the supervisor comes up
	h.clock.Set(t0.Add(260 * time.Minute))

	sup := pipeline.NewSupervisor(h.manager,
		pipeline.WithDisplayInterval(5*time.Millisecond),
		pipeline.WithNotifyInterval(10*time.Millisecond),
	)

	sup.Start(context.Background())
	if !sup.Running() {
		t.Fatal("expected supervisor to be running")
	}

	// a second start is ignored
	sup.Start(context.Background())

	waitFor(t, func() bool { return h.manager.GetStats().Ticks >= 3 })

	sup.Stop()
	if sup.Running() {
		t.Error("expected supervisor to be stopped")
	}

	if received := h.recorder.Received(); len(received) != 1 || received[0] != "Magus:NOW_OPEN" {
		t.Errorf("received %v, expected a single NOW_OPEN", received)
	}

	ticks := h.manager.GetStats().Ticks
	time.Sleep(30 * time.Millisecond)
	if after := h.manager.GetStats().Ticks; after != ticks {
		t.Errorf("ticks advanced after Stop: %d -> %d", ticks, after)
	}

	// stopping twice is harmless
	sup.Stop()
}

func TestSupervisor_DisplayRefresh(t *testing.T) {
	h := newHarness(t, false, nil)

	c, _ := h.store.AddCombatant("Magus", state.FactionEnemy, "", "")
	h.store.RecordShot(c.ID)

	sup := pipeline.NewSupervisor(h.manager,
		pipeline.WithDisplayInterval(5*time.Millisecond),
		pipeline.WithNotifyInterval(time.Hour),
	)
	sup.Start(context.Background())
	defer sup.Stop()

	// only the display cadence runs from here on
	h.clock.Set(t0.Add(225 * time.Minute))

	waitFor(t, func() bool {
		got, _ := h.store.GetCombatant(c.ID)
		return got.Status == state.StatusDropping
	})
}

func TestSupervisor_ContextCancel(t *testing.T) {
	h := newHarness(t, false, nil)

	sup := pipeline.NewSupervisor(h.manager, pipeline.WithNotifyInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	sup.Start(ctx)
	waitFor(t, func() bool { return h.manager.GetStats().Ticks >= 1 })
	cancel()

	ticks := h.manager.GetStats().Ticks
	time.Sleep(30 * time.Millisecond)
	if after := h.manager.GetStats().Ticks; after > ticks+1 {
		t.Errorf("ticks kept advancing after cancel: %d -> %d", ticks, after)
	}

	sup.Stop()
}
