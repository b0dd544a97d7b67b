package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/metrics"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/sirupsen/logrus"
)

const (
	defaultAlertWindow     = time.Minute
	defaultDispatchTimeout = 15 * time.Second
)

// Store is the part of the entity store the pipeline writes to.
// *service.EntityStore satisfies it.
type Store interface {
	Now() time.Time
	ClaimAlert(id string, alert state.AlertKind, now time.Time, width time.Duration) (bool, error)
	Recompute(now time.Time) []service.Change
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithAlertWindow sets the threshold window width used when a trigger carries none.
func WithAlertWindow(width time.Duration) ManagerOption {
	return func(m *Manager) {
		if width > 0 {
			m.window = width
		}
	}
}

// WithDispatchTimeout bounds each background action dispatch.
func WithDispatchTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.dispatchTimeout = d
		}
	}
}

// WithMetrics records alerts, transitions and deliveries.
func WithMetrics(mt *metrics.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithLogger replaces the default logger.
func WithLogger(log *logrus.Entry) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// Manager orchestrates the notification pass:
// Snapshot → Signals → Rules → Claim → Actions → Recompute
type Manager struct {
	processor *signal.Processor
	engine    *rule.Engine
	executor  *action.Executor
	pipeline  *Pipeline
	store     Store

	window          time.Duration
	dispatchTimeout time.Duration
	metrics         *metrics.Metrics
	log             *logrus.Entry

	inflight sync.WaitGroup
	stats    counters
}

// NewManager creates a new pipeline manager with all required components.
func NewManager(processor *signal.Processor, engine *rule.Engine, executor *action.Executor, p *Pipeline, store Store, opts ...ManagerOption) *Manager {
	if p == nil {
		p = NewPipeline("alerts")
	}

	m := &Manager{
		processor:       processor,
		engine:          engine,
		executor:        executor,
		pipeline:        p,
		store:           store,
		window:          defaultAlertWindow,
		dispatchTimeout: defaultDispatchTimeout,
		log:             logrus.WithField("component", "pipeline"),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// TickResult summarizes one notification pass.
type TickResult struct {
	At       time.Time
	Signals  int
	Triggers int
	Claimed  []*rule.Trigger
	Changes  []service.Change
}

// Tick runs one notification pass at the store's current time.
// The state change of every claimed alert is committed before its actions
// are dispatched; dispatches run in the background and are never rolled back.
func (m *Manager) Tick(ctx context.Context) (*TickResult, error) {
	start := time.Now()
	defer func() {
		m.metrics.ObserveTick(time.Since(start))
	}()

	snap, signals := m.processor.Observe()
	result := &TickResult{At: snap.At, Signals: len(signals)}
	m.stats.ticks.Add(1)
	m.stats.signals.Add(int64(len(signals)))

	for _, sig := range signals {
		triggers, err := m.engine.Evaluate(ctx, sig)
		if err != nil {
			// only cancellation surfaces here; the store is left as it is
			m.log.WithError(err).Warn("notification pass interrupted")
			return result, err
		}

		result.Triggers += len(triggers)
		m.stats.triggers.Add(int64(len(triggers)))

		for _, trigger := range triggers {
			if m.claim(trigger, snap.At) {
				result.Claimed = append(result.Claimed, trigger)
				m.dispatch(ctx, trigger, sig.Context())
			}
		}
	}

	result.Changes = m.recompute(snap.At)

	if len(result.Claimed) > 0 || len(result.Changes) > 0 {
		m.log.WithFields(logrus.Fields{
			"signals": result.Signals,
			"claimed": len(result.Claimed),
			"changes": len(result.Changes),
		}).Info("notification pass completed")
	}

	return result, nil
}

// Refresh recomputes and writes back stored statuses without alerting.
func (m *Manager) Refresh() []service.Change {
	return m.recompute(m.store.Now())
}

func (m *Manager) recompute(now time.Time) []service.Change {
	changes := m.store.Recompute(now)
	for _, c := range changes {
		m.metrics.StatusChanged(string(c.Kind), c.To)
	}
	return changes
}

// claim records the alert in the store. It fails when another pass or rule
// already claimed the same crossing.
func (m *Manager) claim(trigger *rule.Trigger, now time.Time) bool {
	width := m.window
	if w, ok := trigger.Metadata["window"].(time.Duration); ok && w > 0 {
		width = w
	}

	claimed, err := m.store.ClaimAlert(trigger.EntityID, trigger.Alert, now, width)
	if err != nil {
		// entity deleted between snapshot and claim
		m.log.WithError(err).Debugf("skipping %s for %s", trigger.Alert, trigger.EntityID)
		return false
	}
	if !claimed {
		m.log.Debugf("%s for %s already claimed", trigger.Alert, trigger.EntityID)
		return false
	}

	m.stats.claimed.Add(1)
	m.metrics.AlertFired(string(trigger.Alert))
	return true
}

// dispatch runs the actions mapped to the trigger's rule in the background.
func (m *Manager) dispatch(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) {
	actionIDs := m.pipeline.GetActions(trigger.RuleID)
	if len(actionIDs) == 0 {
		m.log.Infof("trigger from rule %s has no actions configured", trigger.RuleID)
		return
	}

	// dispatches outlive the pass that claimed them
	base := context.WithoutCancel(ctx)

	if !m.pipeline.Concurrent {
		m.inflight.Add(1)
		go func() {
			defer m.inflight.Done()
			dctx, cancel := context.WithTimeout(base, m.dispatchTimeout)
			defer cancel()

			results, _ := m.executor.ExecuteMultiple(dctx, actionIDs, trigger, entityCtx)
			m.record(trigger, results)
		}()
		return
	}

	for _, actionID := range actionIDs {
		m.inflight.Add(1)
		go func(actionID string) {
			defer m.inflight.Done()
			dctx, cancel := context.WithTimeout(base, m.dispatchTimeout)
			defer cancel()

			result, err := m.executor.Execute(dctx, actionID, trigger, entityCtx)
			if err != nil && result == nil {
				m.stats.failed.Add(1)
				return
			}
			m.record(trigger, []*action.ActionResult{result})
		}(actionID)
	}
}

func (m *Manager) record(trigger *rule.Trigger, results []*action.ActionResult) {
	for _, r := range results {
		m.metrics.Delivery(r.ActionType, r.Error)
		if r.Success {
			m.stats.delivered.Add(1)
			continue
		}

		m.stats.failed.Add(1)
		m.log.WithFields(logrus.Fields{
			"action": r.ActionID,
			"rule":   trigger.RuleID,
			"alert":  trigger.Alert,
			"entity": trigger.EntityID,
		}).WithError(r.Error).Error("alert delivery failed")
	}
}

// Wait blocks until every in-flight dispatch has finished.
func (m *Manager) Wait() {
	m.inflight.Wait()
}

type counters struct {
	ticks     atomic.Int64
	signals   atomic.Int64
	triggers  atomic.Int64
	claimed   atomic.Int64
	delivered atomic.Int64
	failed    atomic.Int64
}

// Stats returns pipeline statistics (for observability).
type Stats struct {
	Ticks     int64 `json:"ticks"`
	Signals   int64 `json:"signals"`
	Triggers  int64 `json:"triggers"`
	Claimed   int64 `json:"claimed"`
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Rules     int   `json:"rules"`
	Actions   int   `json:"actions"`
}

// GetStats returns current pipeline statistics.
func (m *Manager) GetStats() Stats {
	return Stats{
		Ticks:     m.stats.ticks.Load(),
		Signals:   m.stats.signals.Load(),
		Triggers:  m.stats.triggers.Load(),
		Claimed:   m.stats.claimed.Load(),
		Delivered: m.stats.delivered.Load(),
		Failed:    m.stats.failed.Load(),
		Rules:     m.engine.Rules().Count(),
		Actions:   m.executor.GetRegistry().Count(),
	}
}
