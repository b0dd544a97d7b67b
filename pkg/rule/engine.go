package rule

import (
	"cmp"
	"context"
	"slices"

	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

// Engine runs an observed entity past every enabled rule interested in it.
type Engine struct {
	registry *Registry
}

func NewEngine(registry *Registry) *Engine {
	return &Engine{registry: registry}
}

// Evaluate returns the alerts the rules find due for sig, highest priority
// first and by rule id among equals. A failing rule is logged and skipped;
// only cancellation of ctx is returned as an error.
func (e *Engine) Evaluate(ctx context.Context, sig signal.Signal) ([]*Trigger, error) {
	if sig == nil {
		return nil, nil
	}

	var triggers []*Trigger
	for _, r := range e.registry.GetBySignalType(sig.Type()) {
		if err := ctx.Err(); err != nil {
			return triggers, err
		}

		matched, trigger, err := r.Evaluate(ctx, sig)
		switch {
		case err != nil:
			logrus.WithError(err).WithFields(logrus.Fields{
				"rule":   r.ID(),
				"entity": sig.EntityID(),
			}).Error("rule evaluation failed")
		case matched && trigger != nil:
			logrus.WithFields(logrus.Fields{
				"rule":   r.ID(),
				"entity": sig.EntityID(),
				"alert":  trigger.Alert,
			}).Debug(trigger.Reason)
			triggers = append(triggers, trigger)
		}
	}

	slices.SortStableFunc(triggers, func(a, b *Trigger) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.RuleID, b.RuleID)
	})

	return triggers, nil
}

// Rules returns the registry the engine reads from.
func (e *Engine) Rules() *Registry {
	return e.registry
}
