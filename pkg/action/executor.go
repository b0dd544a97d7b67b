package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

// Executor executes actions in response to rule triggers.
type Executor struct {
	registry *Registry
}

// NewExecutor creates a new action executor.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
	}
}

// Execute runs an action in response to a trigger.
func (e *Executor) Execute(ctx context.Context, actionID string, trigger *rule.Trigger, entityCtx *signal.EntityContext) (*ActionResult, error) {
	action := e.registry.Get(actionID)
	if action == nil {
		return nil, fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
	}

	return e.run(ctx, action, trigger, entityCtx)
}

func (e *Executor) run(ctx context.Context, action Action, trigger *rule.Trigger, entityCtx *signal.EntityContext) (*ActionResult, error) {
	logrus.Infof("executing action %s for %s on entity %s", action.ID(), trigger.Alert, trigger.EntityID)

	if err := action.Execute(ctx, trigger, entityCtx); err != nil {
		logrus.Errorf("action %s failed: %v", action.ID(), err)
		return NewActionError(action, err), err
	}

	logrus.Debugf("action %s completed successfully", action.ID())
	return NewActionResult(action), nil
}

// ExecuteMultiple executes multiple actions in sequence.
// Every action runs even when an earlier one fails; the returned error joins all failures.
func (e *Executor) ExecuteMultiple(ctx context.Context, actionIDs []string, trigger *rule.Trigger, entityCtx *signal.EntityContext) ([]*ActionResult, error) {
	results := make([]*ActionResult, 0, len(actionIDs))
	var errs []error

	for _, actionID := range actionIDs {
		action := e.registry.Get(actionID)
		if action == nil {
			err := fmt.Errorf("%w: %s", ErrActionNotFound, actionID)
			logrus.Errorf("%v", err)
			errs = append(errs, err)
			continue
		}

		result, err := e.run(ctx, action, trigger, entityCtx)
		results = append(results, result)
		if err != nil {
			errs = append(errs, fmt.Errorf("action %s: %w", actionID, err))
		}
	}

	return results, errors.Join(errs...)
}

// GetRegistry returns the action registry used by this executor.
func (e *Executor) GetRegistry() *Registry {
	return e.registry
}
