package action

import (
	"context"

	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
)

// Action performs operations in response to triggers.
// Actions are registered in a Registry and executed by the Executor.
type Action interface {
	// ID returns unique action identifier.
	ID() string

	// Name returns human-readable action name.
	Name() string

	// Execute performs the action.
	// The action can access trigger data and the observed entity to perform its operation.
	// Returns error if the action fails. A failed delivery is never undone.
	Execute(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) error

	// Config returns the action's configuration.
	Config() ActionConfig
}

// ActionResult represents the outcome of an action execution.
type ActionResult struct {
	ActionID   string
	ActionType string
	Success    bool
	Error      error
	Metadata   map[string]interface{}
}

// NewActionResult creates a successful action result.
func NewActionResult(a Action) *ActionResult {
	return &ActionResult{
		ActionID:   a.ID(),
		ActionType: a.Config().Type,
		Success:    true,
		Metadata:   make(map[string]interface{}),
	}
}

// NewActionError creates a failed action result with an error.
func NewActionError(a Action, err error) *ActionResult {
	return &ActionResult{
		ActionID:   a.ID(),
		ActionType: a.Config().Type,
		Success:    false,
		Error:      err,
		Metadata:   make(map[string]interface{}),
	}
}

// WithMetadata adds metadata to the result and returns it for chaining.
func (r *ActionResult) WithMetadata(key string, value interface{}) *ActionResult {
	r.Metadata[key] = value
	return r
}
