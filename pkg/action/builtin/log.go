package builtin

import (
	"context"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

const (
	// LogActionID is the identifier for the log action
	LogActionID = "log"
)

// LogAction writes the alert to the service log at the configured level.
type LogAction struct {
	config action.ActionConfig
	level  logrus.Level
}

// NewLogAction creates a log action. The "level" parameter defaults to info.
func NewLogAction(config action.ActionConfig) (*LogAction, error) {
	level, err := logrus.ParseLevel(config.GetParameterString("level", "info"))
	if err != nil {
		return nil, err
	}

	return &LogAction{
		config: config,
		level:  level,
	}, nil
}

func (a *LogAction) ID() string {
	return a.config.ID
}

func (a *LogAction) Name() string {
	return "Log Alert"
}

func (a *LogAction) Config() action.ActionConfig {
	return a.config
}

func (a *LogAction) Execute(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) error {
	content, err := alertText(trigger, entityCtx)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"rule":   trigger.RuleID,
		"alert":  trigger.Alert,
		"entity": trigger.EntityID,
		"kind":   trigger.Kind,
	}).Log(a.level, content)
	return nil
}
