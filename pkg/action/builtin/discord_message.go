package builtin

import (
	"context"
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/action"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/rule"
	"github.com/MattchuPichuu/WarDaddy/pkg/signal"
	"github.com/sirupsen/logrus"
)

const (
	// DiscordMessageActionID is the identifier for the channel alert action
	DiscordMessageActionID = "discord_message"
)

// MessageSender posts plain chat text to the notification channel.
// *discord.Bot implements it.
type MessageSender interface {
	SendMessage(ctx context.Context, content string) error
}

// DiscordMessageAction renders an alert with its mention and posts it to the
// notification channel.
type DiscordMessageAction struct {
	config action.ActionConfig
	sender MessageSender
}

// NewDiscordMessageAction creates a channel alert action. A nil sender only logs.
func NewDiscordMessageAction(config action.ActionConfig, sender MessageSender) *DiscordMessageAction {
	return &DiscordMessageAction{
		config: config,
		sender: sender,
	}
}

func (a *DiscordMessageAction) ID() string {
	return a.config.ID
}

func (a *DiscordMessageAction) Name() string {
	return "Discord Channel Message"
}

func (a *DiscordMessageAction) Config() action.ActionConfig {
	return a.config
}

// Execute renders and sends the alert.
func (a *DiscordMessageAction) Execute(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) error {
	content, err := alertText(trigger, entityCtx)
	if err != nil {
		return err
	}

	if a.sender == nil {
		logrus.Warnf("[DRY RUN] no discord channel, would send: %s", content)
		return nil
	}

	if err := a.sender.SendMessage(ctx, content); err != nil {
		return fmt.Errorf("failed to send channel alert: %w", err)
	}

	logrus.Infof("sent %s alert for %s to discord", trigger.Alert, entityCtx.Name)
	return nil
}

// alertText renders the chat text for trigger about the observed entity
func alertText(trigger *rule.Trigger, entityCtx *signal.EntityContext) (string, error) {
	if entityCtx == nil {
		return "", action.ErrMissingEntityContext
	}

	return discord.AlertMessage(trigger.Alert, discord.AlertSubject{
		Kind:        entityCtx.Kind,
		Name:        entityCtx.Name,
		Faction:     entityCtx.Faction,
		ExternalRef: entityCtx.ExternalRef,
	})
}
