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
	// WebhookMessageActionID is the identifier for the webhook alert action
	WebhookMessageActionID = "webhook_message"
)

// WebhookPoster delivers a payload to a webhook URL.
// *discord.WebhookClient implements it.
type WebhookPoster interface {
	Post(ctx context.Context, webhookURL string, payload discord.Payload) error
}

// WebhookURLSource yields the remembered webhook URL.
// service.ClientStateStore implements it.
type WebhookURLSource interface {
	GetWebhookURL(ctx context.Context) (string, error)
}

// WebhookMessageAction posts a rendered alert to a Discord webhook.
// The URL comes from the "url" parameter or, when that is empty, from the
// remembered webhook URL. With no URL at all the alert is skipped.
type WebhookMessageAction struct {
	config action.ActionConfig
	poster WebhookPoster
	urls   WebhookURLSource
	url    string
}

// NewWebhookMessageAction creates a webhook alert action.
func NewWebhookMessageAction(config action.ActionConfig, poster WebhookPoster, urls WebhookURLSource) (*WebhookMessageAction, error) {
	url := config.GetParameterString("url", "")
	if url != "" {
		if err := discord.ValidateURL(url); err != nil {
			return nil, fmt.Errorf("%w: action %s: %v", action.ErrInvalidConfig, config.ID, err)
		}
	}

	return &WebhookMessageAction{
		config: config,
		poster: poster,
		urls:   urls,
		url:    url,
	}, nil
}

func (a *WebhookMessageAction) ID() string {
	return a.config.ID
}

func (a *WebhookMessageAction) Name() string {
	return "Discord Webhook Message"
}

func (a *WebhookMessageAction) Config() action.ActionConfig {
	return a.config
}

func (a *WebhookMessageAction) resolveURL(ctx context.Context) (string, error) {
	if a.url != "" || a.urls == nil {
		return a.url, nil
	}
	return a.urls.GetWebhookURL(ctx)
}

// Execute renders the alert and posts it.
func (a *WebhookMessageAction) Execute(ctx context.Context, trigger *rule.Trigger, entityCtx *signal.EntityContext) error {
	content, err := alertText(trigger, entityCtx)
	if err != nil {
		return err
	}

	url, err := a.resolveURL(ctx)
	if err != nil {
		return fmt.Errorf("failed to read webhook url: %w", err)
	}
	if url == "" {
		logrus.Debugf("no webhook url remembered, skipping %s alert for %s", trigger.Alert, entityCtx.Name)
		return nil
	}

	if a.poster == nil {
		logrus.Warnf("[DRY RUN] no webhook client, would post: %s", content)
		return nil
	}

	return a.poster.Post(ctx, url, discord.Payload{
		Username:  discord.BotUsername,
		AvatarURL: discord.BotAvatarURL,
		Content:   content,
	})
}
