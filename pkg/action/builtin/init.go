package builtin

import (
	"github.com/MattchuPichuu/WarDaddy/pkg/action"
)

// Dependencies holds dependencies needed by built-in actions.
// Any of them may be nil; the affected action then logs instead of delivering.
type Dependencies struct {
	Sender     MessageSender
	Webhook    WebhookPoster
	WebhookURL WebhookURLSource
}

// RegisterActions registers built-in action factories with dependencies.
func RegisterActions(deps *Dependencies) {
	if deps == nil {
		deps = &Dependencies{}
	}

	action.RegisterActionType(DiscordMessageActionID, func(config action.ActionConfig) (action.Action, error) {
		return NewDiscordMessageAction(config, deps.Sender), nil
	})

	action.RegisterActionType(WebhookMessageActionID, func(config action.ActionConfig) (action.Action, error) {
		a, err := NewWebhookMessageAction(config, deps.Webhook, deps.WebhookURL)
		if err != nil {
			return nil, err
		}
		return a, nil
	})

	action.RegisterActionType(LogActionID, func(config action.ActionConfig) (action.Action, error) {
		a, err := NewLogAction(config)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}
