package command

import (
	"context"
	"strings"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// Pro shows the protection card of one combatant, looked up by name.
func (s *Service) Pro(ctx context.Context, name string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "pro")
	defer func() { s.end(scope, "pro", err) }()

	c, err := s.store.FindCombatant(name, "")
	if err != nil {
		return nil, playerNotFound(name)
	}

	return &discord.Reply{Embeds: []discord.Embed{discord.ProEmbed(c, s.store.Now())}}, nil
}

// Board renders the full war board.
func (s *Service) Board(ctx context.Context) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "board")
	defer func() { s.end(scope, "board", err) }()

	return &discord.Reply{Embeds: []discord.Embed{discord.BoardEmbed(s.store.Snapshot())}}, nil
}

// Sitrep renders the plain-text situation report.
func (s *Service) Sitrep(ctx context.Context) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "sitrep")
	defer func() { s.end(scope, "sitrep", err) }()

	return &discord.Reply{Content: discord.Sitrep(s.store.Snapshot())}, nil
}

// Snapshot returns a copy of everything tracked, for structured clients.
func (s *Service) Snapshot(context.Context) *service.Snapshot {
	return s.store.Snapshot()
}

// Combatant returns one combatant by id.
func (s *Service) Combatant(_ context.Context, id string) (*state.Combatant, error) {
	return s.store.GetCombatant(id)
}

// SetWebhook remembers the webhook the board is published to.
func (s *Service) SetWebhook(ctx context.Context, actor auth.Actor, url string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "set_webhook")
	defer func() { s.end(scope, "set_webhook", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	url = strings.TrimSpace(url)
	if err := discord.ValidateURL(url); err != nil {
		return nil, err
	}
	if err := s.clientState.SetWebhookURL(scope.Ctx, url); err != nil {
		return nil, err
	}

	return text("🔗 Webhook saved."), nil
}

// Publish posts the board to url, or to the remembered webhook when url is
// empty. A url that delivers successfully is remembered for next time.
func (s *Service) Publish(ctx context.Context, actor auth.Actor, url string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "publish")
	defer func() { s.end(scope, "publish", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}
	if s.publisher == nil {
		return nil, service.NewUserError(service.ErrDeliveryFailure, "📡 Publishing is not configured.")
	}

	url = strings.TrimSpace(url)
	remembered, err := s.clientState.GetWebhookURL(scope.Ctx)
	if err != nil {
		return nil, err
	}
	if url == "" {
		url = remembered
	}
	if url == "" {
		return nil, service.NewUserError(service.ErrInvalidInput, "❌ No webhook URL configured.")
	}

	err = s.publisher.Post(scope.Ctx, url, discord.BoardPayload(s.store.Snapshot()))
	s.metrics.Delivery("board_publish", err)
	if err != nil {
		return nil, err
	}

	if url != remembered {
		if err := s.clientState.SetWebhookURL(scope.Ctx, url); err != nil {
			// the board went out; only the remembering failed
			scope.Log.WithError(err).Warn("failed to remember webhook url")
		}
	}

	return text("📡 Board published."), nil
}
