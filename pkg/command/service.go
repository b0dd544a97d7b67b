// Package command maps remote commands onto entity store operations and
// renders a reply for whichever surface issued them.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/common"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/metrics"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/timeparse"
)

// Publisher delivers a rendered board to a webhook.
// *discord.WebhookClient satisfies it.
type Publisher interface {
	Post(ctx context.Context, url string, payload discord.Payload) error
}

// Dependencies holds everything the command service talks to.
// Publisher and Metrics may be nil.
type Dependencies struct {
	Store       *service.EntityStore
	ClientState service.ClientStateStore
	Publisher   Publisher
	Metrics     *metrics.Metrics
}

// Service implements the command surface shared by the Discord bot,
// the gRPC board service and the REST API.
type Service struct {
	store       *service.EntityStore
	clientState service.ClientStateStore
	publisher   Publisher
	metrics     *metrics.Metrics

	protection *timeparse.Parser
	cooldown   *timeparse.Parser
}

// NewService creates a command service. The store doubles as the clock for
// free-text timestamps so parsed times agree with the board.
func NewService(deps Dependencies) *Service {
	return &Service{
		store:       deps.Store,
		clientState: deps.ClientState,
		publisher:   deps.Publisher,
		metrics:     deps.Metrics,
		protection:  timeparse.Protection(deps.Store),
		cooldown:    timeparse.Cooldown(deps.Store),
	}
}

var _ discord.Commands = (*Service)(nil)

// begin opens a traced scope for one command
func (s *Service) begin(ctx context.Context, command string) *common.Scope {
	scope := common.GetScopeFromContext(ctx, "Command."+command)
	scope.TraceTag("command", command)
	return scope
}

// end records the outcome of a command and closes its scope
func (s *Service) end(scope *common.Scope, command string, err error) {
	defer scope.Finish()
	s.metrics.Command(command, err)

	if err == nil {
		return
	}
	scope.TraceError(err)

	var ue *service.UserError
	if errors.As(err, &ue) || errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrForbidden) {
		scope.Log.Infof("%s rejected: %v", command, err)
		return
	}
	scope.Log.WithError(err).Errorf("%s failed", command)
}

func requireRecord(actor auth.Actor) error {
	if !actor.Role.CanRecord() {
		return fmt.Errorf("%w: %s cannot record events", service.ErrForbidden, actor.Role)
	}
	return nil
}

func requireManage(actor auth.Actor) error {
	if !actor.Role.CanManage() {
		return fmt.Errorf("%w: %s cannot manage the roster", service.ErrForbidden, actor.Role)
	}
	return nil
}

func playerNotFound(name string) error {
	return notFoundNamed("Player", name)
}

func notFoundNamed(kind, name string) error {
	return service.NewUserError(service.ErrNotFound, "%s %q not found.", kind, strings.TrimSpace(name))
}

func text(format string, args ...interface{}) *discord.Reply {
	return &discord.Reply{Content: fmt.Sprintf(format, args...)}
}

// nameOf returns the display name of any tracked entity, or id when it is gone
func (s *Service) nameOf(id string) string {
	if c, err := s.store.GetCombatant(id); err == nil {
		return c.Name
	}
	if cs, err := s.store.GetCooldown(id); err == nil {
		return cs.Name
	}
	if t, err := s.store.GetTimer(id); err == nil {
		return t.Name
	}
	return id
}
