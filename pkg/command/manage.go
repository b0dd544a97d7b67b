package command

import (
	"context"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// AddPlayer starts tracking a combatant. The reply names the new player;
// the created entity is returned for structured clients.
func (s *Service) AddPlayer(ctx context.Context, actor auth.Actor, name string, faction state.Faction, externalRef string) (*discord.Reply, error) {
	reply, _, err := s.AddCombatant(ctx, actor, name, faction, externalRef, "")
	return reply, err
}

// AddCombatant is AddPlayer with notes, returning the created combatant.
func (s *Service) AddCombatant(ctx context.Context, actor auth.Actor, name string, faction state.Faction, externalRef, notes string) (reply *discord.Reply, c *state.Combatant, err error) {
	scope := s.begin(ctx, "add_player")
	defer func() { s.end(scope, "add_player", err) }()

	if err := requireManage(actor); err != nil {
		return nil, nil, err
	}

	c, err = s.store.AddCombatant(name, faction, externalRef, notes)
	if err != nil {
		return nil, nil, err
	}

	return text("✅ Added **%s** to faction list.", c.Name), c, nil
}

// AddCooldown starts tracking a skill cooldown subject.
func (s *Service) AddCooldown(ctx context.Context, actor auth.Actor, name, externalRef, notes string) (reply *discord.Reply, cs *state.CooldownSubject, err error) {
	scope := s.begin(ctx, "add_cooldown")
	defer func() { s.end(scope, "add_cooldown", err) }()

	if err := requireManage(actor); err != nil {
		return nil, nil, err
	}

	cs, err = s.store.AddCooldown(name, externalRef, notes)
	if err != nil {
		return nil, nil, err
	}

	return text("✅ Added **%s** to cooldown list.", cs.Name), cs, nil
}

// AddTimer creates a stopped ad-hoc timer.
func (s *Service) AddTimer(ctx context.Context, actor auth.Actor, name, externalRef string) (reply *discord.Reply, t *state.AdhocTimer, err error) {
	scope := s.begin(ctx, "add_timer")
	defer func() { s.end(scope, "add_timer", err) }()

	if err := requireManage(actor); err != nil {
		return nil, nil, err
	}

	t, err = s.store.AddTimer(name, externalRef)
	if err != nil {
		return nil, nil, err
	}

	return text("✅ Added timer **%s**.", t.Name), t, nil
}

// UpdateCombatant edits the descriptive fields of a combatant.
func (s *Service) UpdateCombatant(ctx context.Context, actor auth.Actor, id string, patch service.CombatantPatch) (c *state.Combatant, err error) {
	scope := s.begin(ctx, "update_player")
	defer func() { s.end(scope, "update_player", err) }()

	if err := requireManage(actor); err != nil {
		return nil, err
	}

	return s.store.UpdateCombatant(id, patch)
}

// UpdateCooldown edits the descriptive fields of a cooldown subject.
func (s *Service) UpdateCooldown(ctx context.Context, actor auth.Actor, id string, patch service.CooldownPatch) (cs *state.CooldownSubject, err error) {
	scope := s.begin(ctx, "update_cooldown")
	defer func() { s.end(scope, "update_cooldown", err) }()

	if err := requireManage(actor); err != nil {
		return nil, err
	}

	return s.store.UpdateCooldown(id, patch)
}

// Delete stops tracking any entity.
func (s *Service) Delete(ctx context.Context, actor auth.Actor, id string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "delete")
	defer func() { s.end(scope, "delete", err) }()

	if err := requireManage(actor); err != nil {
		return nil, err
	}

	name := s.nameOf(id)
	if _, err := s.store.Delete(id); err != nil {
		return nil, err
	}

	return text("🗑️ Removed **%s**.", name), nil
}
