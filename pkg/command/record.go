package command

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/discord"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

const timeLayout = "2006-01-02 15:04:05"

// Shot records a shot on a combatant looked up by name. An empty faction
// searches both sides.
func (s *Service) Shot(ctx context.Context, actor auth.Actor, name string, faction state.Faction) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "shot")
	defer func() { s.end(scope, "shot", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	c, err := s.store.FindCombatant(name, faction)
	if err != nil {
		return nil, playerNotFound(name)
	}

	return s.recordShot(c.ID, actor)
}

// ShotByID records a shot on a combatant by id.
func (s *Service) ShotByID(ctx context.Context, actor auth.Actor, id string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "shot")
	defer func() { s.end(scope, "shot", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}
	return s.recordShot(id, actor)
}

func (s *Service) recordShot(id string, actor auth.Actor) (*discord.Reply, error) {
	c, err := s.store.RecordShot(id)
	if err != nil {
		return nil, err
	}
	return &discord.Reply{Embeds: []discord.Embed{discord.ShotEmbed(c, actor.Username)}}, nil
}

// UseSkill records a skill use, closing the subject for the cooldown period.
func (s *Service) UseSkill(ctx context.Context, actor auth.Actor, id string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "use_skill")
	defer func() { s.end(scope, "use_skill", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}
	return s.useSkill(id)
}

// UseSkillByName records a skill use on a cooldown subject looked up by name.
func (s *Service) UseSkillByName(ctx context.Context, actor auth.Actor, name string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "use_skill")
	defer func() { s.end(scope, "use_skill", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	cs, err := s.store.FindCooldown(name)
	if err != nil {
		return nil, notFoundNamed("Cooldown", name)
	}
	return s.useSkill(cs.ID)
}

func (s *Service) useSkill(id string) (*discord.Reply, error) {
	cs, err := s.store.RecordSkillUse(id)
	if err != nil {
		return nil, err
	}

	ready := state.CooldownExpiry(*cs.TriggerTime)
	return text("⏱️ **%s** used their skill. Ready again at %s GMT.", cs.Name, ready.UTC().Format(timeLayout)), nil
}

// ForceState overrides the status of a combatant or cooldown subject.
func (s *Service) ForceState(ctx context.Context, actor auth.Actor, id, status string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "force_state")
	defer func() { s.end(scope, "force_state", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	if _, err := s.store.ForceState(id, status); err != nil {
		return nil, err
	}

	return text("🔧 **%s** set to **%s**.", s.nameOf(id), strings.ToUpper(strings.TrimSpace(status))), nil
}

// EditTrigger corrects the trigger time of a combatant or cooldown subject
// from free text. Empty text clears the trigger time.
func (s *Service) EditTrigger(ctx context.Context, actor auth.Actor, id, input string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "edit_trigger")
	defer func() { s.end(scope, "edit_trigger", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	trigger, err := s.parseTrigger(id, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.EditTrigger(id, trigger); err != nil {
		return nil, err
	}

	name := s.nameOf(id)
	if trigger == nil {
		return text("🕒 Cleared the trigger time of **%s**.", name), nil
	}
	return text("🕒 Trigger time of **%s** set to %s GMT.", name, trigger.UTC().Format(timeLayout)), nil
}

// parseTrigger reads input with the parser chain that fits the entity kind.
// Ids that are neither combatants nor cooldown subjects return nil so the
// store reports the right error.
func (s *Service) parseTrigger(id, input string) (*time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	parser := s.protection
	if _, err := s.store.GetCombatant(id); err != nil {
		if _, err := s.store.GetCooldown(id); err != nil {
			return nil, nil
		}
		parser = s.cooldown
	}

	t, err := parser.Parse(input)
	if err != nil {
		return nil, service.NewUserError(service.ErrParseFailure, "❓ Could not read %q as a time.", input)
	}
	return &t, nil
}

// StartTimer arms a timer for a free-text duration such as "90", "2h" or "1h 30m".
func (s *Service) StartTimer(ctx context.Context, actor auth.Actor, id, input string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "start_timer")
	defer func() { s.end(scope, "start_timer", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}
	return s.startTimer(id, input)
}

// StartTimerByName arms a timer looked up by name.
func (s *Service) StartTimerByName(ctx context.Context, actor auth.Actor, name, input string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "start_timer")
	defer func() { s.end(scope, "start_timer", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	t, err := s.store.FindTimer(name)
	if err != nil {
		return nil, notFoundNamed("Timer", name)
	}
	return s.startTimer(t.ID, input)
}

func (s *Service) startTimer(id, input string) (*discord.Reply, error) {
	d, err := state.ParseDuration(input)
	if errors.Is(err, state.ErrNonPositiveDuration) {
		return nil, service.NewUserError(service.ErrInvalidInput, "❌ Timer duration must be positive.")
	}
	if err != nil {
		return nil, service.NewUserError(service.ErrParseFailure, "❓ Could not read %q as a duration.", strings.TrimSpace(input))
	}

	t, err := s.store.StartTimer(id, d)
	if err != nil {
		return nil, err
	}

	return text("⏳ **%s** started for %s. Ends at %s GMT.", t.Name, state.FormatRemaining(d), t.EndTime.UTC().Format(timeLayout)), nil
}

// StopTimer disarms a timer.
func (s *Service) StopTimer(ctx context.Context, actor auth.Actor, id string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "stop_timer")
	defer func() { s.end(scope, "stop_timer", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}
	return s.stopTimer(id)
}

// StopTimerByName disarms a timer looked up by name.
func (s *Service) StopTimerByName(ctx context.Context, actor auth.Actor, name string) (reply *discord.Reply, err error) {
	scope := s.begin(ctx, "stop_timer")
	defer func() { s.end(scope, "stop_timer", err) }()

	if err := requireRecord(actor); err != nil {
		return nil, err
	}

	t, err := s.store.FindTimer(name)
	if err != nil {
		return nil, notFoundNamed("Timer", name)
	}
	return s.stopTimer(t.ID)
}

func (s *Service) stopTimer(id string) (*discord.Reply, error) {
	t, err := s.store.StopTimer(id)
	if err != nil {
		return nil, err
	}

	return text("⏹️ **%s** stopped.", t.Name), nil
}
