package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

const (
	BotUsername  = "War Daddy"
	BotAvatarURL = "https://media1.tenor.com/m/0y122eQ8E8AAAAAC/robot-mech.gif"
	FooterText   = "War Daddy Protection System"

	BoardTitle = "🛑 WAR DADDY BOARD UPDATE"
	BoardColor = 3447003

	colorOpen      = 0x10b981
	colorProtected = 0x06b6d4
	colorDropping  = 0xf59e0b

	noData = "No data"

	// server time as an HTTP date, e.g. "Fri, 21 Nov 2025 12:00:00 GMT"
	serverTimeLayout = "Mon, 02 Jan 2006 15:04:05 GMT"
	dateTimeLayout   = "2006-01-02 15:04:05"
	clockLayout      = "15:04:05"
)

func footer() *EmbedFooter {
	return &EmbedFooter{Text: FooterText}
}

// statusParts returns the icon and the status text for c at now.
func statusParts(c *state.Combatant, now time.Time) (state.ProtectionStatus, string, string) {
	status, remaining := state.ResolveCombatant(c, now)
	switch status {
	case state.StatusDead:
		return status, "💀", "DEAD"
	case state.StatusProtected:
		return status, "🛡️", "Safe for " + state.FormatRemaining(*remaining)
	case state.StatusDropping:
		return status, "⚠️", "DROPPING: " + state.FormatRemaining(*remaining)
	}
	return state.StatusOpen, "🟢", "OPEN"
}

// DisplayName renders a friendly with a Discord id as "Name (<@id>)".
func DisplayName(c *state.Combatant) string {
	if c.Faction == state.FactionFriendly && c.ExternalRef != "" {
		return fmt.Sprintf("%s (<@%s>)", c.Name, c.ExternalRef)
	}
	return c.Name
}

// StatusLine renders one combatant row of the board.
func StatusLine(c *state.Combatant, now time.Time) string {
	_, icon, info := statusParts(c, now)
	return fmt.Sprintf("%s **%s** — %s", icon, DisplayName(c), info)
}

// CooldownLine renders one skill cooldown row of the board.
func CooldownLine(cs *state.CooldownSubject, now time.Time) string {
	name := cs.Name
	if cs.ExternalRef != "" {
		name = fmt.Sprintf("%s (<@%s>)", cs.Name, cs.ExternalRef)
	}

	status, remaining := state.ResolveCooldown(cs, now)
	if status == state.CooldownClosed {
		return fmt.Sprintf("⏱️ **%s** — CLOSED: %s", name, state.FormatRemaining(*remaining))
	}
	return fmt.Sprintf("✅ **%s** — READY", name)
}

// TimerLine renders one ad-hoc timer row of the board.
func TimerLine(t *state.AdhocTimer, now time.Time) string {
	status, remaining := state.ResolveTimer(t, now)
	switch status {
	case state.TimerActive:
		return fmt.Sprintf("⏳ **%s** — %s", t.Name, state.FormatRemaining(*remaining))
	case state.TimerExpired:
		return fmt.Sprintf("⌛ **%s** — EXPIRED", t.Name)
	}
	return fmt.Sprintf("⏹️ **%s** — STOPPED", t.Name)
}

func joinOr(lines []string, empty string) string {
	if len(lines) == 0 {
		return empty
	}
	return strings.Join(lines, "\n")
}

// BoardEmbed renders the full war board at snap.At.
// Cooldown and timer sections only appear when something is tracked.
func BoardEmbed(snap *service.Snapshot) Embed {
	now := snap.At

	var friendlies, enemies []string
	for _, c := range snap.Combatants {
		line := StatusLine(c, now)
		if c.Faction == state.FactionFriendly {
			friendlies = append(friendlies, line)
		} else {
			enemies = append(enemies, line)
		}
	}

	fields := []EmbedField{
		{Name: "🔵 FRIENDLIES", Value: joinOr(friendlies, noData)},
		{Name: "🔴 ENEMIES", Value: joinOr(enemies, noData)},
	}

	if len(snap.Cooldowns) > 0 {
		lines := make([]string, 0, len(snap.Cooldowns))
		for _, cs := range snap.Cooldowns {
			lines = append(lines, CooldownLine(cs, now))
		}
		fields = append(fields, EmbedField{Name: "⏱️ SKILL COOLDOWNS", Value: joinOr(lines, noData)})
	}

	if len(snap.Timers) > 0 {
		lines := make([]string, 0, len(snap.Timers))
		for _, t := range snap.Timers {
			lines = append(lines, TimerLine(t, now))
		}
		fields = append(fields, EmbedField{Name: "⏳ TIMERS", Value: joinOr(lines, noData)})
	}

	return Embed{
		Title:       BoardTitle,
		Description: "Server Time: " + now.UTC().Format(serverTimeLayout),
		Color:       BoardColor,
		Fields:      fields,
		Footer:      footer(),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}
}

// BoardPayload wraps the board embed for a webhook post.
func BoardPayload(snap *service.Snapshot) Payload {
	return Payload{
		Username:  BotUsername,
		AvatarURL: BotAvatarURL,
		Embeds:    []Embed{BoardEmbed(snap)},
	}
}

// ProEmbed renders the status card of a single combatant.
func ProEmbed(c *state.Combatant, now time.Time) Embed {
	status, icon, info := statusParts(c, now)

	color := colorDropping
	switch status {
	case state.StatusOpen:
		color = colorOpen
	case state.StatusProtected:
		color = colorProtected
	}

	embed := Embed{
		Title:       fmt.Sprintf("%s %s", icon, c.Name),
		Description: fmt.Sprintf("**Status:** %s", info),
		Color:       color,
		Footer:      footer(),
		Timestamp:   now.UTC().Format(time.RFC3339),
	}

	if c.TriggerTime != nil {
		w := state.ComputeWindow(*c.TriggerTime)
		embed.Fields = []EmbedField{
			{Name: "Last Shot", Value: c.TriggerTime.UTC().Format(dateTimeLayout) + " GMT", Inline: true},
			{Name: "Pro Start", Value: w.Start.UTC().Format(clockLayout) + " GMT", Inline: true},
			{Name: "Pro End", Value: w.End.UTC().Format(clockLayout) + " GMT", Inline: true},
		}
	}

	return embed
}

// ShotEmbed confirms a recorded shot.
func ShotEmbed(c *state.Combatant, updatedBy string) Embed {
	shot := *c.TriggerTime
	w := state.ComputeWindow(shot)

	return Embed{
		Title:       "🎯 Shot Recorded: " + c.Name,
		Description: "Updated by " + updatedBy,
		Color:       colorProtected,
		Fields: []EmbedField{
			{Name: "Shot Time", Value: shot.UTC().Format(clockLayout) + " GMT", Inline: true},
			{Name: "Pro Start", Value: w.Start.UTC().Format(clockLayout) + " GMT", Inline: true},
			{Name: "Pro End", Value: w.End.UTC().Format(clockLayout) + " GMT", Inline: true},
		},
		Footer:    footer(),
		Timestamp: shot.UTC().Format(time.RFC3339),
	}
}

// Sitrep renders a plain-text situation report of the board at snap.At.
func Sitrep(snap *service.Snapshot) string {
	now := snap.At

	var open, soon, friendliesDropping, dead []string
	for _, c := range snap.Combatants {
		status, remaining := state.ResolveCombatant(c, now)
		if c.Faction == state.FactionFriendly {
			if status == state.StatusDropping {
				friendliesDropping = append(friendliesDropping, fmt.Sprintf("%s (%s)", c.Name, state.FormatRemaining(*remaining)))
			}
			continue
		}

		switch {
		case status == state.StatusDead:
			dead = append(dead, c.Name)
		case status == state.StatusOpen:
			open = append(open, c.Name)
		case status == state.StatusDropping && *remaining < 15*time.Minute:
			soon = append(soon, fmt.Sprintf("%s (%s)", c.Name, state.FormatRemaining(*remaining)))
		}
	}

	list := func(names []string) string {
		if len(names) == 0 {
			return "None"
		}
		return strings.Join(names, ", ")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**SITREP** (%s GMT)\n", now.UTC().Format(clockLayout))
	fmt.Fprintf(&b, "• **Open targets:** %s\n", list(open))
	fmt.Fprintf(&b, "• **Opening soon (<15m):** %s\n", list(soon))
	fmt.Fprintf(&b, "• **Friendlies dropping:** %s\n", list(friendliesDropping))
	fmt.Fprintf(&b, "• **Dead:** %s", list(dead))
	return b.String()
}
