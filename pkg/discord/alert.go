package discord

import (
	"fmt"

	"github.com/MattchuPichuu/WarDaddy/pkg/state"
)

// AlertSubject is the entity an alert is about
type AlertSubject struct {
	Kind        state.Kind
	Name        string
	Faction     state.Faction
	ExternalRef string
}

// Mention picks who gets pinged: the friendly's own account (or their name
// when no id is known), and the whole channel for enemies. Timers ping their
// owner when one is set.
func Mention(s AlertSubject) string {
	switch {
	case s.Kind == state.KindCombatant && s.Faction == state.FactionFriendly:
		if s.ExternalRef != "" {
			return fmt.Sprintf("<@%s>", s.ExternalRef)
		}
		return "@" + s.Name
	case s.Kind == state.KindTimer && s.ExternalRef != "":
		return fmt.Sprintf("<@%s>", s.ExternalRef)
	}
	return "@everyone"
}

// AlertMessage renders the chat text for alert about s.
func AlertMessage(alert state.AlertKind, s AlertSubject) (string, error) {
	mention := Mention(s)
	friendly := s.Faction == state.FactionFriendly

	switch alert {
	case state.AlertThreshold30Min, state.AlertThreshold15Min:
		icon, left := "⚠️", "30 minutes"
		if alert == state.AlertThreshold15Min {
			icon, left = "🔔", "15 minutes"
		}
		if friendly {
			return fmt.Sprintf("%s %s Your Whack Pro ends in **%s**!", icon, mention, left), nil
		}
		return fmt.Sprintf("%s %s Enemy **%s** whack pro ends in **%s**!", icon, mention, s.Name, left), nil

	case state.AlertNowOpen:
		if friendly {
			return fmt.Sprintf("🚨 %s You are now **OPEN**!", mention), nil
		}
		return fmt.Sprintf("🚨 %s Enemy **%s** is now **OPEN**!", mention, s.Name), nil

	case state.AlertThreshold5Min:
		return fmt.Sprintf("⏳ %s Timer **%s** ends in **5 minutes**!", mention, s.Name), nil

	case state.AlertTimerExpired:
		return fmt.Sprintf("⌛ %s Timer **%s** has **EXPIRED**!", mention, s.Name), nil
	}

	return "", fmt.Errorf("no message for alert %q", alert)
}
