package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MattchuPichuu/WarDaddy/pkg/auth"
	"github.com/MattchuPichuu/WarDaddy/pkg/service"
	"github.com/MattchuPichuu/WarDaddy/pkg/state"
	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// ErrNoChannel is returned when alerts are sent without a notification channel configured
var ErrNoChannel = errors.New("no notification channel configured")

const commandTimeout = 5 * time.Second

// Commands is the slice of the command surface the bot exposes as slash commands
type Commands interface {
	Pro(ctx context.Context, name string) (*Reply, error)
	Board(ctx context.Context) (*Reply, error)
	Shot(ctx context.Context, actor auth.Actor, name string, faction state.Faction) (*Reply, error)
	AddPlayer(ctx context.Context, actor auth.Actor, name string, faction state.Faction, externalRef string) (*Reply, error)
	Sitrep(ctx context.Context) (*Reply, error)
}

// BotConfig holds the Discord application settings
type BotConfig struct {
	Token     string
	AppID     string
	GuildID   string // empty registers commands globally
	ChannelID string // where alerts are posted
	Role      auth.Role
}

// Bot connects the command surface to Discord slash commands and posts
// alerts to the notification channel.
type Bot struct {
	cfg      BotConfig
	session  *discordgo.Session
	commands Commands
}

// NewBot creates a bot; call Open to connect.
func NewBot(cfg BotConfig, commands Commands) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord bot token is required")
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	b := &Bot{
		cfg:      cfg,
		session:  session,
		commands: commands,
	}
	session.AddHandler(b.onInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logrus.Infof("War Daddy is online as %s", r.User.String())
	})

	return b, nil
}

// Open connects to the gateway and registers the slash commands.
func (b *Bot) Open() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	appID := b.cfg.AppID
	if appID == "" && b.session.State != nil && b.session.State.User != nil {
		appID = b.session.State.User.ID
	}

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, SlashCommands())
	if err != nil {
		return fmt.Errorf("failed to register slash commands: %w", err)
	}

	logrus.Infof("registered %d slash commands", len(registered))
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	return b.session.Close()
}

// SendMessage posts content to the notification channel.
func (b *Bot) SendMessage(ctx context.Context, content string) error {
	if b.cfg.ChannelID == "" {
		return ErrNoChannel
	}

	if _, err := b.session.ChannelMessageSend(b.cfg.ChannelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("%w: %v", service.ErrDeliveryFailure, err)
	}
	return nil
}

var factionChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Friendly", Value: string(state.FactionFriendly)},
	{Name: "Enemy", Value: string(state.FactionEnemy)},
}

// SlashCommands returns the command definitions the bot registers
func SlashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "pro",
			Description: "Check a player's whack protection status",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "player", Description: "Player name to check", Required: true},
			},
		},
		{
			Name:        "board",
			Description: "Display the current war board",
		},
		{
			Name:        "shot",
			Description: "Record a shot time for a player",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "player", Description: "Player name", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "faction", Description: "Friendly or Enemy", Required: true, Choices: factionChoices},
			},
		},
		{
			Name:        "addplayer",
			Description: "Add a new player to track",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Player name", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "faction", Description: "Friendly or Enemy", Required: true, Choices: factionChoices},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "member", Description: "Discord member to ping for this player"},
			},
		},
		{
			Name:        "sitrep",
			Description: "Post a short situation report",
		},
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	data := i.ApplicationCommandData()
	reply, err := b.dispatch(ctx, data.Name, options(data.Options), b.actor(i))
	if err != nil {
		logrus.Warnf("slash command /%s failed: %v", data.Name, err)
		reply = &Reply{Content: service.UserMessage(err)}
	}

	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: toResponseData(reply),
	}); err != nil {
		logrus.Errorf("failed to respond to /%s: %v", data.Name, err)
	}
}

func (b *Bot) dispatch(ctx context.Context, name string, opts map[string]string, actor auth.Actor) (*Reply, error) {
	faction := state.Faction(opts["faction"])

	switch name {
	case "pro":
		return b.commands.Pro(ctx, opts["player"])
	case "board":
		return b.commands.Board(ctx)
	case "shot":
		return b.commands.Shot(ctx, actor, opts["player"], faction)
	case "addplayer":
		return b.commands.AddPlayer(ctx, actor, opts["name"], faction, opts["member"])
	case "sitrep":
		return b.commands.Sitrep(ctx)
	}
	return nil, fmt.Errorf("%w: unknown command /%s", service.ErrInvalidInput, name)
}

func (b *Bot) actor(i *discordgo.InteractionCreate) auth.Actor {
	actor := auth.Actor{Username: "unknown", Role: b.cfg.Role}
	switch {
	case i.Member != nil && i.Member.User != nil:
		actor.Username = i.Member.User.String()
	case i.User != nil:
		actor.Username = i.User.String()
	}
	return actor
}

// options flattens the top-level option values to strings. User options carry the user id.
func options(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]string {
	out := make(map[string]string, len(opts))
	for _, o := range opts {
		switch o.Type {
		case discordgo.ApplicationCommandOptionString:
			out[o.Name] = strings.TrimSpace(o.StringValue())
		case discordgo.ApplicationCommandOptionUser:
			if id, ok := o.Value.(string); ok {
				out[o.Name] = id
			}
		}
	}
	return out
}

func toResponseData(r *Reply) *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{Content: r.Content}
	for _, e := range r.Embeds {
		data.Embeds = append(data.Embeds, toMessageEmbed(e))
	}
	return data
}

func toMessageEmbed(e Embed) *discordgo.MessageEmbed {
	me := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
		Timestamp:   e.Timestamp,
	}
	if e.Footer != nil {
		me.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer.Text}
	}
	for _, f := range e.Fields {
		me.Fields = append(me.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return me
}
