// Package discord posts event announcements to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
	pkgdiscord "volunteerhub/pkg/discord"
)

var _ output.EventNotifier = (*Notifier)(nil)

// embedSender is the part of *discordgo.Session the notifier uses.
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type Notifier struct {
	sender    embedSender
	channelID string
	tr        output.Translator
	locale    string
	loc       *time.Location
	log       *zap.Logger
}

type Config struct {
	Token     string
	ChannelID string
	Locale    string
	Location  *time.Location
}

// New creates a REST-only Discord session; no gateway connection is opened.
func New(cfg Config, tr output.Translator, log *zap.Logger) (*Notifier, error) {
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return newNotifier(s, cfg, tr, log), nil
}

func newNotifier(sender embedSender, cfg Config, tr output.Translator, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		sender:    sender,
		channelID: cfg.ChannelID,
		tr:        tr,
		locale:    cfg.Locale,
		loc:       loc,
		log:       log,
	}
}

func (n *Notifier) EventCreated(ctx context.Context, event entities.Event) error {
	return n.send(ctx, "event_created", event)
}

func (n *Notifier) EventFilled(ctx context.Context, event entities.Event) error {
	return n.send(ctx, "event_filled", event)
}

func (n *Notifier) EventStartingSoon(ctx context.Context, event entities.Event) error {
	return n.send(ctx, "event_starting_soon", event)
}

func (n *Notifier) send(ctx context.Context, key string, event entities.Event) error {
	title := n.tr.T(n.locale, key, map[string]any{"Name": event.Name})
	embed := pkgdiscord.BuildEventEmbed(title, &event, n.loc)
	if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord %s: %w", key, err)
	}
	n.log.Debug("discord notification sent", zap.String("kind", key), zap.String("event_id", event.ID))
	return nil
}
