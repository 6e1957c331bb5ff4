package discord

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"volunteerhub/internal/domain/entities"
	"volunteerhub/pkg/datefmt"
)

const (
	colorOpen       = 0x57F287
	colorNearlyFull = 0xFEE75C
	colorFull       = 0xED4245
)

// ColorFor mirrors the map marker classes.
func ColorFor(a entities.Availability) int {
	switch a {
	case entities.AvailabilityFull:
		return colorFull
	case entities.AvailabilityNearlyFull:
		return colorNearlyFull
	default:
		return colorOpen
	}
}

func formatSpots(e *entities.Event) string {
	return fmt.Sprintf("%d/%d", len(e.VolunteersIDs), e.VolunteersNeeded)
}

func buildDescription(e *entities.Event, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(e.Description)
	b.WriteString(fmt.Sprintf("\n\n**When:** %s", datefmt.EventDateRange(e.DateTime, e.EffectiveEnd(), loc)))
	b.WriteString(fmt.Sprintf("\n**Volunteers:** %s", formatSpots(e)))
	if spots := entities.SpotsRemaining(e); spots > 0 {
		b.WriteString(fmt.Sprintf(" • %d left", spots))
	}
	return b.String()
}

// BuildEventEmbed renders an event announcement. title is already localized.
func BuildEventEmbed(title string, e *entities.Event, loc *time.Location) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: buildDescription(e, loc),
		Color:       ColorFor(entities.AvailabilityOf(e)),
		Footer:      &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Event %s", e.ID)},
		Fields: []*discordgo.MessageEmbedField{{
			Name:   "Location",
			Value:  fmt.Sprintf("%.5f, %.5f", e.Position.Latitude, e.Position.Longitude),
			Inline: true,
		}},
	}
	if e.ImageURL != nil && *e.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: *e.ImageURL}
	}
	return embed
}
