package entities

import (
	"strings"
	"time"

	"volunteerhub/internal/domain"
)

// NewEvent is the organizer's submission before it enters the store.
type NewEvent struct {
	Name             string
	Description      string
	DateTime         time.Time
	EndDateTime      *time.Time
	ImageURL         *string
	Position         Position
	VolunteersNeeded int
	OrganizerID      string
}

// Validate rejects structurally invalid events. now is the creation time.
func (n NewEvent) Validate(now time.Time) error {
	if strings.TrimSpace(n.Name) == "" {
		return domain.Invalid("name", "required")
	}
	if strings.TrimSpace(n.Description) == "" {
		return domain.Invalid("description", "required")
	}
	if n.VolunteersNeeded <= 0 {
		return domain.Invalid("volunteersNeeded", "must be a positive number")
	}
	if n.DateTime.IsZero() {
		return domain.Invalid("dateTime", "required")
	}
	if !n.DateTime.After(now) {
		return domain.Invalid("dateTime", "must be in the future")
	}
	if n.EndDateTime != nil && !n.EndDateTime.After(n.DateTime) {
		return domain.Invalid("endDateTime", "must be after dateTime")
	}
	if n.Position.Latitude < -90 || n.Position.Latitude > 90 {
		return domain.Invalid("position.latitude", "out of range")
	}
	if n.Position.Longitude < -180 || n.Position.Longitude > 180 {
		return domain.Invalid("position.longitude", "out of range")
	}
	return nil
}

// Event materializes the submission with an empty roster.
func (n NewEvent) Event(id string, now time.Time) Event {
	e := Event{
		ID:               id,
		Name:             strings.TrimSpace(n.Name),
		Description:      strings.TrimSpace(n.Description),
		DateTime:         n.DateTime,
		Position:         n.Position,
		VolunteersNeeded: n.VolunteersNeeded,
		VolunteersIDs:    []string{},
		OrganizerID:      n.OrganizerID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if n.EndDateTime != nil {
		end := *n.EndDateTime
		e.EndDateTime = &end
	}
	if n.ImageURL != nil && strings.TrimSpace(*n.ImageURL) != "" {
		img := strings.TrimSpace(*n.ImageURL)
		e.ImageURL = &img
	}
	return e
}
