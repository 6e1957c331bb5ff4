package entities

import (
	"slices"
	"time"
)

// DefaultDuration is assumed when an event has no end time.
const DefaultDuration = 4 * time.Hour

type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Event struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	DateTime         time.Time  `json:"dateTime"`
	EndDateTime      *time.Time `json:"endDateTime,omitempty"`
	ImageURL         *string    `json:"imageUrl"`
	Position         Position   `json:"position"`
	VolunteersNeeded int        `json:"volunteersNeeded"`
	VolunteersIDs    []string   `json:"volunteersIds"`
	OrganizerID      string     `json:"organizerId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// EffectiveEnd returns EndDateTime, or DateTime plus DefaultDuration when unset.
func (e *Event) EffectiveEnd() time.Time {
	if e.EndDateTime != nil && !e.EndDateTime.IsZero() {
		return *e.EndDateTime
	}
	return e.DateTime.Add(DefaultDuration)
}

func (e *Event) HasVolunteer(userID string) bool {
	return slices.Contains(e.VolunteersIDs, userID)
}

func (e *Event) IsFull() bool {
	return len(e.VolunteersIDs) >= e.VolunteersNeeded
}

func (e *Event) IsOrganizer(userID string) bool {
	return userID != "" && e.OrganizerID == userID
}

// Clone returns a deep copy so callers can mutate rosters without aliasing.
func (e Event) Clone() Event {
	out := e
	out.VolunteersIDs = slices.Clone(e.VolunteersIDs)
	if out.VolunteersIDs == nil {
		out.VolunteersIDs = []string{}
	}
	if e.EndDateTime != nil {
		end := *e.EndDateTime
		out.EndDateTime = &end
	}
	if e.ImageURL != nil {
		img := *e.ImageURL
		out.ImageURL = &img
	}
	return out
}

// WithVolunteer returns a copy with userID appended. Present ids are not duplicated.
func (e Event) WithVolunteer(userID string) Event {
	out := e.Clone()
	if !out.HasVolunteer(userID) {
		out.VolunteersIDs = append(out.VolunteersIDs, userID)
	}
	return out
}

// WithoutVolunteer returns a copy with exactly one occurrence of userID removed.
func (e Event) WithoutVolunteer(userID string) Event {
	out := e.Clone()
	if i := slices.Index(out.VolunteersIDs, userID); i >= 0 {
		out.VolunteersIDs = slices.Delete(out.VolunteersIDs, i, i+1)
	}
	return out
}

// EventPatch carries the fields an organizer may change after creation.
// Nil fields are left untouched. Roster, capacity and position are immutable here.
type EventPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	ImageURL    *string    `json:"imageUrl,omitempty"`
	EndDateTime *time.Time `json:"endDateTime,omitempty"`
}

func (p EventPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.ImageURL == nil && p.EndDateTime == nil
}

// Apply returns a copy of e with the patch applied.
func (p EventPatch) Apply(e Event) Event {
	out := e.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.ImageURL != nil {
		img := *p.ImageURL
		out.ImageURL = &img
	}
	if p.EndDateTime != nil {
		end := *p.EndDateTime
		out.EndDateTime = &end
	}
	return out
}
