package http

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
)

type EventView = entities.EventView

func newEventView(e *entities.Event, now time.Time) EventView {
	return entities.NewEventView(e, now)
}

// looseInt accepts a JSON number or a numeric string, as form inputs send both.
type looseInt struct {
	raw json.RawMessage
}

func (l *looseInt) UnmarshalJSON(b []byte) error {
	l.raw = append(l.raw[:0], b...)
	return nil
}

func (l looseInt) value() (int, bool) {
	s := strings.TrimSpace(string(l.raw))
	if s == "" || s == "null" {
		return 0, false
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(l.raw, &str); err != nil {
			return 0, false
		}
		s = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

type positionDTO struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type createEventRequest struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	DateTime         string      `json:"dateTime"`
	EndDateTime      *string     `json:"endDateTime"`
	ImageURL         *string     `json:"imageUrl"`
	Position         positionDTO `json:"position"`
	VolunteersNeeded looseInt    `json:"volunteersNeeded"`
}

func (req createEventRequest) toNewEvent(organizerID string) (entities.NewEvent, error) {
	needed, ok := req.VolunteersNeeded.value()
	if !ok {
		return entities.NewEvent{}, domain.Invalid("volunteersNeeded", "must be a positive number")
	}
	start, err := parseTime("dateTime", req.DateTime)
	if err != nil {
		return entities.NewEvent{}, err
	}
	var end *time.Time
	if req.EndDateTime != nil && strings.TrimSpace(*req.EndDateTime) != "" {
		t, err := parseTime("endDateTime", *req.EndDateTime)
		if err != nil {
			return entities.NewEvent{}, err
		}
		end = &t
	}
	if req.Position.Latitude == nil || req.Position.Longitude == nil {
		return entities.NewEvent{}, domain.Invalid("position", "required")
	}
	return entities.NewEvent{
		Name:        req.Name,
		Description: req.Description,
		DateTime:    start,
		EndDateTime: end,
		ImageURL:    req.ImageURL,
		Position: entities.Position{
			Latitude:  *req.Position.Latitude,
			Longitude: *req.Position.Longitude,
		},
		VolunteersNeeded: needed,
		OrganizerID:      organizerID,
	}, nil
}

type updateEventRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	EndDateTime *string `json:"endDateTime"`
}

func (req updateEventRequest) toPatch() (entities.EventPatch, error) {
	patch := entities.EventPatch{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if req.EndDateTime != nil {
		t, err := parseTime("endDateTime", *req.EndDateTime)
		if err != nil {
			return entities.EventPatch{}, err
		}
		patch.EndDateTime = &t
	}
	return patch, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func parseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, domain.Invalid(field, "required")
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, domain.Invalid(field, "must be an RFC 3339 timestamp")
	}
	return t.UTC(), nil
}
