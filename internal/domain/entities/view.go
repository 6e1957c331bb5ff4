package entities

import "time"

// EventView is an event plus the values derived from it at a given instant.
// It is the wire shape of GET /events/{id}.
type EventView struct {
	Event
	Status         Status       `json:"status"`
	SpotsRemaining int          `json:"spotsRemaining"`
	Availability   Availability `json:"availability"`
}

func NewEventView(e *Event, now time.Time) EventView {
	return EventView{
		Event:          e.Clone(),
		Status:         ComputeStatus(e, now),
		SpotsRemaining: SpotsRemaining(e),
		Availability:   AvailabilityOf(e),
	}
}
