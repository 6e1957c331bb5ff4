package entities

import "time"

type Status string

const (
	StatusUpcoming Status = "upcoming"
	StatusOngoing  Status = "ongoing"
	StatusPast     Status = "past"
)

// ComputeStatus places now against [DateTime, EffectiveEnd).
// now == DateTime is Ongoing, now == EffectiveEnd is Past.
func ComputeStatus(e *Event, now time.Time) Status {
	switch {
	case now.Before(e.DateTime):
		return StatusUpcoming
	case now.Before(e.EffectiveEnd()):
		return StatusOngoing
	default:
		return StatusPast
	}
}

// SpotsRemaining never goes negative, even for overcommitted legacy data.
func SpotsRemaining(e *Event) int {
	return max(0, e.VolunteersNeeded-len(e.VolunteersIDs))
}

// Availability drives the marker class shown on the map.
type Availability string

const (
	AvailabilityOpen       Availability = "open"
	AvailabilityNearlyFull Availability = "nearly_full"
	AvailabilityFull       Availability = "full"
)

func AvailabilityOf(e *Event) Availability {
	switch SpotsRemaining(e) {
	case 0:
		return AvailabilityFull
	case 1:
		return AvailabilityNearlyFull
	default:
		return AvailabilityOpen
	}
}

// IsActive reports whether the event should still be listed at now.
func IsActive(e *Event, now time.Time) bool {
	return e.EffectiveEnd().After(now)
}
