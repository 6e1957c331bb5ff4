package http

import (
	"fmt"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/go-chi/chi/v5"

	"volunteerhub/internal/domain/entities"
)

const calendarProductID = "-//volunteerhub//events//EN"

// buildCalendar renders events as an iCalendar PUBLISH feed.
func buildCalendar(events []entities.Event, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetName("Volunteer events")

	for i := range events {
		e := &events[i]
		ve := cal.AddEvent(e.ID + "@volunteerhub")
		ve.SetDtStampTime(now)
		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
		}
		ve.SetStartAt(e.DateTime)
		ve.SetEndAt(e.EffectiveEnd())
		ve.SetSummary(e.Name)
		ve.SetDescription(fmt.Sprintf("%s\n\nVolunteers: %d/%d", e.Description, len(e.VolunteersIDs), e.VolunteersNeeded))
		ve.SetLocation(fmt.Sprintf("%.6f,%.6f", e.Position.Latitude, e.Position.Longitude))
	}
	return cal.Serialize()
}

func writeCalendar(w http.ResponseWriter, filename, body string) {
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename=%q`, filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (h *Handler) eventCalendar(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCalendar(w, e.ID+".ics", buildCalendar([]entities.Event{*e}, h.clock.Now()))
}

// calendarFeed serves every active event, suitable for a calendar subscription.
func (h *Handler) calendarFeed(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context(), true)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeCalendar(w, "events.ics", buildCalendar(events, h.clock.Now()))
}
