package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	events, err := h.events.ListEvents(r.Context(), activeOnly)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	now := h.clock.Now()
	out := make([]EventView, 0, len(events))
	for i := range events {
		out = append(out, newEventView(&events[i], now))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getEvent(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e, h.clock.Now()))
}

func (h *Handler) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeCode(w, r, codeInvalidRequestBody, nil)
		return
	}
	in, err := req.toNewEvent(UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.events.CreateEvent(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEventView(e, h.clock.Now()))
}

func (h *Handler) updateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeCode(w, r, codeInvalidRequestBody, nil)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	e, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e, h.clock.Now()))
}

func (h *Handler) deleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id"), UserID(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	e, err := h.roster.Join(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e, h.clock.Now()))
}

func (h *Handler) leave(w http.ResponseWriter, r *http.Request) {
	e, err := h.roster.Leave(r.Context(), chi.URLParam(r, "id"), UserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newEventView(e, h.clock.Now()))
}

func (h *Handler) listVolunteers(w http.ResponseWriter, r *http.Request) {
	users, err := h.roster.Volunteers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeCode(w, r, codeInvalidRequestBody, nil)
		return
	}
	res, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.auth.LookupUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

