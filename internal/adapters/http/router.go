// Package http exposes the event and roster use cases as a JSON API.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/ports/input"
	"volunteerhub/internal/ports/output"
)

// Deps are the collaborators the API needs.
type Deps struct {
	Events      input.EventUseCase
	Roster      input.RosterUseCase
	Auth        input.AuthUseCase
	Translator  output.Translator
	Clock       clock.Clock
	Log         *zap.Logger
	CORSOrigins []string
}

type Handler struct {
	events input.EventUseCase
	roster input.RosterUseCase
	auth   input.AuthUseCase
	tr     output.Translator
	clock  clock.Clock
	log    *zap.Logger
}

// NewRouter wires the middleware stack and routes.
func NewRouter(d Deps) http.Handler {
	h := &Handler{
		events: d.Events,
		roster: d.Roster,
		auth:   d.Auth,
		tr:     d.Translator,
		clock:  d.Clock,
		log:    d.Log,
	}
	if h.clock == nil {
		h.clock = clock.NewSystem()
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Recoverer)
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   d.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.writeCode(w, r, codeNotFound, nil)
	})

	r.Get("/health", h.health)
	r.Post("/login", h.login)
	r.Get("/users/{id}", h.getUser)
	r.Get("/calendar.ics", h.calendarFeed)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.listEvents)
		r.Get("/{id}", h.getEvent)
		r.Get("/{id}/volunteers", h.listVolunteers)
		r.Get("/{id}/calendar.ics", h.eventCalendar)

		r.Group(func(pr chi.Router) {
			pr.Use(h.requireAuth)
			pr.Post("/", h.createEvent)
			pr.Patch("/{id}", h.updateEvent)
			pr.Delete("/{id}", h.deleteEvent)
			pr.Post("/{id}/volunteers", h.join)
			pr.Delete("/{id}/volunteers", h.leave)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
