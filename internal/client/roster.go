package client

import (
	"context"
	"sync"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
)

type rosterAPI interface {
	Join(ctx context.Context, token, eventID string) (*entities.EventView, error)
	Leave(ctx context.Context, token, eventID string) (*entities.EventView, error)
}

// EventScreen is the locally displayed state of one event. Toggle mutates
// it optimistically; at most one toggle per screen is in flight.
type EventScreen struct {
	mu      sync.Mutex
	view    entities.EventView
	pending bool
}

func NewEventScreen(v entities.EventView) *EventScreen {
	v.Event = v.Event.Clone()
	return &EventScreen{view: v}
}

// View returns a copy of what the screen currently shows.
func (s *EventScreen) View() entities.EventView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Event = v.Event.Clone()
	return v
}

// Pending reports whether a toggle is awaiting the server.
func (s *EventScreen) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Replace installs a fresh server snapshot, e.g. after a reload.
func (s *EventScreen) Replace(v entities.EventView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v.Event = v.Event.Clone()
	s.view = v
}

// Roster implements the volunteer toggle on top of a Session.
type Roster struct {
	api     rosterAPI
	session *Session
	clock   clock.Clock
}

func NewRoster(api rosterAPI, session *Session, c clock.Clock) *Roster {
	if c == nil {
		c = clock.NewSystem()
	}
	return &Roster{api: api, session: session, clock: c}
}

// Toggle joins the event if the current user is not on the roster and
// leaves it otherwise. The screen shows the change immediately; when the
// server rejects it the screen returns to the exact prior state and the
// error is returned. joined reports the confirmed membership.
func (r *Roster) Toggle(ctx context.Context, screen *EventScreen) (joined bool, err error) {
	user := r.session.CurrentUser()
	token, ok := r.session.Token()
	if user == nil || !ok {
		return false, domain.ErrNotAuthenticated
	}

	screen.mu.Lock()
	if screen.pending {
		screen.mu.Unlock()
		return false, domain.ErrTogglePending
	}
	prev := screen.view
	prev.Event = prev.Event.Clone()
	joining := !prev.HasVolunteer(user.ID)
	if joining && prev.IsFull() {
		screen.mu.Unlock()
		return false, domain.ErrCapacityExceeded
	}

	optimistic := prev.Event.WithoutVolunteer(user.ID)
	if joining {
		optimistic = prev.Event.WithVolunteer(user.ID)
	}
	screen.view = entities.NewEventView(&optimistic, r.clock.Now())
	screen.pending = true
	screen.mu.Unlock()

	var snapshot *entities.EventView
	if joining {
		snapshot, err = r.api.Join(ctx, token, prev.ID)
	} else {
		snapshot, err = r.api.Leave(ctx, token, prev.ID)
	}

	screen.mu.Lock()
	defer screen.mu.Unlock()
	screen.pending = false
	if err != nil {
		screen.view = prev
		r.session.Observe(err)
		return !joining, err
	}
	screen.view = *snapshot
	screen.view.Event = snapshot.Event.Clone()
	return snapshot.HasVolunteer(user.ID), nil
}
