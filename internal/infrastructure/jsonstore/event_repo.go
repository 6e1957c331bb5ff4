package jsonstore

import (
	"context"
	"errors"
	"fmt"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

var _ output.EventRepository = (*EventRepository)(nil)

type EventRepository struct {
	s *Store
}

func (r *EventRepository) Create(_ context.Context, event *entities.Event) error {
	now := r.s.now()
	return r.s.mutate(func(doc *document) error {
		if indexOfEvent(doc.Events, event.ID) >= 0 {
			return fmt.Errorf("create event: duplicate id %s", event.ID)
		}
		if event.CreatedAt.IsZero() {
			event.CreatedAt = now
		}
		event.UpdatedAt = now
		if event.VolunteersIDs == nil {
			event.VolunteersIDs = []string{}
		}
		doc.Events = append(doc.Events, event.Clone())
		return nil
	})
}

func (r *EventRepository) FindByID(_ context.Context, id string) (*entities.Event, error) {
	var (
		out   entities.Event
		found bool
	)
	r.s.read(func(doc *document) {
		if i := indexOfEvent(doc.Events, id); i >= 0 {
			out = doc.Events[i].Clone()
			found = true
		}
	})
	if !found {
		return nil, domain.ErrEventNotFound
	}
	return &out, nil
}

func (r *EventRepository) List(_ context.Context) ([]entities.Event, error) {
	var out []entities.Event
	r.s.read(func(doc *document) {
		out = make([]entities.Event, len(doc.Events))
		for i := range doc.Events {
			out[i] = doc.Events[i].Clone()
		}
	})
	return out, nil
}

func (r *EventRepository) Update(_ context.Context, id string, patch entities.EventPatch) (*entities.Event, error) {
	var out entities.Event
	err := r.s.mutate(func(doc *document) error {
		i := indexOfEvent(doc.Events, id)
		if i < 0 {
			return domain.ErrEventNotFound
		}
		updated := patch.Apply(doc.Events[i])
		updated.UpdatedAt = r.s.now()
		doc.Events[i] = updated
		out = updated.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *EventRepository) Delete(_ context.Context, id string) error {
	return r.s.mutate(func(doc *document) error {
		i := indexOfEvent(doc.Events, id)
		if i < 0 {
			return domain.ErrEventNotFound
		}
		doc.Events = append(doc.Events[:i], doc.Events[i+1:]...)
		return nil
	})
}

// AddVolunteer checks uniqueness and capacity and appends under the store lock.
func (r *EventRepository) AddVolunteer(_ context.Context, eventID, userID string) (*entities.Event, error) {
	var out entities.Event
	err := r.s.mutate(func(doc *document) error {
		i := indexOfEvent(doc.Events, eventID)
		if i < 0 {
			return domain.ErrEventNotFound
		}
		current := doc.Events[i]
		if current.HasVolunteer(userID) {
			return domain.ErrAlreadyVolunteered
		}
		if current.IsFull() {
			return domain.ErrCapacityExceeded
		}
		updated := current.WithVolunteer(userID)
		updated.UpdatedAt = r.s.now()
		doc.Events[i] = updated
		out = updated.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// errUnchanged aborts a mutation that would not change the document.
var errUnchanged = errors.New("unchanged")

// RemoveVolunteer is idempotent: an absent id returns the event unchanged
// without rewriting the file.
func (r *EventRepository) RemoveVolunteer(_ context.Context, eventID, userID string) (*entities.Event, error) {
	var out entities.Event
	err := r.s.mutate(func(doc *document) error {
		i := indexOfEvent(doc.Events, eventID)
		if i < 0 {
			return domain.ErrEventNotFound
		}
		current := doc.Events[i]
		if !current.HasVolunteer(userID) {
			out = current.Clone()
			return errUnchanged
		}
		updated := current.WithoutVolunteer(userID)
		updated.UpdatedAt = r.s.now()
		doc.Events[i] = updated
		out = updated.Clone()
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return &out, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func indexOfEvent(events []entities.Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
