package output

import (
	"context"

	"volunteerhub/internal/domain/entities"
)

// EventRepository is the Event Store. Roster mutations are atomic conditional
// writes: AddVolunteer must fail with domain.ErrCapacityExceeded or
// domain.ErrAlreadyVolunteered without modifying the roster.
type EventRepository interface {
	Create(ctx context.Context, event *entities.Event) error
	FindByID(ctx context.Context, id string) (*entities.Event, error)
	List(ctx context.Context) ([]entities.Event, error)
	Update(ctx context.Context, id string, patch entities.EventPatch) (*entities.Event, error)
	Delete(ctx context.Context, id string) error
	AddVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error)
	RemoveVolunteer(ctx context.Context, eventID, userID string) (*entities.Event, error)
}
