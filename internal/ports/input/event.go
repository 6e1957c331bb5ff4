package input

import (
	"context"

	"volunteerhub/internal/domain/entities"
)

type EventUseCase interface {
	CreateEvent(ctx context.Context, in entities.NewEvent) (*entities.Event, error)
	GetEvent(ctx context.Context, id string) (*entities.Event, error)
	ListEvents(ctx context.Context, activeOnly bool) ([]entities.Event, error)
	UpdateEvent(ctx context.Context, id, actorID string, patch entities.EventPatch) (*entities.Event, error)
	DeleteEvent(ctx context.Context, id, actorID string) error
}
