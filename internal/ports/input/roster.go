package input

import (
	"context"

	"volunteerhub/internal/domain/entities"
)

type RosterUseCase interface {
	Join(ctx context.Context, eventID, userID string) (*entities.Event, error)
	Leave(ctx context.Context, eventID, userID string) (*entities.Event, error)
	Volunteers(ctx context.Context, eventID string) ([]entities.User, error)
}
