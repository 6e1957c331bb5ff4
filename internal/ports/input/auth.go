package input

import (
	"context"
	"time"

	"volunteerhub/internal/domain/entities"
)

// LoginResult is what a successful authentication hands back to the client.
type LoginResult struct {
	User        entities.User `json:"user"`
	AccessToken string        `json:"accessToken"`
	ExpiresAt   time.Time     `json:"expiresAt"`
}

type AuthUseCase interface {
	Authenticate(ctx context.Context, email, password string) (*LoginResult, error)
	Verify(ctx context.Context, token string) (userID string, err error)
	LookupUser(ctx context.Context, userID string) (*entities.User, error)
}
