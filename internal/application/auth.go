package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/input"
	"volunteerhub/internal/ports/output"
)

var _ input.AuthUseCase = (*AuthService)(nil)

type AuthService struct {
	userRepo output.UserRepository
	tokens   output.TokenIssuer
	clock    clock.Clock
	log      *zap.Logger
}

func NewAuthService(userRepo output.UserRepository, tokens output.TokenIssuer, opts ...Option) *AuthService {
	o := collectOptions(opts)
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		clock:    o.clock,
		log:      o.log,
	}
}

// Authenticate checks the credentials and issues an access token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*input.LoginResult, error) {
	email = entities.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info("login failed, unknown email", zap.String("email", email))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login failed, wrong password", zap.String("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	s.log.Info("login succeeded", zap.String("user_id", user.ID))
	return &input.LoginResult{User: *user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *AuthService) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNotAuthenticated
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug("token rejected", zap.Error(err))
		return "", domain.ErrNotAuthenticated
	}
	return userID, nil
}

func (s *AuthService) LookupUser(ctx context.Context, userID string) (*entities.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
