package client

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/input"
	"volunteerhub/internal/ports/output"
)

const (
	keyUserInfo    = "userInfo"
	keyAccessToken = "accessToken"
	keyExpiresAt   = "expiresAt"

	minPasswordLength = 6
)

type authenticator interface {
	Login(ctx context.Context, email, password string) (*input.LoginResult, error)
}

// Session holds at most one logged-in identity and persists it in kv.
type Session struct {
	auth  authenticator
	kv    output.KeyValueStore
	clock clock.Clock

	mu        sync.Mutex
	user      *entities.User
	token     string
	expiresAt time.Time
}

// NewSession restores a persisted identity from kv, if any.
func NewSession(auth authenticator, kv output.KeyValueStore, c clock.Clock) (*Session, error) {
	if c == nil {
		c = clock.NewSystem()
	}
	s := &Session{auth: auth, kv: kv, clock: c}

	var (
		user  entities.User
		token string
		exp   time.Time
	)
	okUser, err := kv.Get(keyUserInfo, &user)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	okToken, err := kv.Get(keyAccessToken, &token)
	if err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if _, err := kv.Get(keyExpiresAt, &exp); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	if okUser && okToken && token != "" {
		s.user, s.token, s.expiresAt = &user, token, exp
	}
	return s, nil
}

// CurrentUser returns the logged-in user, or nil when logged out or when
// the token has expired. An expired session is cleared.
func (s *Session) CurrentUser() *entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	if s.expiredLocked() {
		_ = s.clearLocked()
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the access token of a live session.
func (s *Session) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.expiredLocked() {
		return "", false
	}
	return s.token, true
}

// Login validates credentials locally, authenticates and persists the result.
func (s *Session) Login(ctx context.Context, email, password string) (*entities.User, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, domain.Invalid("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return nil, domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Set(keyUserInfo, res.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := s.kv.Set(keyAccessToken, res.AccessToken); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	if err := s.kv.Set(keyExpiresAt, res.ExpiresAt); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	user := res.User
	s.user, s.token, s.expiresAt = &user, res.AccessToken, res.ExpiresAt
	out := user
	return &out, nil
}

// Logout clears the persisted identity and token.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked()
}

// Observe logs the session out when err says the server no longer accepts
// the token. It returns err unchanged.
func (s *Session) Observe(err error) error {
	if errors.Is(err, domain.ErrNotAuthenticated) {
		_ = s.Logout()
	}
	return err
}

func (s *Session) expiredLocked() bool {
	return !s.expiresAt.IsZero() && !s.clock.Now().Before(s.expiresAt)
}

func (s *Session) clearLocked() error {
	s.user, s.token, s.expiresAt = nil, "", time.Time{}
	if err := s.kv.Remove(keyUserInfo, keyAccessToken, keyExpiresAt); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
