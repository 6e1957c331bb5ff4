// Package token signs and verifies bearer access tokens with securecookie.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/securecookie"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/ports/output"
)

const cookieName = "volunteerhub_access"

var _ output.TokenIssuer = (*Issuer)(nil)

type claims struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// Issuer encodes {uid, iat, exp} as an HMAC-signed, optionally encrypted value.
type Issuer struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
	now   func() time.Time
}

// New builds an Issuer. hashKey is required (32 or 64 bytes recommended);
// blockKey enables AES encryption when it is 16, 24 or 32 bytes and may be nil.
func New(hashKey, blockKey []byte, ttl time.Duration) (*Issuer, error) {
	if len(hashKey) == 0 {
		return nil, errors.New("token: hash key is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token: ttl must be positive, got %s", ttl)
	}
	codec := securecookie.New(hashKey, blockKey)
	codec.SetSerializer(securecookie.JSONEncoder{})
	// securecookie only rejects by whole-second age; add a second of slack
	// and enforce the exact expiry from the claims.
	codec.MaxAge(int(ttl/time.Second) + 1)
	return &Issuer{codec: codec, ttl: ttl, now: time.Now}, nil
}

func (i *Issuer) Issue(userID string, now time.Time) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, domain.ErrNotAuthenticated
	}
	expiresAt := now.Add(i.ttl).UTC()
	v, err := i.codec.Encode(cookieName, claims{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode token: %w", err)
	}
	return v, expiresAt, nil
}

func (i *Issuer) Verify(token string) (string, error) {
	if token == "" {
		return "", domain.ErrNotAuthenticated
	}
	var c claims
	if err := i.codec.Decode(cookieName, token, &c); err != nil {
		return "", domain.ErrNotAuthenticated
	}
	if c.UserID == "" || !i.now().Before(time.Unix(c.ExpiresAt, 0)) {
		return "", domain.ErrNotAuthenticated
	}
	return c.UserID, nil
}
