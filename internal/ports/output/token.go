package output

import "time"

// TokenIssuer signs access tokens bound to a user id.
type TokenIssuer interface {
	Issue(userID string, now time.Time) (token string, expiresAt time.Time, err error)
	Verify(token string) (userID string, err error)
}
