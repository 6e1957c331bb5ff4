package token

import (
	"errors"
	"testing"
	"time"

	"volunteerhub/internal/domain"
)

var (
	hashKey  = []byte("0123456789abcdef0123456789abcdef")
	blockKey = []byte("abcdef0123456789")
)

func TestIssueVerify(t *testing.T) {
	iss, err := New(hashKey, blockKey, time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	now := time.Now()
	tok, exp, err := iss.Issue("u1", now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !exp.Equal(now.Add(time.Hour).UTC()) {
		t.Fatalf("unexpected expiry %v", exp)
	}
	uid, err := iss.Verify(tok)
	if err != nil || uid != "u1" {
		t.Fatalf("verify: %q %v", uid, err)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss, _ := New(hashKey, nil, time.Minute)
	other, _ := New([]byte("another-hash-key-another-hash-key"), nil, time.Minute)

	tok, _, _ := iss.Issue("u1", time.Now())
	foreign, _, _ := other.Issue("u1", time.Now())

	expired, err := New(hashKey, nil, time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	expired.now = func() time.Time { return time.Now().Add(2 * time.Minute) }

	tests := []struct {
		name   string
		issuer *Issuer
		token  string
	}{
		{"empty", iss, ""},
		{"garbage", iss, "not-a-token"},
		{"tampered", iss, tok + "x"},
		{"wrong key", iss, foreign},
		{"expired", expired, tok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.issuer.Verify(tt.token); !errors.Is(err, domain.ErrNotAuthenticated) {
				t.Fatalf("expected ErrNotAuthenticated, got %v", err)
			}
		})
	}
}

func TestNewValidatesArguments(t *testing.T) {
	if _, err := New(nil, nil, time.Hour); err == nil {
		t.Fatalf("expected error for missing hash key")
	}
	if _, err := New(hashKey, nil, 0); err == nil {
		t.Fatalf("expected error for zero ttl")
	}
}
