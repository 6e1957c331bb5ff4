package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeRoundTrip(t *testing.T) {
	t.Parallel()

	for _, c := range codes {
		wrapped := fmt.Errorf("join: %w", c.err)
		if got := Code(wrapped); got != c.code {
			t.Fatalf("expected code %q for %v, got %q", c.code, c.err, got)
		}
		if back := FromCode(c.code); !errors.Is(back, c.err) {
			t.Fatalf("FromCode(%q) = %v", c.code, back)
		}
	}
	if Code(errors.New("boom")) != "" {
		t.Fatalf("expected empty code for unknown error")
	}
	if FromCode("nope") != nil {
		t.Fatalf("expected nil for unknown code")
	}
}

func TestValidationErrorMatchesSentinel(t *testing.T) {
	t.Parallel()

	err := Invalid("name", "required")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ValidationError to match ErrValidation")
	}
	if Code(err) != "validation_failed" {
		t.Fatalf("unexpected code %q", Code(err))
	}
	if err.Error() != "name: required" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}
