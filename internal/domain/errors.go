package domain

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	ErrValidation         = errors.New("invalid input")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrCapacityExceeded   = errors.New("event is full")
	ErrEventNotFound      = errors.New("event not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyVolunteered = errors.New("already volunteered for this event")
	ErrEventEnded         = errors.New("event has already ended")
	ErrNotOrganizer       = errors.New("only the organizer can perform this action")
	ErrTogglePending      = errors.New("a volunteer update is already in progress")
	ErrNetwork            = errors.New("network error")
)

// ValidationError reports which input field was rejected and why.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError for field.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

var codes = []struct {
	err  error
	code string
}{
	{ErrValidation, "validation_failed"},
	{ErrNotAuthenticated, "not_authenticated"},
	{ErrInvalidCredentials, "invalid_credentials"},
	{ErrCapacityExceeded, "capacity_exceeded"},
	{ErrEventNotFound, "event_not_found"},
	{ErrUserNotFound, "user_not_found"},
	{ErrAlreadyVolunteered, "already_volunteered"},
	{ErrEventEnded, "event_ended"},
	{ErrNotOrganizer, "not_organizer"},
	{ErrTogglePending, "toggle_pending"},
	{ErrNetwork, "network_error"},
}

// Code returns the stable code of a domain error, or "" when err is not one.
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

// FromCode is the inverse of Code. Unknown codes return nil.
func FromCode(code string) error {
	for _, c := range codes {
		if c.code == code {
			return c.err
		}
	}
	return nil
}

// Retryable reports whether the user may simply re-invoke the action.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetwork)
}
