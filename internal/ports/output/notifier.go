package output

import (
	"context"

	"volunteerhub/internal/domain/entities"
)

// EventNotifier announces lifecycle changes to an external channel.
// Failures are logged by the caller and never fail the operation.
type EventNotifier interface {
	EventCreated(ctx context.Context, event entities.Event) error
	EventFilled(ctx context.Context, event entities.Event) error
	EventStartingSoon(ctx context.Context, event entities.Event) error
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) EventCreated(context.Context, entities.Event) error      { return nil }
func (NopNotifier) EventFilled(context.Context, entities.Event) error       { return nil }
func (NopNotifier) EventStartingSoon(context.Context, entities.Event) error { return nil }
