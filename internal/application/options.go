package application

import (
	"go.uber.org/zap"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/ports/output"
)

type options struct {
	clock    clock.Clock
	notifier output.EventNotifier
	log      *zap.Logger
}

// Option configures the application services.
type Option func(*options)

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

func WithNotifier(n output.EventNotifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func collectOptions(opts []Option) options {
	o := options{
		clock:    clock.NewSystem(),
		notifier: output.NopNotifier{},
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
