package clock

import "time"

// Clock lets services and tests agree on "now".
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now in UTC.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// Fixed is a settable clock for tests.
type Fixed struct {
	now time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{now: t.UTC()}
}

func (f *Fixed) Now() time.Time {
	return f.now
}

func (f *Fixed) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}
