package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/output"
)

// ReminderService announces events that start within a window. Each start
// time is announced once per process; rescheduled events are announced again.
type ReminderService struct {
	eventRepo output.EventRepository
	notifier  output.EventNotifier
	clock     clock.Clock
	log       *zap.Logger
	window    time.Duration

	mu   sync.Mutex
	sent map[string]time.Time
}

func NewReminderService(eventRepo output.EventRepository, window time.Duration, opts ...Option) *ReminderService {
	o := collectOptions(opts)
	return &ReminderService{
		eventRepo: eventRepo,
		notifier:  o.notifier,
		clock:     o.clock,
		log:       o.log,
		window:    window,
		sent:      map[string]time.Time{},
	}
}

// SendDue notifies every upcoming event starting within the window that has
// not been announced yet, and returns how many were sent.
func (s *ReminderService) SendDue(ctx context.Context) (int, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}
	now := s.clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	live := make(map[string]struct{}, len(events))
	sent := 0
	for i := range events {
		e := &events[i]
		live[e.ID] = struct{}{}
		if entities.ComputeStatus(e, now) != entities.StatusUpcoming || e.DateTime.Sub(now) > s.window {
			continue
		}
		if at, ok := s.sent[e.ID]; ok && at.Equal(e.DateTime) {
			continue
		}
		if err := s.notifier.EventStartingSoon(ctx, *e); err != nil {
			s.log.Warn("reminder failed", zap.String("event_id", e.ID), zap.Error(err))
			continue
		}
		s.sent[e.ID] = e.DateTime
		sent++
	}
	for id := range s.sent {
		if _, ok := live[id]; !ok {
			delete(s.sent, id)
		}
	}
	if sent > 0 {
		s.log.Info("reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}
