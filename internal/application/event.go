package application

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/input"
	"volunteerhub/internal/ports/output"
)

var _ input.EventUseCase = (*EventService)(nil)

type EventService struct {
	eventRepo output.EventRepository
	notifier  output.EventNotifier
	clock     clock.Clock
	log       *zap.Logger
	policy    *bluemonday.Policy
}

func NewEventService(eventRepo output.EventRepository, opts ...Option) *EventService {
	o := collectOptions(opts)
	return &EventService{
		eventRepo: eventRepo,
		notifier:  o.notifier,
		clock:     o.clock,
		log:       o.log,
		policy:    bluemonday.StrictPolicy(),
	}
}

// CreateEvent validates the submission, assigns a time-ordered id and stores
// the event with an empty roster. The organizer must be authenticated.
func (s *EventService) CreateEvent(ctx context.Context, in entities.NewEvent) (*entities.Event, error) {
	if in.OrganizerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	in.Name = s.plainText(in.Name)
	in.Description = s.plainText(in.Description)

	now := s.clock.Now()
	if err := in.Validate(now); err != nil {
		return nil, err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate event id: %w", err)
	}
	event := in.Event(id.String(), now)
	if err := s.eventRepo.Create(ctx, &event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.log.Info("event created",
		zap.String("event_id", event.ID),
		zap.String("organizer_id", event.OrganizerID),
		zap.Int("volunteers_needed", event.VolunteersNeeded))

	if err := s.notifier.EventCreated(ctx, event); err != nil {
		s.log.Warn("event created notification failed", zap.String("event_id", event.ID), zap.Error(err))
	}
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*entities.Event, error) {
	return s.eventRepo.FindByID(ctx, id)
}

// ListEvents returns events ordered by start time. activeOnly drops events
// whose effective end has passed, which is what the map shows.
func (s *EventService) ListEvents(ctx context.Context, activeOnly bool) ([]entities.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if activeOnly {
		now := s.clock.Now()
		events = slices.DeleteFunc(events, func(e entities.Event) bool {
			return !entities.IsActive(&e, now)
		})
	}
	slices.SortStableFunc(events, func(a, b entities.Event) int {
		return a.DateTime.Compare(b.DateTime)
	})
	return events, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id, actorID string, patch entities.EventPatch) (*entities.Event, error) {
	if actorID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !event.IsOrganizer(actorID) {
		return nil, domain.ErrNotOrganizer
	}
	if patch.IsEmpty() {
		return event, nil
	}
	if patch.Name != nil {
		name := s.plainText(*patch.Name)
		if name == "" {
			return nil, domain.Invalid("name", "required")
		}
		patch.Name = &name
	}
	if patch.Description != nil {
		desc := s.plainText(*patch.Description)
		if desc == "" {
			return nil, domain.Invalid("description", "required")
		}
		patch.Description = &desc
	}
	if patch.EndDateTime != nil && !patch.EndDateTime.After(event.DateTime) {
		return nil, domain.Invalid("endDateTime", "must be after dateTime")
	}

	updated, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.log.Info("event updated", zap.String("event_id", id), zap.String("actor_id", actorID))
	return updated, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id, actorID string) error {
	if actorID == "" {
		return domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !event.IsOrganizer(actorID) {
		return domain.ErrNotOrganizer
	}
	if err := s.eventRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	s.log.Info("event deleted", zap.String("event_id", id), zap.String("actor_id", actorID))
	return nil
}

// plainText strips markup; the strict policy escapes entities, so undo that
// to keep display text as typed.
func (s *EventService) plainText(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
