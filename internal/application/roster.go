package application

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/input"
	"volunteerhub/internal/ports/output"
)

var _ input.RosterUseCase = (*RosterService)(nil)

// RosterService mutates and queries event volunteer lists. Capacity and
// uniqueness are enforced by the repository's conditional write, so two
// concurrent joins on a near-full event cannot both succeed.
type RosterService struct {
	eventRepo output.EventRepository
	userRepo  output.UserRepository
	notifier  output.EventNotifier
	clock     clock.Clock
	log       *zap.Logger
}

func NewRosterService(eventRepo output.EventRepository, userRepo output.UserRepository, opts ...Option) *RosterService {
	o := collectOptions(opts)
	return &RosterService{
		eventRepo: eventRepo,
		userRepo:  userRepo,
		notifier:  o.notifier,
		clock:     o.clock,
		log:       o.log,
	}
}

func (s *RosterService) Join(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if entities.ComputeStatus(event, s.clock.Now()) == entities.StatusPast {
		return nil, domain.ErrEventEnded
	}

	updated, err := s.eventRepo.AddVolunteer(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrCapacityExceeded) {
			s.log.Info("join rejected, event full", zap.String("event_id", eventID), zap.String("user_id", userID))
		}
		return nil, err
	}
	s.log.Info("volunteer joined",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.Int("spots_remaining", entities.SpotsRemaining(updated)))

	if updated.IsFull() {
		if err := s.notifier.EventFilled(ctx, *updated); err != nil {
			s.log.Warn("event filled notification failed", zap.String("event_id", eventID), zap.Error(err))
		}
	}
	return updated, nil
}

// Leave removes userID from the roster. Leaving an event one never joined is a no-op.
func (s *RosterService) Leave(ctx context.Context, eventID, userID string) (*entities.Event, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	updated, err := s.eventRepo.RemoveVolunteer(ctx, eventID, userID)
	if err != nil {
		return nil, err
	}
	s.log.Info("volunteer left", zap.String("event_id", eventID), zap.String("user_id", userID))
	return updated, nil
}

// Volunteers resolves the roster to users in roster order. Ids that no longer
// resolve are returned as placeholders so counts stay consistent.
func (s *RosterService) Volunteers(ctx context.Context, eventID string) ([]entities.User, error) {
	event, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	out := make([]entities.User, 0, len(event.VolunteersIDs))
	for _, id := range event.VolunteersIDs {
		user, err := s.userRepo.FindByID(ctx, id)
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			s.log.Debug("volunteer not found, using placeholder", zap.String("user_id", id))
			out = append(out, entities.UnknownUser(id))
		case err != nil:
			return nil, fmt.Errorf("lookup volunteer %s: %w", id, err)
		default:
			out = append(out, *user)
		}
	}
	return out, nil
}
