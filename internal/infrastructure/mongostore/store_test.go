package mongostore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
)

// setupStore connects to TEST_MONGO_URI using a throwaway database.
func setupStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := Connect(ctx, uri, zap.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	db := client.Database("volunteerhub_test_" + uuid.NewString()[:8])
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	s := New(db)
	if err := s.EnsureIndexes(ctx); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return s
}

func createEvent(t *testing.T, s *Store, needed int) *entities.Event {
	t.Helper()
	e := &entities.Event{
		ID:               uuid.NewString(),
		Name:             "Shoreline sweep",
		Description:      "Bring gloves",
		DateTime:         time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond),
		Position:         entities.Position{Latitude: 49.28, Longitude: -123.12},
		VolunteersNeeded: needed,
	}
	if err := s.Events().Create(context.Background(), e); err != nil {
		t.Fatalf("create: %v", err)
	}
	return e
}

func TestAddVolunteerDiagnosesRejection(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e := createEvent(t, s, 1)

	got, err := s.Events().AddVolunteer(ctx, e.ID, "u1")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !slices.Equal(got.VolunteersIDs, []string{"u1"}) {
		t.Fatalf("unexpected roster %v", got.VolunteersIDs)
	}
	if _, err := s.Events().AddVolunteer(ctx, e.ID, "u1"); !errors.Is(err, domain.ErrAlreadyVolunteered) {
		t.Fatalf("expected ErrAlreadyVolunteered, got %v", err)
	}
	if _, err := s.Events().AddVolunteer(ctx, e.ID, "u2"); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if _, err := s.Events().AddVolunteer(ctx, "missing", "u2"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestRemoveVolunteerWhenAbsent(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e := createEvent(t, s, 2)

	got, err := s.Events().RemoveVolunteer(ctx, e.ID, "nobody")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(got.VolunteersIDs) != 0 {
		t.Fatalf("expected empty roster, got %v", got.VolunteersIDs)
	}
	if _, err := s.Events().RemoveVolunteer(ctx, "missing", "u1"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	e := createEvent(t, s, 4)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Events().AddVolunteer(ctx, e.ID, fmt.Sprintf("u%d", i)); err == nil {
				accepted.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if accepted.Load() != 4 {
		t.Fatalf("expected 4 accepted joins, got %d", accepted.Load())
	}
}

func TestUsersUniqueEmail(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	if err := s.Users().Create(ctx, &entities.User{Email: "Ada@example.com", PasswordHash: "x"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Users().Create(ctx, &entities.User{Email: "ada@example.com", PasswordHash: "y"}); err == nil {
		t.Fatalf("expected duplicate email to fail")
	}
	if _, err := s.Users().FindByEmail(ctx, "ADA@example.com"); err != nil {
		t.Fatalf("find: %v", err)
	}
}
