package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	httpapi "volunteerhub/internal/adapters/http"
	"volunteerhub/internal/application"
	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/infrastructure/i18n"
	"volunteerhub/internal/infrastructure/jsonstore"
	"volunteerhub/internal/infrastructure/localstore"
)

var baseNow = time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

type prefixTokens struct{}

func (prefixTokens) Issue(userID string, now time.Time) (string, time.Time, error) {
	return "tok-" + userID, now.Add(time.Hour), nil
}

func (prefixTokens) Verify(token string) (string, error) {
	uid, ok := strings.CutPrefix(token, "tok-")
	if !ok || uid == "" {
		return "", domain.ErrNotAuthenticated
	}
	return uid, nil
}

// newServer runs the real API over an in-memory store.
func newServer(t *testing.T, now clock.Clock) (*httptest.Server, *jsonstore.Store) {
	t.Helper()
	store := jsonstore.NewMemory()
	hash, err := application.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for _, u := range []entities.User{
		{ID: "u1", Name: entities.Name{First: "Ada"}, Email: "ada@example.com", PasswordHash: hash},
		{ID: "u2", Name: entities.Name{First: "Alan"}, Email: "alan@example.com", PasswordHash: hash},
	} {
		u := u
		if err := store.Users().Create(context.Background(), &u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	opts := []application.Option{application.WithClock(now)}
	srv := httptest.NewServer(httpapi.NewRouter(httpapi.Deps{
		Events:     application.NewEventService(store.Events(), opts...),
		Roster:     application.NewRosterService(store.Events(), store.Users(), opts...),
		Auth:       application.NewAuthService(store.Users(), prefixTokens{}, opts...),
		Translator: i18n.NewTranslator("en", nil),
		Clock:      now,
	}))
	t.Cleanup(srv.Close)
	return srv, store
}

func newKV(t *testing.T) *localstore.Store {
	t.Helper()
	kv, err := localstore.Open(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("kv: %v", err)
	}
	return kv
}

func seedEvent(t *testing.T, store *jsonstore.Store, id string, needed int, roster ...string) {
	t.Helper()
	e := &entities.Event{
		ID:               id,
		Name:             "River cleanup",
		Description:      "Waders provided",
		DateTime:         baseNow.Add(24 * time.Hour),
		VolunteersNeeded: needed,
		VolunteersIDs:    roster,
		OrganizerID:      "u1",
	}
	if err := store.Events().Create(context.Background(), e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestSessionLoginPersistsAndExpires(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, _ := newServer(t, now)
	api := NewAPI(srv.URL)
	kv := newKV(t)

	sess, err := NewSession(api, kv, now)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if sess.CurrentUser() != nil {
		t.Fatalf("expected logged out")
	}
	if _, err := sess.Login(context.Background(), "ada@example.com", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	restored, err := NewSession(api, kv, now)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if u := restored.CurrentUser(); u == nil || u.ID != "u1" {
		t.Fatalf("expected restored user u1, got %+v", u)
	}
	if tok, ok := restored.Token(); !ok || tok != "tok-u1" {
		t.Fatalf("unexpected token %q %v", tok, ok)
	}

	now.Advance(time.Hour)
	if restored.CurrentUser() != nil {
		t.Fatalf("expected expired session to log out")
	}
	var token string
	if ok, _ := kv.Get(keyAccessToken, &token); ok {
		t.Fatalf("expected token removed from storage")
	}
}

func TestSessionLoginValidation(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, _ := newServer(t, now)
	sess, err := NewSession(NewAPI(srv.URL), newKV(t), now)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"bad email", "not-an-email", "secret1", domain.ErrValidation},
		{"short password", "ada@example.com", "12345", domain.ErrValidation},
		{"wrong password", "ada@example.com", "secret2", domain.ErrInvalidCredentials},
		{"unknown user", "nobody@example.com", "secret1", domain.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := sess.Login(context.Background(), tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if sess.CurrentUser() != nil {
				t.Fatalf("failed login must not create a session")
			}
		})
	}
}

func TestAPIErrorsMapToSentinels(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, store := newServer(t, now)
	seedEvent(t, store, "full", 1, "u2")
	api := NewAPI(srv.URL, WithLocale("fr"))
	ctx := context.Background()

	if _, err := api.GetEvent(ctx, "missing"); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
	_, err := api.Join(ctx, "tok-u1", "full")
	if !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusConflict || apiErr.Message != "Cet événement est complet." {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if _, err := api.Join(ctx, "garbage", "full"); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestAPITransportFailureIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAPI(url).ListEvents(context.Background(), false)
	if !errors.Is(err, domain.ErrNetwork) || !domain.Retryable(err) {
		t.Fatalf("expected retryable network error, got %v", err)
	}
}

func loggedIn(t *testing.T, srv *httptest.Server, now clock.Clock, email string) *Session {
	t.Helper()
	sess, err := NewSession(NewAPI(srv.URL), newKV(t), now)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := sess.Login(context.Background(), email, "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
	return sess
}

func TestToggleRoundTrip(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, store := newServer(t, now)
	seedEvent(t, store, "e1", 2)
	api := NewAPI(srv.URL)
	sess := loggedIn(t, srv, now, "alan@example.com")
	roster := NewRoster(api, sess, now)
	ctx := context.Background()

	view, err := api.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	screen := NewEventScreen(*view)

	joined, err := roster.Toggle(ctx, screen)
	if err != nil || !joined {
		t.Fatalf("join toggle: %v %v", joined, err)
	}
	if got := screen.View(); !slices.Equal(got.VolunteersIDs, []string{"u2"}) || got.SpotsRemaining != 1 {
		t.Fatalf("unexpected screen after join %+v", got)
	}

	joined, err = roster.Toggle(ctx, screen)
	if err != nil || joined {
		t.Fatalf("leave toggle: %v %v", joined, err)
	}
	if got := screen.View(); len(got.VolunteersIDs) != 0 || got.SpotsRemaining != 2 {
		t.Fatalf("unexpected screen after leave %+v", got)
	}
}

func TestToggleRollsBackOnServerRejection(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, store := newServer(t, now)
	seedEvent(t, store, "e1", 1)
	api := NewAPI(srv.URL)
	ctx := context.Background()

	view, _ := api.GetEvent(ctx, "e1")
	screen := NewEventScreen(*view)

	// Someone else takes the last spot after the screen was loaded.
	if _, err := store.Events().AddVolunteer(ctx, "e1", "u1"); err != nil {
		t.Fatalf("add: %v", err)
	}

	roster := NewRoster(api, loggedIn(t, srv, now, "alan@example.com"), now)
	if _, err := roster.Toggle(ctx, screen); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	got := screen.View()
	if len(got.VolunteersIDs) != 0 || got.SpotsRemaining != 1 || screen.Pending() {
		t.Fatalf("expected exact rollback, got %+v pending=%v", got, screen.Pending())
	}
}

func TestTogglePreconditions(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, store := newServer(t, now)
	seedEvent(t, store, "full", 1, "u1")
	api := NewAPI(srv.URL)
	ctx := context.Background()
	view, _ := api.GetEvent(ctx, "full")

	anon, err := NewSession(api, newKV(t), now)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if _, err := NewRoster(api, anon, now).Toggle(ctx, NewEventScreen(*view)); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	alan := loggedIn(t, srv, now, "alan@example.com")
	if _, err := NewRoster(api, alan, now).Toggle(ctx, NewEventScreen(*view)); !errors.Is(err, domain.ErrCapacityExceeded) {
		t.Fatalf("expected local ErrCapacityExceeded, got %v", err)
	}
}

// blockingAPI holds Join until release is closed.
type blockingAPI struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func (b *blockingAPI) Join(ctx context.Context, _, eventID string) (*entities.EventView, error) {
	close(b.started)
	<-b.release
	if b.err != nil {
		return nil, b.err
	}
	e := entities.Event{ID: eventID, VolunteersNeeded: 3, VolunteersIDs: []string{"u2"}, DateTime: baseNow.Add(time.Hour)}
	v := entities.NewEventView(&e, baseNow)
	return &v, nil
}

func (b *blockingAPI) Leave(context.Context, string, string) (*entities.EventView, error) {
	return nil, errors.New("unexpected leave")
}

func TestToggleWhilePending(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, _ := newServer(t, now)
	sess := loggedIn(t, srv, now, "alan@example.com")

	api := &blockingAPI{
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     domain.ErrNetwork,
	}
	roster := NewRoster(api, sess, now)
	e := entities.Event{ID: "e1", VolunteersNeeded: 3, DateTime: baseNow.Add(time.Hour)}
	screen := NewEventScreen(entities.NewEventView(&e, baseNow))

	done := make(chan error, 1)
	go func() {
		_, err := roster.Toggle(context.Background(), screen)
		done <- err
	}()
	<-api.started

	if got := screen.View(); !slices.Equal(got.VolunteersIDs, []string{"u2"}) {
		t.Fatalf("expected optimistic join visible, got %v", got.VolunteersIDs)
	}
	if _, err := roster.Toggle(context.Background(), screen); !errors.Is(err, domain.ErrTogglePending) {
		t.Fatalf("expected ErrTogglePending, got %v", err)
	}

	close(api.release)
	if err := <-done; !domain.Retryable(err) {
		t.Fatalf("expected retryable error, got %v", err)
	}
	if got := screen.View(); len(got.VolunteersIDs) != 0 {
		t.Fatalf("expected rollback, got %v", got.VolunteersIDs)
	}
	if sess.CurrentUser() == nil {
		t.Fatalf("network failure must not log out")
	}
}

func TestUnauthorizedClearsSession(t *testing.T) {
	now := clock.NewFixed(baseNow)
	srv, _ := newServer(t, now)
	sess := loggedIn(t, srv, now, "alan@example.com")

	api := &blockingAPI{
		started: make(chan struct{}),
		release: make(chan struct{}),
		err:     &APIError{Status: http.StatusUnauthorized, Code: "not_authenticated"},
	}
	close(api.release)
	e := entities.Event{ID: "e1", VolunteersNeeded: 3, DateTime: baseNow.Add(time.Hour)}
	screen := NewEventScreen(entities.NewEventView(&e, baseNow))

	if _, err := NewRoster(api, sess, now).Toggle(context.Background(), screen); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if sess.CurrentUser() != nil {
		t.Fatalf("expected session cleared after 401")
	}
}
