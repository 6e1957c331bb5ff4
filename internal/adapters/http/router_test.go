package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"volunteerhub/internal/application"
	"volunteerhub/internal/clock"
	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/infrastructure/i18n"
	"volunteerhub/internal/infrastructure/jsonstore"
)

// fakeTokens issues "tok-<uid>" and verifies by prefix.
type fakeTokens struct{}

func (fakeTokens) Issue(userID string, now time.Time) (string, time.Time, error) {
	return "tok-" + userID, now.Add(time.Hour), nil
}

func (fakeTokens) Verify(token string) (string, error) {
	uid, ok := strings.CutPrefix(token, "tok-")
	if !ok || uid == "" {
		return "", domain.ErrNotAuthenticated
	}
	return uid, nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
	store   *jsonstore.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	now := clock.NewFixed(time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC))
	store := jsonstore.NewMemory()

	hash, err := application.HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	for _, u := range []entities.User{
		{ID: "u1", Name: entities.Name{First: "Ada", Last: "Lovelace"}, Email: "ada@example.com", PasswordHash: hash},
		{ID: "u2", Name: entities.Name{First: "Alan", Last: "Turing"}, Email: "alan@example.com", PasswordHash: hash},
	} {
		u := u
		if err := store.Users().Create(context.Background(), &u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	opts := []application.Option{application.WithClock(now)}
	handler := NewRouter(Deps{
		Events:     application.NewEventService(store.Events(), opts...),
		Roster:     application.NewRosterService(store.Events(), store.Users(), opts...),
		Auth:       application.NewAuthService(store.Users(), fakeTokens{}, opts...),
		Translator: i18n.NewTranslator("en", nil),
		Clock:      now,
	})
	return &testAPI{t: t, handler: handler, store: store}
}

func (a *testAPI) do(method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	a.t.Helper()
	var rdr *bytes.Buffer
	if body != "" {
		rdr = bytes.NewBufferString(body)
	} else {
		rdr = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) createEvent(token string, needed int) EventView {
	a.t.Helper()
	body := fmt.Sprintf(`{"name":"Tree planting","description":"Bring boots","dateTime":"2030-01-02T09:00:00Z",
"position":{"latitude":45.5,"longitude":-73.6},"volunteersNeeded":%d}`, needed)
	rec := a.do(http.MethodPost, "/events", token, body)
	if rec.Code != http.StatusCreated {
		a.t.Fatalf("create event: status %d body %s", rec.Code, rec.Body.String())
	}
	var v EventView
	decodeBody(a.t, rec, &v)
	return v
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) errorResponse {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected status %d, got %d (%s)", status, rec.Code, rec.Body.String())
	}
	var e errorResponse
	decodeBody(t, rec, &e)
	if e.Code != code {
		t.Fatalf("expected code %q, got %q", code, e.Code)
	}
	return e
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodPost, "/login", "", `{"email":" ADA@example.com ","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var res struct {
		User        map[string]any `json:"user"`
		AccessToken string         `json:"accessToken"`
	}
	decodeBody(t, rec, &res)
	if res.AccessToken != "tok-u1" {
		t.Fatalf("unexpected token %q", res.AccessToken)
	}
	if _, leaked := res.User["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}

	rec = api.do(http.MethodPost, "/login", "", `{"email":"ada@example.com","password":"wrong"}`)
	expectError(t, rec, http.StatusUnauthorized, "invalid_credentials")
}

func TestCreateEvent(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		body   string
		status int
		code   string
	}{
		{
			name:   "numeric string capacity",
			token:  "tok-u1",
			body:   `{"name":"<b>Cleanup</b>","description":"Gloves","dateTime":"2030-01-02T09:00:00Z","position":{"latitude":1,"longitude":2},"volunteersNeeded":"3"}`,
			status: http.StatusCreated,
		},
		{
			name:   "unauthenticated",
			body:   `{"name":"Cleanup","description":"Gloves","dateTime":"2030-01-02T09:00:00Z","position":{"latitude":1,"longitude":2},"volunteersNeeded":3}`,
			status: http.StatusUnauthorized,
			code:   "not_authenticated",
		},
		{
			name:   "non numeric capacity",
			token:  "tok-u1",
			body:   `{"name":"Cleanup","description":"Gloves","dateTime":"2030-01-02T09:00:00Z","position":{"latitude":1,"longitude":2},"volunteersNeeded":"abc"}`,
			status: http.StatusBadRequest,
			code:   "validation_failed",
		},
		{
			name:   "start in the past",
			token:  "tok-u1",
			body:   `{"name":"Cleanup","description":"Gloves","dateTime":"2029-01-02T09:00:00Z","position":{"latitude":1,"longitude":2},"volunteersNeeded":3}`,
			status: http.StatusBadRequest,
			code:   "validation_failed",
		},
		{
			name:   "malformed body",
			token:  "tok-u1",
			body:   `{"name":`,
			status: http.StatusBadRequest,
			code:   codeInvalidRequestBody,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t)
			rec := api.do(http.MethodPost, "/events", tt.token, tt.body)
			if tt.code != "" {
				expectError(t, rec, tt.status, tt.code)
				return
			}
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rec.Code, rec.Body.String())
			}
			var v EventView
			decodeBody(t, rec, &v)
			if v.Name != "Cleanup" || v.SpotsRemaining != 3 || v.Status != entities.StatusUpcoming || v.OrganizerID != "u1" {
				t.Fatalf("unexpected view %+v", v)
			}
		})
	}
}

func TestValidationMessageIsLocalized(t *testing.T) {
	api := newTestAPI(t)
	body := `{"name":"","description":"Gloves","dateTime":"2030-01-02T09:00:00Z","position":{"latitude":1,"longitude":2},"volunteersNeeded":3}`
	rec := api.do(http.MethodPost, "/events", "tok-u1", body, "Accept-Language", "fr")
	e := expectError(t, rec, http.StatusBadRequest, "validation_failed")
	if !strings.Contains(e.Error, "name") || !strings.HasPrefix(e.Error, "Veuillez") {
		t.Fatalf("expected french message naming the field, got %q", e.Error)
	}
}

func TestRosterFlow(t *testing.T) {
	api := newTestAPI(t)
	ev := api.createEvent("tok-u1", 1)
	path := "/events/" + ev.ID + "/volunteers"

	rec := api.do(http.MethodPost, path, "tok-u2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("join: %d %s", rec.Code, rec.Body.String())
	}
	var v EventView
	decodeBody(t, rec, &v)
	if v.SpotsRemaining != 0 || v.Availability != entities.AvailabilityFull {
		t.Fatalf("unexpected view after join %+v", v)
	}

	expectError(t, api.do(http.MethodPost, path, "tok-u2", ""), http.StatusConflict, "already_volunteered")
	expectError(t, api.do(http.MethodPost, path, "tok-u1", ""), http.StatusConflict, "capacity_exceeded")
	expectError(t, api.do(http.MethodPost, path, "", ""), http.StatusUnauthorized, "not_authenticated")

	rec = api.do(http.MethodGet, path, "", "")
	var users []entities.User
	decodeBody(t, rec, &users)
	if len(users) != 1 || users[0].ID != "u2" || users[0].Name.First != "Alan" {
		t.Fatalf("unexpected volunteers %+v", users)
	}

	rec = api.do(http.MethodDelete, path, "tok-u2", "")
	decodeBody(t, rec, &v)
	if rec.Code != http.StatusOK || len(v.VolunteersIDs) != 0 || v.SpotsRemaining != 1 {
		t.Fatalf("unexpected leave response %d %+v", rec.Code, v)
	}
}

func TestUpdateAndDeleteRequireOrganizer(t *testing.T) {
	api := newTestAPI(t)
	ev := api.createEvent("tok-u1", 2)
	path := "/events/" + ev.ID

	expectError(t, api.do(http.MethodPatch, path, "tok-u2", `{"name":"Mine now"}`), http.StatusForbidden, "not_organizer")
	expectError(t, api.do(http.MethodPatch, path, "tok-u1", `{"volunteersIds":["u9"]}`), http.StatusBadRequest, codeInvalidRequestBody)

	rec := api.do(http.MethodPatch, path, "tok-u1", `{"name":"Tree planting (rain or shine)"}`)
	var v EventView
	decodeBody(t, rec, &v)
	if rec.Code != http.StatusOK || v.Name != "Tree planting (rain or shine)" {
		t.Fatalf("unexpected update %d %+v", rec.Code, v)
	}

	expectError(t, api.do(http.MethodDelete, path, "tok-u2", ""), http.StatusForbidden, "not_organizer")
	if rec := api.do(http.MethodDelete, path, "tok-u1", ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	expectError(t, api.do(http.MethodGet, path, "", ""), http.StatusNotFound, "event_not_found")
}

func TestListEventsActiveFilter(t *testing.T) {
	api := newTestAPI(t)
	ended := &entities.Event{
		ID: "old", Name: "Old", Description: "Done",
		DateTime:         time.Date(2029, 12, 1, 9, 0, 0, 0, time.UTC),
		VolunteersNeeded: 2,
	}
	if err := api.store.Events().Create(context.Background(), ended); err != nil {
		t.Fatalf("seed: %v", err)
	}
	api.createEvent("tok-u1", 2)

	var all, active []EventView
	decodeBody(t, api.do(http.MethodGet, "/events", "", ""), &all)
	decodeBody(t, api.do(http.MethodGet, "/events?active=true", "", ""), &active)
	if len(all) != 2 || len(active) != 1 {
		t.Fatalf("expected 2 events and 1 active, got %d and %d", len(all), len(active))
	}
	if all[0].ID != "old" || all[0].Status != entities.StatusPast {
		t.Fatalf("expected past event first, got %+v", all[0])
	}
}

func TestGetUser(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/users/u1", "", "")
	var u entities.User
	decodeBody(t, rec, &u)
	if rec.Code != http.StatusOK || u.Email != "ada@example.com" {
		t.Fatalf("unexpected user %d %+v", rec.Code, u)
	}
	expectError(t, api.do(http.MethodGet, "/users/nope", "", ""), http.StatusNotFound, "user_not_found")
}

func TestLooseInt(t *testing.T) {
	tests := []struct {
		raw  string
		want int
		ok   bool
	}{
		{`3`, 3, true},
		{`"12"`, 12, true},
		{`" 4 "`, 4, true},
		{`"abc"`, 0, false},
		{`null`, 0, false},
		{`2.5`, 0, false},
	}
	for _, tt := range tests {
		var l looseInt
		if err := json.Unmarshal([]byte(tt.raw), &l); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		got, ok := l.value()
		if got != tt.want || ok != tt.ok {
			t.Errorf("value(%s) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
		}
	}
}
