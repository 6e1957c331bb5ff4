// Package client is the app-side library: an API client, a persisted
// Session and the optimistic volunteer toggle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"volunteerhub/internal/domain"
	"volunteerhub/internal/domain/entities"
	"volunteerhub/internal/ports/input"
)

// APIError is a non-2xx answer from the server. It unwraps to the domain
// sentinel named by Code so callers can use errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned %d (%s)", e.Status, e.Code)
}

func (e *APIError) Unwrap() error {
	return domain.FromCode(e.Code)
}

// CreateEventInput is the body of POST /events.
type CreateEventInput struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	DateTime         time.Time         `json:"dateTime"`
	EndDateTime      *time.Time        `json:"endDateTime,omitempty"`
	ImageURL         *string           `json:"imageUrl,omitempty"`
	Position         entities.Position `json:"position"`
	VolunteersNeeded int               `json:"volunteersNeeded"`
}

// API talks to the volunteerhub server.
type API struct {
	baseURL string
	http    *http.Client
	locale  string
}

type Option func(*API)

func WithHTTPClient(c *http.Client) Option {
	return func(a *API) { a.http = c }
}

// WithLocale sets Accept-Language so server error messages come back localized.
func WithLocale(locale string) Option {
	return func(a *API) { a.locale = locale }
}

func NewAPI(baseURL string, opts ...Option) *API {
	a := &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Login(ctx context.Context, email, password string) (*input.LoginResult, error) {
	var res input.LoginResult
	body := map[string]string{"email": email, "password": password}
	if err := a.do(ctx, http.MethodPost, "/login", "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *API) ListEvents(ctx context.Context, activeOnly bool) ([]entities.EventView, error) {
	path := "/events"
	if activeOnly {
		path += "?active=true"
	}
	var out []entities.EventView
	if err := a.do(ctx, http.MethodGet, path, "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) GetEvent(ctx context.Context, id string) (*entities.EventView, error) {
	var out entities.EventView
	if err := a.do(ctx, http.MethodGet, "/events/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) CreateEvent(ctx context.Context, token string, in CreateEventInput) (*entities.EventView, error) {
	var out entities.EventView
	if err := a.do(ctx, http.MethodPost, "/events", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) DeleteEvent(ctx context.Context, token, id string) error {
	return a.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(id), token, nil, nil)
}

func (a *API) Join(ctx context.Context, token, eventID string) (*entities.EventView, error) {
	return a.roster(ctx, http.MethodPost, token, eventID)
}

func (a *API) Leave(ctx context.Context, token, eventID string) (*entities.EventView, error) {
	return a.roster(ctx, http.MethodDelete, token, eventID)
}

func (a *API) roster(ctx context.Context, method, token, eventID string) (*entities.EventView, error) {
	var out entities.EventView
	if err := a.do(ctx, method, "/events/"+url.PathEscape(eventID)+"/volunteers", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *API) Volunteers(ctx context.Context, eventID string) ([]entities.User, error) {
	var out []entities.User
	if err := a.do(ctx, http.MethodGet, "/events/"+url.PathEscape(eventID)+"/volunteers", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) GetUser(ctx context.Context, id string) (*entities.User, error) {
	var out entities.User
	if err := a.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request. Transport failures and unreadable responses wrap
// domain.ErrNetwork; error bodies become *APIError.
func (a *API) do(ctx context.Context, method, path, token string, body, dst any) error {
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if a.locale != "" {
		req.Header.Set("Accept-Language", a.locale)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if dst == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrNetwork, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Error
	}
	if apiErr.Code == "" {
		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			apiErr.Code = domain.Code(domain.ErrNotAuthenticated)
		case resp.StatusCode >= 500:
			// Gateways and proxies answer without our error shape.
			apiErr.Code = domain.Code(domain.ErrNetwork)
		}
	}
	return apiErr
}
