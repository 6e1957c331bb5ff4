package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"volunteerhub/internal/domain"
)

const (
	codeInvalidRequestBody = "invalid_request_body"
	codeNotFound           = "not_found"
	codeInternalError      = "internal_error"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// statusFor maps a domain error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "validation_failed", codeInvalidRequestBody:
		return http.StatusBadRequest
	case "not_authenticated", "invalid_credentials":
		return http.StatusUnauthorized
	case "not_organizer":
		return http.StatusForbidden
	case "event_not_found", "user_not_found", codeNotFound:
		return http.StatusNotFound
	case "capacity_exceeded", "already_volunteered", "event_ended":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error", "code"} with a message localized from
// the request's Accept-Language header.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.Code(err)
	if code == "" {
		code = codeInternalError
		h.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}

	var data map[string]any
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		data = map[string]any{"Field": ve.Field, "Reason": ve.Reason}
	}
	h.writeCode(w, r, code, data)
}

func (h *Handler) writeCode(w http.ResponseWriter, r *http.Request, code string, data map[string]any) {
	msg := code
	if h.tr != nil {
		msg = h.tr.T(r.Header.Get("Accept-Language"), code, data)
	}
	writeJSON(w, statusFor(code), errorResponse{Error: msg, Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	payload, err := json.Marshal(v)
	if err != nil {
		_, _ = w.Write([]byte(`{"error":"internal error","code":"internal_error"}`))
		return
	}
	_, _ = w.Write(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
