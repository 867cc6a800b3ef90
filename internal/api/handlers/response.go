package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"bookstore-service/internal/auth"
	"bookstore-service/internal/models"
	"bookstore-service/internal/repository"
	"bookstore-service/internal/service"

	"github.com/go-chi/chi/v5"
)

type apiError struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	writeJSON(w, status, apiError{
		Error:   code,
		Message: message,
		Details: details,
	})
}

// writeServiceError translates service and repository errors into the
// JSON error envelope. what names the resource for 404 and 500 messages.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "invalid_input", "request validation failed", validationErr.Fields)
	case errors.Is(err, service.ErrInsufficientStock):
		writeError(w, http.StatusBadRequest, "insufficient_stock", err.Error(), nil)
	case errors.Is(err, service.ErrInvalidStatus):
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error(), nil)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "duplicate", err.Error(), nil)
	case errors.Is(err, repository.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", what+" not found", nil)
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "unauthorized", err.Error(), nil)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "access denied", nil)
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to process "+what, nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": err.Error()})
		return false
	}

	if err := dec.Decode(&struct{}{}); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid json body", map[string]any{"error": "extra data after json"})
		return false
	}

	return true
}

func parseID(w http.ResponseWriter, r *http.Request, what string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+what+" id", nil)
		return 0, false
	}
	return id, true
}

func optionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// pageRequest reads the page and size query parameters, writing a 400 on
// malformed or out-of-range values.
func pageRequest(w http.ResponseWriter, r *http.Request) (models.PageRequest, bool) {
	page, err := optionalInt(r, "page")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "page must be an integer", nil)
		return models.PageRequest{}, false
	}
	size, err := optionalInt(r, "size")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input", "size must be an integer", nil)
		return models.PageRequest{}, false
	}

	req, err := service.NewPageRequest(page, size)
	if err != nil {
		writeServiceError(w, r, err, "page")
		return models.PageRequest{}, false
	}
	return req, true
}

func caller(r *http.Request) *auth.Identity {
	return auth.IdentityFrom(r.Context())
}
