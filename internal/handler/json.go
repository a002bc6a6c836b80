package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/msomdec/taskflow/internal/domain"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx JSON response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON sends a JSON response with the given status code and data.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write JSON response", "error", err)
	}
}

// writeError sends a JSON error response with a machine-readable code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// readJSON decodes the request body into the given destination.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// writeServiceError maps a service error onto its HTTP status and code.
// Unexpected errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Task not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		writeError(w, http.StatusConflict, "duplicate_identity", "User already exists")
	case errors.Is(err, domain.ErrInvalidCredential):
		writeError(w, http.StatusUnauthorized, "invalid_credential", "Invalid credentials")
	case errors.Is(err, domain.ErrRateLimited):
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
	case errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrConflict):
		slog.WarnContext(r.Context(), op, "error", err, "request_id", RequestIDFromContext(r.Context()))
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusServiceUnavailable, "transient_store_failure", "Service temporarily unavailable, please retry")
	default:
		slog.ErrorContext(r.Context(), op, "error", err, "request_id", RequestIDFromContext(r.Context()))
		writeError(w, http.StatusInternalServerError, "internal", "Server error")
	}
}
