package handler

// RESPONSE HELPERS:
// Every JSON endpoint answers through writeJSON, and every failure through
// writeError, so error bodies always have the same shape:
//
//	{"error": "not_found", "message": "snippet not found with id abc123"}

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/devhost/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // machine-readable error type, e.g. "not_found"
	Message string `json:"message"` // human-readable description
}

// writeJSON sends data as JSON with the given status. Headers must be set
// before WriteHeader; anything set afterwards is ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a domain error to an HTTP status and error type.
//
//	ErrValidation         400 validation_error
//	ErrNotFound           404 not_found
//	ErrStorage            503 storage_unavailable
//	deadline exceeded     504 timeout
//	anything else         500 internal_error
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, "validation_error"
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperror.ErrStorage):
		return http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeError sends err as an ErrorResponse. Only *apperror.AppError messages
// reach the client. Storage errors carry backend details (paths, SQL), so
// those get a fixed message and the details go to the log.
func writeError(w http.ResponseWriter, err error) {
	status, errorType := errorStatus(err)

	message := "An internal error occurred"
	var appErr *apperror.AppError
	switch {
	case errors.Is(err, apperror.ErrStorage):
		message = "Snippet storage is unavailable"
	case errors.As(err, &appErr):
		message = appErr.Message
	case status == http.StatusGatewayTimeout:
		message = "The request timed out"
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: message,
	})
}
