// Package apperror defines the domain errors shared by the store, the services
// and the presentation shells.
//
// Every error is a *AppError wrapping one of the sentinels below, so callers
// classify with errors.Is and read the human-readable text with errors.As.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // human-readable error message
	Field   string // optional: field causing the error
	Cause   error  // optional: underlying backend error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// ErrStorage as well as e.g. context.Canceled from the backend.
func (e *AppError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// StorageFailed reports that the persisted slot could not be read, decoded or
// written. op names the attempted operation ("reading slot", "decoding slot").
func StorageFailed(op string, cause error) *AppError {
	return &AppError{
		Err:     ErrStorage,
		Message: "storage: " + op,
		Cause:   cause,
	}
}
