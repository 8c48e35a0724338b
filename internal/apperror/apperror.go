// Package apperror defines the error taxonomy shared by every layer.
//
// Services and repositories return *AppError values that wrap one of the
// sentinel errors below. The HTTP layer maps sentinels to status codes with
// errors.Is and only ever shows AppError.Message to the client.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUnauthorized       = errors.New("authentication required")
	ErrSimulatedExecution = errors.New("simulated execution error")
)

type AppError struct {
	Err     error  // sentinel
	Message string // safe to show to clients
	Field   string // optional: request field that caused the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
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

// MissingField is the ValidationFailed shorthand for an absent or blank
// required field.
func MissingField(field string) *AppError {
	return ValidationFailed(field, fmt.Sprintf("%s is required", field))
}

// Conflict reports a unique-name violation, e.g. Conflict("tag", "JOIN").
func Conflict(resource, name string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, name),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized is returned when the caller could not be identified.
// It is never used for ownership failures; those are Forbidden.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

func SimulatedExecution(message string) *AppError {
	return &AppError{
		Err:     ErrSimulatedExecution,
		Message: message,
	}
}
