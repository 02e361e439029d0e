// Package apperror defines the domain errors shared by every layer.
//
// Services return these; the HTTP layer (handler/response.go) is the only
// place that knows which status code each one becomes.
package apperror

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// NonFieldErrors is the key used for errors that belong to the object as a
// whole rather than to a single field.
const NonFieldErrors = "non_field_errors"

type AppError struct {
	Err     error               // actual error
	Message string              // Human-readable error message
	Field   string              // Optional: field causing the error
	Fields  map[string][]string // Optional: every invalid field with its messages
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
		Fields:  map[string][]string{field: {message}},
	}
}

// Invalid builds a validation error carrying messages for several fields.
// Message and Field are taken from the alphabetically first field so the
// error stays stable across runs.
func Invalid(fields map[string][]string) *AppError {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := &AppError{Err: ErrValidation, Fields: fields, Message: "invalid input"}
	if len(keys) > 0 && len(fields[keys[0]]) > 0 {
		e.Field = keys[0]
		e.Message = fields[keys[0]][0]
	}
	return e
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
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

// Unauthorized reports missing or bad credentials (401).
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
