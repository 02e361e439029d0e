// Package handler exposes the services over HTTP as JSON.
package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"reflect"

	"github.com/sakif/kittygram/internal/apperror"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply. Fields maps each
// offending field (or "non_field_errors") to its messages.
type ErrorResponse struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps err to a status code. Errors that are not an
// *apperror.AppError are logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
		return
	}

	status := http.StatusInternalServerError
	errorType := "internal_error"

	switch {
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
		errorType = "validation_error"
	case errors.Is(err, apperror.ErrUnauthorized):
		status = http.StatusUnauthorized
		errorType = "unauthorized"
	case errors.Is(err, apperror.ErrForbidden):
		status = http.StatusForbidden
		errorType = "forbidden"
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
		errorType = "not_found"
	case errors.Is(err, apperror.ErrConflict):
		status = http.StatusConflict
		errorType = "conflict"
	}

	writeJSON(w, status, ErrorResponse{
		Error:   errorType,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	})
}

// decodeJSON reads one JSON object from the request body into dst. When
// values have the wrong type, every such field is reported, not just the
// first one the decoder meets.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return apperror.ValidationFailed(apperror.NonFieldErrors, "JSON parse error: "+err.Error())
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return apperror.ValidationFailed(apperror.NonFieldErrors, "No data provided.")
	}

	err = json.Unmarshal(body, dst)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if fields := typeErrors(body, dst); len(fields) > 0 {
			return apperror.Invalid(fields)
		}
	}
	return apperror.ValidationFailed(apperror.NonFieldErrors, "JSON parse error: "+err.Error())
}

// typeErrors decodes each top-level key of body on its own into a fresh
// value of dst's type and collects the type mismatches.
func typeErrors(body []byte, dst any) map[string][]string {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}
	t := reflect.TypeOf(dst)
	if t.Kind() != reflect.Pointer {
		return nil
	}

	fields := map[string][]string{}
	for key, val := range raw {
		one, err := json.Marshal(map[string]json.RawMessage{key: val})
		if err != nil {
			continue
		}
		var typeErr *json.UnmarshalTypeError
		if err := json.Unmarshal(one, reflect.New(t.Elem()).Interface()); !errors.As(err, &typeErr) {
			continue
		}
		field := typeErr.Field
		if field == "" {
			field = key
		}
		fields[field] = append(fields[field], "Incorrect type. Expected "+typeErr.Type.String()+".")
	}
	return fields
}
