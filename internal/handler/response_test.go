package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/kittygram/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("name", "bad"), http.StatusBadRequest, "validation_error"},
		{"unauthorized", apperror.Unauthorized("no"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperror.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{"not found", apperror.NotFound("cat", "x"), http.StatusNotFound, "not_found"},
		{"conflict", apperror.Conflict("cat", "x"), http.StatusConflict, "conflict"},
		{"wrapped", fmt.Errorf("outer: %w", apperror.NotFound("cat", "x")), http.StatusNotFound, "not_found"},
		{"plain error", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.NotContains(t, body.Message, "disk on fire")
		})
	}
}

func TestWriteError_Fields(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), apperror.Invalid(map[string][]string{
		"name":       {"This field is required."},
		"birth_year": {"Проверьте год рождения!"},
	}))

	assert.JSONEq(t, `{
		"error": "validation_error",
		"message": "Проверьте год рождения!",
		"fields": {
			"name": ["This field is required."],
			"birth_year": ["Проверьте год рождения!"]
		}
	}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		BirthYear int `json:"birth_year"`
	}

	tests := []struct {
		body  string
		field string
	}{
		{"", apperror.NonFieldErrors},
		{"{", apperror.NonFieldErrors},
		{`{"birth_year":"old"}`, "birth_year"},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
		err := decodeJSON(rec, req, &dst)

		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr), "body %q: %v", tt.body, err)
		assert.Contains(t, appErr.Fields, tt.field, "body %q", tt.body)
	}
}

func TestDecodeJSON_ReportsEveryTypeError(t *testing.T) {
	var dst struct {
		Name      string `json:"name"`
		Color     string `json:"color"`
		BirthYear int    `json:"birth_year"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":5,"color":"Black","birth_year":"x"}`))
	err := decodeJSON(rec, req, &dst)

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "%v", err)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, map[string][]string{
		"name":       {"Incorrect type. Expected string."},
		"birth_year": {"Incorrect type. Expected int."},
	}, appErr.Fields)
}
