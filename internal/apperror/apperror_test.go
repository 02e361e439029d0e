package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{
			name:      "NotFound wraps ErrNotFound",
			err:       NotFound("cat", "abc123"),
			target:    ErrNotFound,
			wantMatch: true,
		},
		{
			name:      "ValidationFailed wraps ErrValidation",
			err:       ValidationFailed("birth_year", "Проверьте год рождения!"),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Invalid wraps ErrValidation",
			err:       Invalid(map[string][]string{"name": {"This field is required."}}),
			target:    ErrValidation,
			wantMatch: true,
		},
		{
			name:      "Conflict wraps ErrConflict",
			err:       Conflict("cat", "abc123"),
			target:    ErrConflict,
			wantMatch: true,
		},
		{
			name:      "Unauthorized wraps ErrUnauthorized",
			err:       Unauthorized("invalid credentials"),
			target:    ErrUnauthorized,
			wantMatch: true,
		},
		{
			name:      "wrapped Forbidden still matches",
			err:       fmt.Errorf("updating cat: %w", Forbidden("not yours")),
			target:    ErrForbidden,
			wantMatch: true,
		},
		{
			name:      "NotFound does NOT match ErrValidation",
			err:       NotFound("cat", "abc123"),
			target:    ErrValidation,
			wantMatch: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.target)
			if got != tt.wantMatch {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.target, got, tt.wantMatch)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name        string
		err         *AppError
		wantMessage string
	}{
		{
			name:        "NotFound message includes resource and id",
			err:         NotFound("cat", "abc123"),
			wantMessage: "cat not found with id abc123",
		},
		{
			name:        "ValidationFailed uses custom message",
			err:         ValidationFailed("birth_year", "Проверьте год рождения!"),
			wantMessage: "Проверьте год рождения!",
		},
		{
			name:        "Conflict message includes resource and id",
			err:         Conflict("achievement", "Brave"),
			wantMessage: "achievement conflict with id Brave",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMessage {
				t.Errorf("Error() = %q, want %q", got, tt.wantMessage)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	err := NotFound("cat", "abc123")
	if err.Unwrap() != ErrNotFound {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), ErrNotFound)
	}
}

func TestValidationFailedFields(t *testing.T) {
	err := ValidationFailed(NonFieldErrors, "Имя не может совпадать с цветом!")

	if err.Field != NonFieldErrors {
		t.Errorf("Field = %q, want %q", err.Field, NonFieldErrors)
	}
	if got := err.Fields[NonFieldErrors]; len(got) != 1 || got[0] != "Имя не может совпадать с цветом!" {
		t.Errorf("Fields[%s] = %v", NonFieldErrors, got)
	}
}

func TestInvalid_PicksFirstFieldAlphabetically(t *testing.T) {
	err := Invalid(map[string][]string{
		"name":       {"This field is required."},
		"birth_year": {"Проверьте год рождения!"},
	})

	if err.Field != "birth_year" {
		t.Errorf("Field = %q, want %q", err.Field, "birth_year")
	}
	if err.Message != "Проверьте год рождения!" {
		t.Errorf("Message = %q", err.Message)
	}
	if len(err.Fields) != 2 {
		t.Errorf("len(Fields) = %d, want 2", len(err.Fields))
	}
}
