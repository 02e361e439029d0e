package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func TestNewTokenService(t *testing.T) {
	if _, err := NewTokenService("short", time.Hour); err == nil {
		t.Error("NewTokenService() should reject secrets shorter than 16 chars")
	}

	ts, err := NewTokenService("this-is-16-chars", 0)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	if ts.ttl != DefaultTokenTTL {
		t.Errorf("ttl = %v, want %v", ts.ttl, DefaultTokenTTL)
	}
}

func TestGenerate_Format(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if n := strings.Count(token, "."); n != 2 {
		t.Errorf("token has %d dots, want 2", n)
	}

	other, _ := ts.Generate("user-456")
	if token == other {
		t.Error("Generate() returned identical tokens for different users")
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("user-abc")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	got, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if got != "user-abc" {
		t.Errorf("Validate() = %q, want %q", got, "user-abc")
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.now = func() time.Time { return start }

	token, err := ts.Generate("user-123")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	ts.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := ts.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() error = %v, want ErrTokenExpired", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-123")

	other, _ := NewTokenService("another-secret-32-chars-long!!!!", time.Hour)
	foreign, _ := other.Generate("user-123")

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered signature", token[:len(token)-4] + "AAAA"},
		{"other secret", foreign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ts.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
