package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(bcrypt.MinCost)
}

func TestHash(t *testing.T) {
	ps := newTestPasswordService()

	hash1, err := ps.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !strings.HasPrefix(hash1, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash1)
	}

	hash2, _ := ps.Hash("same-password")
	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password")
	}
}

func TestHash_Length(t *testing.T) {
	ps := newTestPasswordService()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Errorf("Hash() rejected a 72-byte password: %v", err)
	}
	if _, err := ps.Hash(strings.Repeat("a", 73)); err == nil {
		t.Error("Hash() accepted a 73-byte password")
	}
}

func TestVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if err := ps.Verify(hash, "correct-horse-battery-staple"); err != nil {
		t.Errorf("Verify() correct password error = %v", err)
	}
	if err := ps.Verify(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() wrong password error = %v, want ErrPasswordMismatch", err)
	}
	if err := ps.Verify("not-a-hash", "anything"); err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Verify() malformed hash error = %v, want a non-mismatch error", err)
	}
}

func TestNewPasswordServiceWithCost(t *testing.T) {
	for _, cost := range []int{bcrypt.MinCost, defaultCost, bcrypt.MaxCost} {
		if _, err := NewPasswordServiceWithCost(cost); err != nil {
			t.Errorf("NewPasswordServiceWithCost(%d) error = %v", cost, err)
		}
	}
	for _, cost := range []int{0, bcrypt.MinCost - 1, bcrypt.MaxCost + 1} {
		if _, err := NewPasswordServiceWithCost(cost); err == nil {
			t.Errorf("NewPasswordServiceWithCost(%d) accepted an out-of-range cost", cost)
		}
	}
}
