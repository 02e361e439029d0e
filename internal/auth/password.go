// Package auth: password hashing.
//
// WHY BCRYPT?
// Account passwords are only ever compared, never read back, so we store a
// one-way hash. bcrypt is deliberately slow and salts every hash, so two
// users who pick "whiskers1" end up with different stored strings and an
// attacker holding a dump of the users table has to brute-force each row
// separately.
//
// The whole result of bcrypt.GenerateFromPassword goes into
// users.password_hash:
//
//	$2a$12$<22-char salt><31-char hash>
//	 ^   ^
//	 |   cost (2^12 rounds)
//	 version
//
// The salt and cost travel inside that string, which is why the table has
// no separate salt column and why raising the cost later does not break
// existing logins.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// defaultCost is the bcrypt work factor used in production.
//
// Pick the cost so one hash takes a few hundred milliseconds on the
// deployment hardware. Registration and login each hash once per request,
// so a cost that is too high shows up directly as login latency.
const defaultCost = 12

// maxPasswordBytes is bcrypt's input limit. Longer input would be cut off
// silently, so Hash refuses it instead.
const maxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify for a wrong password. The user
// service turns it into the same 401 as an unknown username, so callers
// cannot tell which accounts exist.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and checks passwords with bcrypt.
//
// It is a struct rather than two free functions so the cost can be set
// per instance: config can raise it, and tests drop it to bcrypt.MinCost
// so a registration in a handler test costs microseconds, not 250ms.
type PasswordService struct {
	cost int
}

// NewPasswordService uses defaultCost.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: defaultCost}
}

// NewPasswordServiceWithCost uses the given bcrypt cost. It fails outside
// bcrypt's accepted range instead of letting bcrypt quietly fall back to
// its own default.
func NewPasswordServiceWithCost(cost int) (*PasswordService, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("auth: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &PasswordService{cost: cost}, nil
}

// NewPasswordServiceForTest is NewPasswordServiceWithCost for callers that
// pass a known-good constant, usually bcrypt.MinCost. It panics on a bad
// cost. Keep it out of production paths: cost 4 is far too weak.
func NewPasswordServiceForTest(cost int) *PasswordService {
	p, err := NewPasswordServiceWithCost(cost)
	if err != nil {
		panic(err)
	}
	return p
}

// Hash returns the bcrypt string to store for plaintext.
//
// It fails for passwords over 72 bytes. Registration already limits
// passwords by character count, but multi-byte characters can still push a
// short-looking password over the byte limit.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", maxPasswordBytes)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil when plaintext matches hash and ErrPasswordMismatch
// when it does not. Any other error means the stored hash is malformed.
//
// TIMING SAFETY:
// bcrypt.CompareHashAndPassword compares in constant time, so response
// times do not leak how much of a guess was right.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
