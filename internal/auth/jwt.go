// Package auth issues and checks bearer tokens and hashes passwords.
//
// AUTHENTICATION FLOW:
//  1. A client registers with POST /api/users (password stored as bcrypt).
//  2. POST /api/auth/token trades username and password for an access
//     token signed by TokenService.
//  3. Later requests send "Authorization: Bearer <token>". RequireAuth or
//     OptionalAuth validates it and puts the user ID in the request
//     context, where handlers pick it up as the cat owner.
//
// WHY JWT?
// Every cat write needs the caller's ID, and validating a signed token
// needs only the secret, not a sessions table. The trade-off is that a
// token stays valid until it expires, so the TTL is kept short-ish and
// configurable.
//
// A token is HEADER.PAYLOAD.SIGNATURE, each part base64url encoded:
//
//	{"alg":"HS256","typ":"JWT"} . {"sub":"<user id>","iss":"kittygram","exp":...} . HMAC-SHA256
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "kittygram"

// DefaultTokenTTL applies when NewTokenService gets a non-positive ttl.
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// TokenService signs and validates HS256 access tokens whose subject is a
// user ID.
//
// now is a field rather than a direct time.Now call so tests can move the
// clock past the TTL instead of sleeping.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService rejects secrets shorter than 16 bytes. HMAC accepts any
// key length, but a short secret can be brute-forced offline from a single
// captured token.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

type claims struct {
	jwt.RegisteredClaims
}

// Generate returns a signed token for userID that expires after the
// service's TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	now := s.now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			Issuer:    issuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Validate returns the user ID carried by tokenStr.
//
// WithValidMethods pins the algorithm to HS256. Without it a token whose
// header says "none", or an RSA algorithm, would have its signature checked
// with rules the server never meant to accept. Expiry is required, so a
// token minted without "exp" is rejected rather than living forever.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid || c.Subject == "" {
		return "", ErrInvalidToken
	}
	return c.Subject, nil
}
