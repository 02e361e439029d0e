package auth

import (
	"context"
	"net/http"
	"strings"
)

// contextKey is unexported so only this package can build keys of its type.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue compares keys by type and value. A plain string key
// "userID" could be read or overwritten by any package that happens to use
// the same string. A private type makes the key collision-proof; other
// packages go through WithUserID and UserIDFromContext.
type contextKey string

const userIDKey contextKey = "userID"

// UnauthorizedBody is written by RequireAuth. It has the same shape as
// every other error body the API returns.
const UnauthorizedBody = `{"error":"unauthorized","message":"Authentication credentials were not provided or are invalid."}`

// RequireAuth rejects requests without a valid "Authorization: Bearer"
// token and stores the token's user ID in the request context.
//
// The 401 carries WWW-Authenticate, as RFC 7235 requires, and a JSON body
// written directly: this runs before any handler, so handler.writeError is
// not available, but the body keeps the same error/message shape.
//
// The server mounts it on the write routes and /api/users/me; the read
// routes use OptionalAuth.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(UnauthorizedBody + "\n"))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// OptionalAuth attaches the user ID when a valid token is present and lets
// anonymous requests through untouched. A bad token is treated as no token:
// the catalog is public to read, so failing a GET over a stale token would
// only get in the way.
func OptionalAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := extractUserID(r, tokens); err == nil {
				r = r.WithContext(WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithUserID is what the middleware uses to attach the caller. Tests use
// it to fake an authenticated request without minting a token.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user's ID, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID accepts the scheme in any case ("bearer", "Bearer"), which
// RFC 7235 allows.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", ErrInvalidToken
	}
	return tokens.Validate(strings.TrimSpace(token))
}
