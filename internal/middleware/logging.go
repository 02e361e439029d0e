// Package middleware holds HTTP middleware shared by every route.
//
// A middleware here has the chi shape func(http.Handler) http.Handler: it
// gets the next handler and returns a handler that does its own work
// around next.ServeHTTP. The server installs them in order, so a request
// passes RequestID, RealIP, Recoverer and then Logger before it reaches
// the auth groups and the handlers.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter records the status code and body size of a response.
//
// http.ResponseWriter has no getter for the status a handler chose, so the
// logger hands handlers this wrapper instead and reads the fields back
// after next.ServeHTTP returns. Embedding the interface keeps every other
// method (Header, and Flush through Unwrap) pointing at the real writer.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int64
	wroteHeader bool
}

// WriteHeader keeps the first status only. net/http ignores later calls
// with a "superfluous WriteHeader" warning, and the log line should show
// what the client actually got.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write without a prior WriteHeader means an implicit 200, which is the
// value statusCode starts with.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger logs one line per request. Server errors log at Error, client
// errors at Warn and everything else at Info, so a failing validation
// (400) is visible without drowning in successful list calls.
//
// The chi request ID is included when the RequestID middleware runs first.
// The user ID is not logged: authentication runs in the route groups
// inside this middleware and its context never flows back out here.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			level := slog.LevelInfo
			switch {
			case wrapped.statusCode >= 500:
				level = slog.LevelError
			case wrapped.statusCode >= 400:
				level = slog.LevelWarn
			}

			logger.LogAttrs(r.Context(), level, "request completed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
				slog.String("request_id", chimiddleware.GetReqID(r.Context())),
				slog.String("remote", r.RemoteAddr),
			)
		})
	}
}
