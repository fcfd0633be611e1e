package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-logr/logr"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const loggerKey contextKey = "logger"

// WithLogger returns middleware that stores log in the request context,
// tagged with the chi request ID when one is set. Handlers retrieve it with
// GetLogger.
func WithLogger(log logr.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := log
			if id := middleware.GetReqID(r.Context()); id != "" {
				l = l.WithValues("requestID", id)
			}
			ctx := context.WithValue(r.Context(), loggerKey, l)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetLogger returns the request's logger, or a discarding logger when
// WithLogger was not applied.
func GetLogger(r *http.Request) logr.Logger {
	l, ok := r.Context().Value(loggerKey).(logr.Logger)
	if !ok {
		return logr.Discard()
	}
	return l
}
