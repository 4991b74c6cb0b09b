package middleware

import (
	"context"
	"net/http"

	"conduit/internal/auth"
	"conduit/internal/httputil"
	"conduit/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// SessionKey is the context key for the resolved session
	SessionKey contextKey = "session"
)

// SessionResolver is the part of auth.SessionResolver the middleware needs.
type SessionResolver interface {
	Resolve(ctx context.Context, header string) (*auth.Session, error)
}

// OptionalAuthMiddleware resolves the Authorization header when present.
// Requests without an identity pass through anonymously; a malformed header
// or untrusted token is rejected.
func OptionalAuthMiddleware(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
			if err != nil {
				httputil.WriteServiceError(w, "AuthMiddleware", err)
				return
			}
			if session == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), SessionKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AuthMiddleware is OptionalAuthMiddleware that also requires an identity.
func AuthMiddleware(resolver SessionResolver) func(http.Handler) http.Handler {
	optional := OptionalAuthMiddleware(resolver)
	return func(next http.Handler) http.Handler {
		required := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetSessionFromContext(r.Context()); !ok {
				httputil.WriteDomainError(w, model.Unauthenticated("authentication required", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
		return optional(required)
	}
}

// GetSessionFromContext extracts the session from the request context
func GetSessionFromContext(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(SessionKey).(*auth.Session)
	return session, ok && session != nil
}

// GetViewerFromContext returns the session user, or nil for anonymous requests.
func GetViewerFromContext(ctx context.Context) *model.User {
	if session, ok := GetSessionFromContext(ctx); ok {
		return session.User
	}
	return nil
}
