package middleware

import (
	"context"
	"net/http"
	"strings"

	"salesboard/internal/domain/auth"
	"salesboard/internal/domain/roster"
	"salesboard/internal/requestctx"
	"salesboard/internal/transport/http/api"
)

type SessionAuthenticator interface {
	Authenticate(token string) (auth.Session, error)
}

// Auth attaches the session for a valid bearer token. Requests without one
// pass through unauthenticated; RequireSession rejects them.
func Auth(authenticator SessionAuthenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			session, err := authenticator.Authenticate(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func BearerToken(r *http.Request) string {
	parts := strings.Fields(r.Header.Get("Authorization"))
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func GetSession(ctx context.Context) (auth.Session, bool) {
	return requestctx.GetSession(ctx)
}

func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Capability reports whether an employee may use a route.
type Capability func(roster.Employee) bool

var (
	CanEvaluate     Capability = func(e roster.Employee) bool { return e.CanEvaluate }
	CanInputWeekly  Capability = func(e roster.Employee) bool { return e.CanInputWeekly }
	CanInputMonthly Capability = func(e roster.Employee) bool { return e.CanInputMonthly }
)

func RequireCapability(allowed Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSession(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
				return
			}
			if !allowed(session.Employee) {
				api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", GetRequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
