package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"salesboard/internal/domain/auth"
	"salesboard/internal/domain/roster"
	"salesboard/internal/platform/metrics"
)

type stubAuthenticator struct {
	sessions map[string]auth.Session
}

func (s stubAuthenticator) Authenticate(token string) (auth.Session, error) {
	session, ok := s.sessions[token]
	if !ok {
		return auth.Session{}, errors.New("unknown token")
	}
	return session, nil
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestID(r.Context()) == "" {
			t.Fatal("expected request id in context")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "caller-id" {
		t.Fatalf("expected caller id to be kept, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestAuthMiddlewareSetsSession(t *testing.T) {
	authn := stubAuthenticator{sessions: map[string]auth.Session{"good": {ID: "s1", Employee: roster.Employee{ID: 2}}}}
	var seen bool
	handler := Auth(authn)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := GetSession(r.Context())
		seen = ok
		if ok && session.EmployeeID() != 2 {
			t.Fatalf("unexpected session %+v", session)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !seen {
		t.Fatal("expected session in context")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if seen {
		t.Fatal("did not expect session for a bad token")
	}
}

func TestRequireCapability(t *testing.T) {
	authn := stubAuthenticator{sessions: map[string]auth.Session{
		"weekly": {Employee: roster.Employee{ID: 2, Capabilities: roster.Capabilities{CanInputWeekly: true}}},
		"plain":  {Employee: roster.Employee{ID: 1}},
	}}
	handler := Auth(authn)(RequireCapability(CanInputWeekly)(http.HandlerFunc(noContent)))

	cases := []struct {
		token string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"plain", http.StatusForbidden},
		{"weekly", http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPut, "/", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("token %q: expected %d, got %d", tc.token, tc.want, rec.Code)
		}
	}
}

func TestBodyLimitRejectsDeclaredOversize(t *testing.T) {
	handler := BodyLimit(8)(http.HandlerFunc(noContent))
	req := httptest.NewRequest(http.MethodPut, "/", strings.NewReader(strings.Repeat("x", 32)))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected reads to pass, got %d", rec.Code)
	}
}

func TestSecureHeaders(t *testing.T) {
	handler := SecureHeaders(true)(http.HandlerFunc(noContent))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/roster", nil))
	if rec.Header().Get("Strict-Transport-Security") == "" || rec.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("unexpected headers %v", rec.Header())
	}
}

func TestLoggerRecordsMetrics(t *testing.T) {
	collector := metrics.New()
	handler := Logger(collector)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(time.Millisecond)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	snap := collector.Snapshot()
	if snap.RequestsTotal != 1 || snap.ErrorsTotal != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}
