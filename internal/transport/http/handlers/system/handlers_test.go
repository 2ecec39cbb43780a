package systemhandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"salesboard/internal/domain/auth"
	"salesboard/internal/domain/roster"
	"salesboard/internal/platform/jobs"
	"salesboard/internal/platform/metrics"
	"salesboard/internal/requestctx"
)

func newRouter(t *testing.T, h *Handler, employeeID int) http.Handler {
	t.Helper()
	emp, err := roster.Default().ByID(employeeID)
	if err != nil {
		t.Fatalf("employee %d: %v", employeeID, err)
	}
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestctx.WithSession(req.Context(), auth.Session{Employee: emp})
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.RegisterRoutes(r)
	return r
}

func post(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
	return rec
}

func noopReport(context.Context) (any, error) { return nil, nil }

func TestAsyncWeeklyReportRejectedWhenQueueFull(t *testing.T) {
	jobSvc := jobs.New(time.UTC)
	// The worker is never started, so the queue only fills up.
	for i := 0; ; i++ {
		if !jobSvc.Enqueue("filler", noopReport) {
			break
		}
		if i > 10000 {
			t.Fatal("queue never filled")
		}
	}

	router := newRouter(t, NewHandler(metrics.New(), jobSvc, noopReport, nil), 2)
	rec := post(router, "/system/jobs/weekly-report?async=true")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAsyncWeeklyReportQueued(t *testing.T) {
	router := newRouter(t, NewHandler(metrics.New(), jobs.New(time.UTC), noopReport, nil), 2)
	rec := post(router, "/system/jobs/weekly-report?async=true")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestResetRoute(t *testing.T) {
	calls := 0
	reset := func(context.Context) error {
		calls++
		return nil
	}
	h := NewHandler(metrics.New(), jobs.New(time.UTC), noopReport, reset)

	if rec := post(newRouter(t, h, 1), "/system/reset"); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-evaluator, got %d", rec.Code)
	}
	if rec := post(newRouter(t, h, 2), "/system/reset"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("expected one reset call, got %d", calls)
	}
}

func TestResetRouteFailure(t *testing.T) {
	h := NewHandler(metrics.New(), jobs.New(time.UTC), noopReport, func(context.Context) error {
		return errors.New("disk full")
	})
	if rec := post(newRouter(t, h, 2), "/system/reset"); rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestResetRouteAbsentWithoutResetFunc(t *testing.T) {
	h := NewHandler(metrics.New(), jobs.New(time.UTC), noopReport, nil)
	if rec := post(newRouter(t, h, 2), "/system/reset"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
