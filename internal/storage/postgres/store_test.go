package postgres

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/platform/db"
	"salesboard/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)

	_, file, _, _ := runtime.Caller(0)
	migrations := filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
	if _, err := db.Migrate(ctx, pool, migrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	s := NewStore(pool)
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return s
}

func TestRatingUpsertKeepsID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	first, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 40, UpdatedAt: now})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	second, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 60, UpdatedAt: now})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if first.ID != second.ID || second.Score != 60 {
		t.Fatalf("expected upsert, got %+v then %+v", first, second)
	}

	ratings, err := s.ListRatings(ctx, "2025-03-10")
	if err != nil || len(ratings) != 1 {
		t.Fatalf("expected one rating, got %+v %v", ratings, err)
	}
}

func TestMetricsUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	w1, err := s.SaveWeeklyMetric(ctx, metrics.WeeklyMetric{WeekKey: "2025-03-10", UserID: 2, LeadsCount: 3, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("save weekly: %v", err)
	}
	w2, err := s.SaveWeeklyMetric(ctx, metrics.WeeklyMetric{WeekKey: "2025-03-10", UserID: 4, LeadsCount: 8, UpdatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("save weekly: %v", err)
	}
	if w1.ID != w2.ID || w2.LeadsCount != 8 || w2.UserID != 4 {
		t.Fatalf("unexpected weekly upsert: %+v %+v", w1, w2)
	}

	m, err := s.SaveMonthlyMetric(ctx, metrics.DeriveMonthly(metrics.MonthlyMetric{MonthKey: "2025-03", UserID: 6, TonsCount: 9, DealsCount: 3, UpdatedAt: time.Now().UTC()}))
	if err != nil {
		t.Fatalf("save monthly: %v", err)
	}
	if m.TonsPerDeal != 3 {
		t.Fatalf("expected stored derived value, got %+v", m)
	}
	list, err := s.ListMonthlyMetrics(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("unexpected monthly list %+v %v", list, err)
	}
}

func TestResetDropsRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 40, UpdatedAt: time.Now().UTC()}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	all, err := s.AllRatings(ctx)
	if err != nil || len(all) != 0 {
		t.Fatalf("expected no ratings after reset, got %+v %v", all, err)
	}
}
