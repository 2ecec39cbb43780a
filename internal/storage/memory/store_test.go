package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestSaveRatingUpserts(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 90})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" || first.ID != second.ID || second.Score != 90 {
		t.Fatalf("expected same record updated, got %+v then %+v", first, second)
	}

	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-17", EvaluatorID: 2, EvaluatedID: 1, Score: 50}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	week, _ := s.ListRatings(ctx, "2025-03-10")
	if len(week) != 1 {
		t.Fatalf("expected one rating for week, got %d", len(week))
	}
	all, _ := s.AllRatings(ctx)
	if len(all) != 2 {
		t.Fatalf("expected two ratings total, got %d", len(all))
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "store.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.SaveWeeklyMetric(ctx, metrics.WeeklyMetric{WeekKey: "2025-03-10", LeadsCount: 4}); err != nil {
		t.Fatalf("save weekly: %v", err)
	}
	if _, err := s.SaveMonthlyMetric(ctx, metrics.MonthlyMetric{MonthKey: "2025-03", Revenue: 100}); err != nil {
		t.Fatalf("save monthly: %v", err)
	}
	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 4, EvaluatedID: 2, Score: 77}); err != nil {
		t.Fatalf("save rating: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	weekly, _ := reopened.ListWeeklyMetrics(ctx)
	monthly, _ := reopened.ListMonthlyMetrics(ctx)
	ratings, _ := reopened.ListRatings(ctx, "2025-03-10")
	if len(weekly) != 1 || weekly[0].LeadsCount != 4 {
		t.Fatalf("weekly not restored: %+v", weekly)
	}
	if len(monthly) != 1 || monthly[0].Revenue != 100 {
		t.Fatalf("monthly not restored: %+v", monthly)
	}
	if len(ratings) != 1 || ratings[0].Score != 77 {
		t.Fatalf("ratings not restored: %+v", ratings)
	}

	if err := reopened.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}
	empty, _ := Open(path)
	if all, _ := empty.AllRatings(ctx); len(all) != 0 {
		t.Fatalf("expected reset to persist, got %d ratings", len(all))
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.SaveWeeklyMetric(ctx, metrics.WeeklyMetric{WeekKey: "2025-03-10", LeadsCount: 1})
	list, _ := s.ListWeeklyMetrics(ctx)
	list[0].LeadsCount = 999
	again, _ := s.ListWeeklyMetrics(ctx)
	if again[0].LeadsCount != 1 {
		t.Fatal("list must not expose internal state")
	}
}

func TestFailedWriteLeavesDataUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "data", "store.json")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 40}); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A regular file where the snapshot directory should be makes every write fail.
	if err := os.RemoveAll(filepath.Join(dir, "data")); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600); err != nil {
		t.Fatalf("block dir: %v", err)
	}

	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 2, EvaluatedID: 1, Score: 95}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := s.SaveRating(ctx, engagement.Rating{WeekKey: "2025-03-10", EvaluatorID: 4, EvaluatedID: 1, Score: 60}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := s.SaveWeeklyMetric(ctx, metrics.WeeklyMetric{WeekKey: "2025-03-10", LeadsCount: 3}); err == nil {
		t.Fatal("expected write error")
	}
	if _, err := s.SaveMonthlyMetric(ctx, metrics.MonthlyMetric{MonthKey: "2025-03", Revenue: 10}); err == nil {
		t.Fatal("expected write error")
	}

	ratings, _ := s.ListRatings(ctx, "2025-03-10")
	if len(ratings) != 1 || ratings[0].Score != 40 {
		t.Fatalf("failed saves must not change ratings, got %+v", ratings)
	}
	weekly, _ := s.ListWeeklyMetrics(ctx)
	monthly, _ := s.ListMonthlyMetrics(ctx)
	if len(weekly) != 0 || len(monthly) != 0 {
		t.Fatalf("failed saves must not change metrics, got %+v %+v", weekly, monthly)
	}
}
