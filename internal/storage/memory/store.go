// Package memory keeps all records in process memory, optionally mirrored to a
// JSON snapshot file after every write.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/storage"
)

type Store struct {
	mu   sync.RWMutex
	path string
	data storage.Snapshot
}

// New returns an empty store without file persistence.
func New() *Store {
	return &Store{}
}

// Open loads path when it exists and persists every write back to it.
func Open(path string) (*Store, error) {
	s := &Store{path: path}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return s, nil
}

func (s *Store) ListRatings(_ context.Context, weekKey string) ([]engagement.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []engagement.Rating{}
	for _, r := range s.data.EngagementRatings {
		if r.WeekKey == weekKey {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) AllRatings(context.Context) ([]engagement.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]engagement.Rating{}, s.data.EngagementRatings...), nil
}

func (s *Store) SaveRating(_ context.Context, rating engagement.Rating) (engagement.Rating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	next.EngagementRatings = engagement.UpsertRating(s.data.EngagementRatings, rating)
	if err := s.commitLocked(next); err != nil {
		return engagement.Rating{}, err
	}
	saved, _ := engagement.FindRating(next.EngagementRatings, rating.Key())
	return saved, nil
}

func (s *Store) ListWeeklyMetrics(context.Context) ([]metrics.WeeklyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]metrics.WeeklyMetric{}, s.data.WeeklyMetrics...), nil
}

func (s *Store) SaveWeeklyMetric(_ context.Context, metric metrics.WeeklyMetric) (metrics.WeeklyMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	next.WeeklyMetrics = metrics.UpsertWeekly(s.data.WeeklyMetrics, metric)
	if err := s.commitLocked(next); err != nil {
		return metrics.WeeklyMetric{}, err
	}
	for _, m := range next.WeeklyMetrics {
		if m.WeekKey == metric.WeekKey {
			return m, nil
		}
	}
	return metrics.WeeklyMetric{}, metrics.ErrNotFound
}

func (s *Store) ListMonthlyMetrics(context.Context) ([]metrics.MonthlyMetric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]metrics.MonthlyMetric{}, s.data.MonthlyMetrics...), nil
}

func (s *Store) SaveMonthlyMetric(_ context.Context, metric metrics.MonthlyMetric) (metrics.MonthlyMetric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data
	next.MonthlyMetrics = metrics.UpsertMonthly(s.data.MonthlyMetrics, metric)
	if err := s.commitLocked(next); err != nil {
		return metrics.MonthlyMetric{}, err
	}
	for _, m := range next.MonthlyMetrics {
		if m.MonthKey == metric.MonthKey {
			return m, nil
		}
	}
	return metrics.MonthlyMetric{}, metrics.ErrNotFound
}

// Reset drops all records.
func (s *Store) Reset(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitLocked(storage.Snapshot{})
}

func (s *Store) Ping(context.Context) error {
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(s.data)
}

// commitLocked writes next to the snapshot file and only then makes it the
// live data set. Requires s.mu held.
func (s *Store) commitLocked(next storage.Snapshot) error {
	if err := s.writeLocked(next); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.data = next
	return nil
}

// writeLocked replaces the snapshot atomically via rename. Requires s.mu held.
func (s *Store) writeLocked(data storage.Snapshot) error {
	if s.path == "" {
		return nil
	}
	payload, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
