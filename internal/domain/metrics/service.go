package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/period"
	"salesboard/internal/domain/roster"
)

type Service struct {
	store StoreAPI
	now   func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) ListWeekly(ctx context.Context) ([]WeeklyMetric, error) {
	list, err := s.store.ListWeeklyMetrics(ctx)
	if err != nil {
		return nil, err
	}
	SortWeekly(list)
	return list, nil
}

func (s *Service) GetWeekly(ctx context.Context, weekKey string) (WeeklyMetric, error) {
	list, err := s.store.ListWeeklyMetrics(ctx)
	if err != nil {
		return WeeklyMetric{}, err
	}
	for _, m := range list {
		if m.WeekKey == weekKey {
			return m, nil
		}
	}
	return WeeklyMetric{}, ErrNotFound
}

func (s *Service) SaveWeekly(ctx context.Context, actor roster.Employee, weekKey string, metric WeeklyMetric) (WeeklyMetric, error) {
	if !actor.CanInputWeekly {
		return WeeklyMetric{}, ErrWeeklyNotAllowed
	}
	if _, err := period.ParseWeekKey(weekKey); err != nil {
		return WeeklyMetric{}, err
	}
	if err := ValidateWeekly(metric); err != nil {
		return WeeklyMetric{}, err
	}
	metric.WeekKey = weekKey
	metric.UserID = actor.ID
	metric.UpdatedAt = stamp(s.now())

	saved, err := s.store.SaveWeeklyMetric(ctx, metric)
	if err != nil {
		return WeeklyMetric{}, fmt.Errorf("save weekly metric %s: %w", weekKey, err)
	}
	log.Info().Str("weekKey", weekKey).Int("userId", actor.ID).Msg("weekly metric saved")
	return saved, nil
}

func (s *Service) ListMonthly(ctx context.Context) ([]MonthlyMetric, error) {
	list, err := s.store.ListMonthlyMetrics(ctx)
	if err != nil {
		return nil, err
	}
	SortMonthly(list)
	return list, nil
}

func (s *Service) GetMonthly(ctx context.Context, monthKey string) (MonthlyMetric, error) {
	list, err := s.store.ListMonthlyMetrics(ctx)
	if err != nil {
		return MonthlyMetric{}, err
	}
	for _, m := range list {
		if m.MonthKey == monthKey {
			return m, nil
		}
	}
	return MonthlyMetric{}, ErrNotFound
}

func (s *Service) SaveMonthly(ctx context.Context, actor roster.Employee, monthKey string, metric MonthlyMetric) (MonthlyMetric, error) {
	if !actor.CanInputMonthly {
		return MonthlyMetric{}, ErrMonthlyNotAllowed
	}
	if _, err := period.ParseMonthKey(monthKey); err != nil {
		return MonthlyMetric{}, err
	}
	if err := ValidateMonthly(metric); err != nil {
		return MonthlyMetric{}, err
	}
	metric.MonthKey = monthKey
	metric.UserID = actor.ID
	metric.UpdatedAt = stamp(s.now())
	metric = DeriveMonthly(metric)

	saved, err := s.store.SaveMonthlyMetric(ctx, metric)
	if err != nil {
		return MonthlyMetric{}, fmt.Errorf("save monthly metric %s: %w", monthKey, err)
	}
	log.Info().Str("monthKey", monthKey).Int("userId", actor.ID).Msg("monthly metric saved")
	return saved, nil
}
