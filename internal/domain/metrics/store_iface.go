package metrics

import "context"

type StoreAPI interface {
	ListWeeklyMetrics(ctx context.Context) ([]WeeklyMetric, error)
	SaveWeeklyMetric(ctx context.Context, metric WeeklyMetric) (WeeklyMetric, error)
	ListMonthlyMetrics(ctx context.Context) ([]MonthlyMetric, error)
	SaveMonthlyMetric(ctx context.Context, metric MonthlyMetric) (MonthlyMetric, error)
}
