// Package storage defines the persistence contract shared by every backend.
// Exactly one backend is selected at startup; all of them enforce upsert on the
// natural keys so callers never see duplicates.
package storage

import (
	"context"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
)

type Store interface {
	engagement.StoreAPI
	metrics.StoreAPI
	// Reset drops every rating and metric.
	Reset(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Snapshot is the full data set, used by exports and the memory backend file.
type Snapshot struct {
	WeeklyMetrics     []metrics.WeeklyMetric  `json:"weeklyMetrics"`
	MonthlyMetrics    []metrics.MonthlyMetric `json:"monthlyMetrics"`
	EngagementRatings []engagement.Rating     `json:"engagementRatings"`
}
