// Package metrics counts HTTP traffic and domain events for /system/metrics.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	EventRatingsSubmitted = "ratings_submitted"
	EventMetricSaved      = "metric_saved"
	EventExport           = "export"
	EventReportArchived   = "report_archived"
	EventLoginFailed      = "login_failed"
)

type Collector struct {
	totalRequests   atomic.Uint64
	errorRequests   atomic.Uint64
	clientErrors    atomic.Uint64
	rateLimited     atomic.Uint64
	totalDurationMs atomic.Uint64
	startedAt       time.Time

	mu     sync.Mutex
	events map[string]uint64
}

type Snapshot struct {
	RequestsTotal    uint64            `json:"requestsTotal"`
	ErrorsTotal      uint64            `json:"errorsTotal"`
	ClientErrors     uint64            `json:"clientErrorsTotal"`
	RateLimitedTotal uint64            `json:"rateLimitedTotal"`
	AvgDurationMs    float64           `json:"avgDurationMs"`
	TotalDurationMs  uint64            `json:"totalDurationMs"`
	UptimeSeconds    int64             `json:"uptimeSeconds"`
	Events           map[string]uint64 `json:"events"`
}

func New() *Collector {
	return &Collector{startedAt: time.Now(), events: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.totalRequests.Add(1)
	switch {
	case status >= 500:
		c.errorRequests.Add(1)
	case status == 429:
		c.rateLimited.Add(1)
	case status >= 400:
		c.clientErrors.Add(1)
	}
	c.totalDurationMs.Add(uint64(duration.Milliseconds()))
}

// Inc bumps a named domain event counter. A nil collector is a no-op.
func (c *Collector) Inc(event string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.events[event]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	total := c.totalRequests.Load()
	totalMs := c.totalDurationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	events := make(map[string]uint64, len(c.events))
	for k, v := range c.events {
		events[k] = v
	}
	c.mu.Unlock()

	return Snapshot{
		RequestsTotal:    total,
		ErrorsTotal:      c.errorRequests.Load(),
		ClientErrors:     c.clientErrors.Load(),
		RateLimitedTotal: c.rateLimited.Load(),
		AvgDurationMs:    avg,
		TotalDurationMs:  totalMs,
		UptimeSeconds:    int64(time.Since(c.startedAt).Seconds()),
		Events:           events,
	}
}
