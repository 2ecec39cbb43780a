package metrics

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	ErrWeeklyNotAllowed  = errors.New("employee is not allowed to enter weekly metrics")
	ErrMonthlyNotAllowed = errors.New("employee is not allowed to enter monthly metrics")
	ErrNegativeValue     = errors.New("metric values must not be negative")
	ErrNotFound          = errors.New("metric not found")
)

// DeriveMonthly fills the per-deal ratios, rounded to two decimals.
func DeriveMonthly(m MonthlyMetric) MonthlyMetric {
	m.TonsPerDeal = 0
	m.MPPerDeal = 0
	if m.DealsCount > 0 {
		m.TonsPerDeal = round2(m.TonsCount / float64(m.DealsCount))
		m.MPPerDeal = round2(m.MP / float64(m.DealsCount))
	}
	return m
}

func ValidateWeekly(m WeeklyMetric) error {
	if m.LeadsCount < 0 || m.DealsCount < 0 || m.MP < 0 || m.TonsCount < 0 ||
		m.DealsInNegotiation < 0 || m.BuyersCount < 0 || m.SuppliersCount < 0 || m.LeadsProcessed < 0 {
		return ErrNegativeValue
	}
	return nil
}

func ValidateMonthly(m MonthlyMetric) error {
	if m.Revenue < 0 || m.NetProfit < 0 || m.SK < 0 || m.MP < 0 || m.TonsCount < 0 || m.DealsCount < 0 {
		return ErrNegativeValue
	}
	return nil
}

// UpsertWeekly replaces the entry for next.WeekKey, keeping its ID and position,
// or appends next with a fresh ID.
func UpsertWeekly(existing []WeeklyMetric, next WeeklyMetric) []WeeklyMetric {
	out := make([]WeeklyMetric, len(existing), len(existing)+1)
	copy(out, existing)
	for i := range out {
		if out[i].WeekKey == next.WeekKey {
			next.ID = out[i].ID
			out[i] = next
			return out
		}
	}
	next.ID = uuid.NewString()
	return append(out, next)
}

func UpsertMonthly(existing []MonthlyMetric, next MonthlyMetric) []MonthlyMetric {
	out := make([]MonthlyMetric, len(existing), len(existing)+1)
	copy(out, existing)
	for i := range out {
		if out[i].MonthKey == next.MonthKey {
			next.ID = out[i].ID
			out[i] = next
			return out
		}
	}
	next.ID = uuid.NewString()
	return append(out, next)
}

func SortWeekly(list []WeeklyMetric) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].WeekKey < list[j].WeekKey })
}

func SortMonthly(list []MonthlyMetric) {
	sort.SliceStable(list, func(i, j int) bool { return list[i].MonthKey < list[j].MonthKey })
}

// LatestWeekly returns the entry with the greatest week key.
func LatestWeekly(list []WeeklyMetric) (WeeklyMetric, bool) {
	if len(list) == 0 {
		return WeeklyMetric{}, false
	}
	latest := list[0]
	for _, m := range list[1:] {
		if m.WeekKey > latest.WeekKey {
			latest = m
		}
	}
	return latest, true
}

func LatestMonthly(list []MonthlyMetric) (MonthlyMetric, bool) {
	if len(list) == 0 {
		return MonthlyMetric{}, false
	}
	latest := list[0]
	for _, m := range list[1:] {
		if m.MonthKey > latest.MonthKey {
			latest = m
		}
	}
	return latest, true
}

func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
