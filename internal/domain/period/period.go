// Package period converts between timestamps and the week and month keys
// that partition weekly metrics, monthly metrics and engagement ratings.
package period

import (
	"errors"
	"time"
)

const (
	WeekLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	ErrInvalidWeekKey  = errors.New("week key must be a Monday in YYYY-MM-DD format")
	ErrInvalidMonthKey = errors.New("month key must be in YYYY-MM format")
)

// WeekStart returns Monday 00:00 of the ISO week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -offset)
}

func WeekKey(t time.Time) string {
	return WeekStart(t).Format(WeekLayout)
}

func MonthKey(t time.Time) string {
	return t.Format(MonthLayout)
}

func ParseWeekKey(key string) (time.Time, error) {
	parsed, err := time.Parse(WeekLayout, key)
	if err != nil || parsed.Weekday() != time.Monday {
		return time.Time{}, ErrInvalidWeekKey
	}
	return parsed, nil
}

func ParseMonthKey(key string) (time.Time, error) {
	parsed, err := time.Parse(MonthLayout, key)
	if err != nil {
		return time.Time{}, ErrInvalidMonthKey
	}
	return parsed, nil
}

// RecentWeeks lists n week keys ending with the week of now, newest first.
func RecentWeeks(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	start := WeekStart(now)
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, start.AddDate(0, 0, -7*i).Format(WeekLayout))
	}
	return keys
}

// RecentMonths lists n month keys ending with the month of now, newest first.
func RecentMonths(now time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	keys := make([]string, 0, n)
	for i := 0; i < n; i++ {
		keys = append(keys, first.AddDate(0, -i, 0).Format(MonthLayout))
	}
	return keys
}
