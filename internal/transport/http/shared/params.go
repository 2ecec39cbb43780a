package shared

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"salesboard/internal/domain/period"
)

// WeekParam returns the URL parameter name when it is a valid week key.
func WeekParam(r *http.Request, name string) (string, bool) {
	key := chi.URLParam(r, name)
	if _, err := period.ParseWeekKey(key); err != nil {
		return "", false
	}
	return key, true
}

func MonthParam(r *http.Request, name string) (string, bool) {
	key := chi.URLParam(r, name)
	if _, err := period.ParseMonthKey(key); err != nil {
		return "", false
	}
	return key, true
}

// IntQuery reads an integer query value, falling back to def when absent or
// malformed and clamping to [minValue, maxValue].
func IntQuery(r *http.Request, key string, def, minValue, maxValue int) int {
	value := def
	if raw := r.URL.Query().Get(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			value = v
		}
	}
	if value < minValue {
		value = minValue
	}
	if maxValue > 0 && value > maxValue {
		value = maxValue
	}
	return value
}
