package engagement

import (
	"math"
	"time"

	"github.com/google/uuid"

	"salesboard/internal/domain/roster"
)

// ExpectationPolicy returns how many ratings an employee should receive in a week.
type ExpectationPolicy func(emp roster.Employee) int

// FixedExpectation expects four peer ratings plus one self rating when allowed,
// independent of how many evaluators the roster currently has.
func FixedExpectation(emp roster.Employee) int {
	if emp.CanSelfEvaluate {
		return PeerRatingsExpected + SelfRatingExpected
	}
	return PeerRatingsExpected
}

// RosterExpectation derives the expected count from the evaluators actually on
// the roster: every other evaluator, plus the employee when self rating is allowed.
func RosterExpectation(employees []roster.Employee) ExpectationPolicy {
	evaluators := map[int]bool{}
	for _, emp := range employees {
		if emp.CanEvaluate {
			evaluators[emp.ID] = true
		}
	}
	return func(emp roster.Employee) int {
		expected := len(evaluators)
		if evaluators[emp.ID] {
			expected--
		}
		if emp.CanSelfEvaluate {
			expected += SelfRatingExpected
		}
		return expected
	}
}

// SummarizeWeek aggregates ratings for weekKey under the fixed expectation policy.
func SummarizeWeek(weekKey string, ratings []Rating, employees []roster.Employee) []Summary {
	return Summarize(weekKey, ratings, employees, FixedExpectation)
}

// Summarize emits one Summary per employee in roster order. Ratings for other
// weeks and ratings of employees missing from the roster are ignored. Scores are
// trusted to be in range already.
func Summarize(weekKey string, ratings []Rating, employees []roster.Employee, expect ExpectationPolicy) []Summary {
	if expect == nil {
		expect = FixedExpectation
	}

	type tally struct {
		sum   int
		count int
	}
	received := make(map[int]*tally, len(employees))
	for _, emp := range employees {
		received[emp.ID] = &tally{}
	}
	for _, r := range ratings {
		if r.WeekKey != weekKey {
			continue
		}
		if t, ok := received[r.EvaluatedID]; ok {
			t.sum += r.Score
			t.count++
		}
	}

	summaries := make([]Summary, 0, len(employees))
	for _, emp := range employees {
		t := received[emp.ID]
		expected := expect(emp)
		summary := Summary{
			EmployeeID:      emp.ID,
			EmployeeName:    emp.Name,
			RatingsReceived: t.count,
			ExpectedRatings: expected,
			RatingsMissing:  max(0, expected-t.count),
		}
		if t.count > 0 {
			summary.AverageScore = Round2(float64(t.sum) / float64(t.count))
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func TotalMissing(summaries []Summary) int {
	total := 0
	for _, s := range summaries {
		total += s.RatingsMissing
	}
	return total
}

func BuildWeekReport(weekKey string, summaries []Summary) WeekReport {
	report := WeekReport{WeekKey: weekKey, Summaries: summaries}
	for _, s := range summaries {
		report.TotalExpected += s.ExpectedRatings
		report.TotalReceived += min(s.RatingsReceived, s.ExpectedRatings)
	}
	report.TotalMissing = TotalMissing(summaries)
	return report
}

// UpsertRating returns a copy of existing where the entry matching next's key
// carries next's score. A new entry gets a fresh ID and is appended; a matching
// entry keeps its ID and position.
func UpsertRating(existing []Rating, next Rating) []Rating {
	out := make([]Rating, len(existing), len(existing)+1)
	copy(out, existing)

	key := next.Key()
	for i := range out {
		if out[i].Key() == key {
			out[i].Score = next.Score
			out[i].UpdatedAt = next.UpdatedAt
			return out
		}
	}

	next.ID = uuid.NewString()
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = time.Now().UTC()
	}
	return append(out, next)
}

func FindRating(ratings []Rating, key Key) (Rating, bool) {
	for _, r := range ratings {
		if r.Key() == key {
			return r, true
		}
	}
	return Rating{}, false
}

func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return ValidationError{Field: "score", Value: score, Message: "must be between 0 and 100", Err: ErrScoreOutOfRange}
	}
	return nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
