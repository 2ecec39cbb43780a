package engagement

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/period"
	"salesboard/internal/domain/roster"
)

type Service struct {
	store  StoreAPI
	roster *roster.Roster
	expect ExpectationPolicy
	now    func() time.Time
}

func NewService(store StoreAPI, r *roster.Roster, expect ExpectationPolicy) *Service {
	if expect == nil {
		expect = FixedExpectation
	}
	return &Service{store: store, roster: r, expect: expect, now: time.Now}
}

func (s *Service) Roster() *roster.Roster {
	return s.roster
}

// RateableEmployees lists who evaluator may rate, in roster order.
func (s *Service) RateableEmployees(evaluator roster.Employee) []roster.Employee {
	if !evaluator.CanEvaluate {
		return nil
	}
	var out []roster.Employee
	for _, emp := range s.roster.Employees() {
		if emp.ID == evaluator.ID && !evaluator.CanSelfEvaluate {
			continue
		}
		out = append(out, emp)
	}
	return out
}

// SubmitRatings validates the whole submission before writing any of it, then
// upserts one rating per score.
func (s *Service) SubmitRatings(ctx context.Context, evaluator roster.Employee, weekKey string, scores []ScoreInput) ([]Rating, error) {
	if !evaluator.CanEvaluate {
		return nil, ErrNotEvaluator
	}
	if _, err := period.ParseWeekKey(weekKey); err != nil {
		return nil, err
	}
	if len(scores) == 0 {
		return nil, ErrNoScores
	}

	seen := make(map[int]bool, len(scores))
	for _, in := range scores {
		if !s.roster.Contains(in.EvaluatedID) {
			return nil, ValidationError{Field: "evaluatedId", Value: in.EvaluatedID, Message: "not on the roster", Err: ErrUnknownEmployee}
		}
		if in.EvaluatedID == evaluator.ID && !evaluator.CanSelfEvaluate {
			return nil, ErrSelfEvaluationNotAllowed
		}
		if seen[in.EvaluatedID] {
			return nil, ValidationError{Field: "evaluatedId", Value: in.EvaluatedID, Message: "rated more than once", Err: ErrDuplicateEvaluated}
		}
		seen[in.EvaluatedID] = true
		if err := ValidateScore(in.Score); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	saved := make([]Rating, 0, len(scores))
	for _, in := range scores {
		rating, err := s.store.SaveRating(ctx, Rating{
			WeekKey:     weekKey,
			EvaluatorID: evaluator.ID,
			EvaluatedID: in.EvaluatedID,
			Score:       in.Score,
			UpdatedAt:   now,
		})
		if err != nil {
			return saved, fmt.Errorf("save rating for employee %d: %w", in.EvaluatedID, err)
		}
		saved = append(saved, rating)
	}
	log.Info().
		Str("weekKey", weekKey).
		Int("evaluatorId", evaluator.ID).
		Int("count", len(saved)).
		Msg("engagement ratings saved")
	return saved, nil
}

func (s *Service) WeekSummary(ctx context.Context, weekKey string) (WeekReport, error) {
	ratings, err := s.store.ListRatings(ctx, weekKey)
	if err != nil {
		return WeekReport{}, fmt.Errorf("list ratings for %s: %w", weekKey, err)
	}
	summaries := Summarize(weekKey, ratings, s.roster.Employees(), s.expect)
	return BuildWeekReport(weekKey, summaries), nil
}

// History summarizes each week independently; a failed week carries its error
// and leaves the remaining weeks intact.
func (s *Service) History(ctx context.Context, weekKeys []string) []WeekReport {
	reports := make([]WeekReport, 0, len(weekKeys))
	for _, key := range weekKeys {
		report, err := s.WeekSummary(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("weekKey", key).Msg("engagement history week failed")
			report = WeekReport{WeekKey: key, Error: err.Error()}
		}
		reports = append(reports, report)
	}
	return reports
}

// MyRatings returns the ratings evaluatorID gave during weekKey.
func (s *Service) MyRatings(ctx context.Context, evaluatorID int, weekKey string) ([]Rating, error) {
	ratings, err := s.store.ListRatings(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	out := []Rating{}
	for _, r := range ratings {
		if r.WeekKey == weekKey && r.EvaluatorID == evaluatorID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) AllRatings(ctx context.Context) ([]Rating, error) {
	return s.store.AllRatings(ctx)
}

// EvaluatorProgress is how many of the ratings an evaluator owes for a week
// have been given.
type EvaluatorProgress struct {
	Employee roster.Employee `json:"employee"`
	Given    int             `json:"given"`
	Owed     int             `json:"owed"`
}

func (p EvaluatorProgress) Outstanding() int {
	return max(p.Owed-p.Given, 0)
}

// Progress reports, per evaluator in roster order, ratings given for weekKey
// against the number of employees they may rate.
func (s *Service) Progress(ctx context.Context, weekKey string) ([]EvaluatorProgress, error) {
	ratings, err := s.store.ListRatings(ctx, weekKey)
	if err != nil {
		return nil, fmt.Errorf("list ratings for %s: %w", weekKey, err)
	}
	given := map[int]int{}
	for _, r := range ratings {
		if r.WeekKey == weekKey {
			given[r.EvaluatorID]++
		}
	}
	var out []EvaluatorProgress
	for _, evaluator := range s.roster.Evaluators() {
		out = append(out, EvaluatorProgress{
			Employee: evaluator,
			Given:    given[evaluator.ID],
			Owed:     len(s.RateableEmployees(evaluator)),
		})
	}
	return out, nil
}
