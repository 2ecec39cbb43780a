package dashboard

import (
	"context"
	"time"

	"salesboard/internal/domain/auth"
	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/domain/period"
)

// Tiles reports which input forms the session may open.
type Tiles struct {
	WeeklyInput     bool `json:"weeklyInput"`
	MonthlyInput    bool `json:"monthlyInput"`
	EngagementInput bool `json:"engagementInput"`
}

type Counts struct {
	WeeklyMetrics     int `json:"weeklyMetrics"`
	MonthlyMetrics    int `json:"monthlyMetrics"`
	EngagementRatings int `json:"engagementRatings"`
}

type Overview struct {
	CurrentWeek     string                 `json:"currentWeek"`
	CurrentMonth    string                 `json:"currentMonth"`
	MissingRatings  int                    `json:"missingRatings"`
	ExpectedRatings int                    `json:"expectedRatings"`
	ReceivedRatings int                    `json:"receivedRatings"`
	MyRatingsGiven  int                    `json:"myRatingsGiven"`
	LatestWeekly    *metrics.WeeklyMetric  `json:"latestWeekly,omitempty"`
	LatestMonthly   *metrics.MonthlyMetric `json:"latestMonthly,omitempty"`
	Counts          Counts                 `json:"counts"`
	Tiles           Tiles                  `json:"tiles"`
}

type Service struct {
	engagement *engagement.Service
	metrics    *metrics.Service
	loc        *time.Location
}

func NewService(eng *engagement.Service, met *metrics.Service, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{engagement: eng, metrics: met, loc: loc}
}

func (s *Service) Overview(ctx context.Context, session auth.Session, now time.Time) (Overview, error) {
	now = now.In(s.loc)
	emp := session.Employee
	out := Overview{
		CurrentWeek:  period.WeekKey(now),
		CurrentMonth: period.MonthKey(now),
		Tiles: Tiles{
			WeeklyInput:     emp.CanInputWeekly,
			MonthlyInput:    emp.CanInputMonthly,
			EngagementInput: emp.CanEvaluate,
		},
	}

	report, err := s.engagement.WeekSummary(ctx, out.CurrentWeek)
	if err != nil {
		return Overview{}, err
	}
	out.MissingRatings = report.TotalMissing
	out.ExpectedRatings = report.TotalExpected
	out.ReceivedRatings = report.TotalReceived

	mine, err := s.engagement.MyRatings(ctx, emp.ID, out.CurrentWeek)
	if err != nil {
		return Overview{}, err
	}
	out.MyRatingsGiven = len(mine)

	weekly, err := s.metrics.ListWeekly(ctx)
	if err != nil {
		return Overview{}, err
	}
	if latest, ok := metrics.LatestWeekly(weekly); ok {
		out.LatestWeekly = &latest
	}

	monthly, err := s.metrics.ListMonthly(ctx)
	if err != nil {
		return Overview{}, err
	}
	if latest, ok := metrics.LatestMonthly(monthly); ok {
		out.LatestMonthly = &latest
	}

	ratings, err := s.engagement.AllRatings(ctx)
	if err != nil {
		return Overview{}, err
	}
	out.Counts = Counts{
		WeeklyMetrics:     len(weekly),
		MonthlyMetrics:    len(monthly),
		EngagementRatings: len(ratings),
	}
	return out, nil
}
