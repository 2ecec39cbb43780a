// Package statistics builds chart series, data exports and printable reports
// from stored metrics and engagement ratings.
package statistics

import (
	"context"
	"time"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/domain/period"
	"salesboard/internal/domain/roster"
)

type Options struct {
	HistoryWeeks  int
	HistoryMonths int
	Location      *time.Location
	PDFFontPath   string
}

type Service struct {
	engagement *engagement.Service
	metrics    *metrics.Service
	opts       Options
}

func NewService(eng *engagement.Service, met *metrics.Service, opts Options) *Service {
	if opts.HistoryWeeks <= 0 {
		opts.HistoryWeeks = 12
	}
	if opts.HistoryMonths <= 0 {
		opts.HistoryMonths = 12
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Service{engagement: eng, metrics: met, opts: opts}
}

type Series struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

type Chart struct {
	Labels []string `json:"labels"`
	Series []Series `json:"series"`
}

type Charts struct {
	Weekly      Chart     `json:"weekly"`
	Monthly     Chart     `json:"monthly"`
	PerDeal     Chart     `json:"perDeal"`
	Engagement  Chart     `json:"engagement"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Charts returns every series oldest first, limited to the configured history
// window ending at now.
func (s *Service) Charts(ctx context.Context, now time.Time) (Charts, error) {
	now = now.In(s.opts.Location)

	weekly, err := s.metrics.ListWeekly(ctx)
	if err != nil {
		return Charts{}, err
	}
	monthly, err := s.metrics.ListMonthly(ctx)
	if err != nil {
		return Charts{}, err
	}

	weeks := period.RecentWeeks(now, s.opts.HistoryWeeks)
	months := period.RecentMonths(now, s.opts.HistoryMonths)
	weekly = weeklyWindow(weekly, weeks[len(weeks)-1], weeks[0])
	monthly = monthlyWindow(monthly, months[len(months)-1], months[0])

	reverse(weeks)
	reports := s.engagement.History(ctx, weeks)

	return Charts{
		Weekly:      WeeklyChart(weekly),
		Monthly:     MonthlyChart(monthly),
		PerDeal:     PerDealChart(monthly),
		Engagement:  EngagementChart(reports, s.engagement.Roster().Employees()),
		GeneratedAt: now.UTC(),
	}, nil
}

func WeeklyChart(list []metrics.WeeklyMetric) Chart {
	sorted := append([]metrics.WeeklyMetric(nil), list...)
	metrics.SortWeekly(sorted)

	chart := Chart{
		Labels: make([]string, 0, len(sorted)),
		Series: []Series{
			{Label: "dealsInNegotiation"},
			{Label: "buyersCount"},
			{Label: "suppliersCount"},
			{Label: "leadsProcessed"},
		},
	}
	for _, m := range sorted {
		chart.Labels = append(chart.Labels, m.WeekKey)
		chart.Series[0].Values = append(chart.Series[0].Values, float64(m.DealsInNegotiation))
		chart.Series[1].Values = append(chart.Series[1].Values, float64(m.BuyersCount))
		chart.Series[2].Values = append(chart.Series[2].Values, float64(m.SuppliersCount))
		chart.Series[3].Values = append(chart.Series[3].Values, float64(m.LeadsProcessed))
	}
	return chart
}

func MonthlyChart(list []metrics.MonthlyMetric) Chart {
	sorted := append([]metrics.MonthlyMetric(nil), list...)
	metrics.SortMonthly(sorted)

	chart := Chart{
		Labels: make([]string, 0, len(sorted)),
		Series: []Series{{Label: "revenue"}, {Label: "netProfit"}},
	}
	for _, m := range sorted {
		chart.Labels = append(chart.Labels, m.MonthKey)
		chart.Series[0].Values = append(chart.Series[0].Values, m.Revenue)
		chart.Series[1].Values = append(chart.Series[1].Values, m.NetProfit)
	}
	return chart
}

func PerDealChart(list []metrics.MonthlyMetric) Chart {
	sorted := append([]metrics.MonthlyMetric(nil), list...)
	metrics.SortMonthly(sorted)

	chart := Chart{
		Labels: make([]string, 0, len(sorted)),
		Series: []Series{{Label: "tonsPerDeal"}, {Label: "mpPerDeal"}},
	}
	for _, m := range sorted {
		chart.Labels = append(chart.Labels, m.MonthKey)
		chart.Series[0].Values = append(chart.Series[0].Values, m.TonsPerDeal)
		chart.Series[1].Values = append(chart.Series[1].Values, m.MPPerDeal)
	}
	return chart
}

// EngagementChart has one series per employee. Weeks are taken in the order of
// reports; an employee without ratings in a week, or a failed week, plots 0.
func EngagementChart(reports []engagement.WeekReport, employees []roster.Employee) Chart {
	chart := Chart{Labels: make([]string, 0, len(reports))}
	index := make(map[int]int, len(employees))
	for i, emp := range employees {
		index[emp.ID] = i
		chart.Series = append(chart.Series, Series{Label: emp.Name, Values: make([]float64, len(reports))})
	}
	for w, report := range reports {
		chart.Labels = append(chart.Labels, report.WeekKey)
		for _, summary := range report.Summaries {
			if i, ok := index[summary.EmployeeID]; ok {
				chart.Series[i].Values[w] = summary.AverageScore
			}
		}
	}
	return chart
}

func weeklyWindow(list []metrics.WeeklyMetric, from, to string) []metrics.WeeklyMetric {
	out := make([]metrics.WeeklyMetric, 0, len(list))
	for _, m := range list {
		if m.WeekKey >= from && m.WeekKey <= to {
			out = append(out, m)
		}
	}
	return out
}

func monthlyWindow(list []metrics.MonthlyMetric, from, to string) []metrics.MonthlyMetric {
	out := make([]metrics.MonthlyMetric, 0, len(list))
	for _, m := range list {
		if m.MonthKey >= from && m.MonthKey <= to {
			out = append(out, m)
		}
	}
	return out
}

func reverse(keys []string) {
	for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
		keys[i], keys[j] = keys[j], keys[i]
	}
}
