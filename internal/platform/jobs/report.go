package jobs

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/period"
	"salesboard/internal/domain/statistics"
	"salesboard/internal/platform/archive"
	"salesboard/internal/platform/email"
	"salesboard/internal/platform/metrics"
)

const JobWeeklyReport = "weekly_engagement_report"

// WeeklyReport summarizes the current week, logs who is still missing ratings,
// reminds evaluators with ratings outstanding, and archives the rendered PDF
// under reports/.
type WeeklyReport struct {
	Engagement *engagement.Service
	Statistics *statistics.Service
	Archive    archive.Archive
	Mailer     email.Mailer
	Metrics    *metrics.Collector
	Location   *time.Location
	Now        func() time.Time
}

type ReportResult struct {
	WeekKey       string         `json:"weekKey"`
	TotalMissing  int            `json:"totalMissing"`
	MissingByName map[string]int `json:"missingByName"`
	RemindersSent int            `json:"remindersSent"`
	ArchiveKey    string         `json:"archiveKey,omitempty"`
}

func (w WeeklyReport) Run(ctx context.Context) (any, error) {
	now := time.Now()
	if w.Now != nil {
		now = w.Now()
	}
	if w.Location != nil {
		now = now.In(w.Location)
	}
	weekKey := period.WeekKey(now)

	report, err := w.Engagement.WeekSummary(ctx, weekKey)
	if err != nil {
		return nil, err
	}
	result := ReportResult{WeekKey: weekKey, TotalMissing: report.TotalMissing, MissingByName: map[string]int{}}
	for _, s := range report.Summaries {
		if s.RatingsMissing == 0 {
			continue
		}
		result.MissingByName[s.EmployeeName] = s.RatingsMissing
		log.Info().
			Str("weekKey", weekKey).
			Int("employeeId", s.EmployeeID).
			Int("missing", s.RatingsMissing).
			Msg("engagement ratings outstanding")
	}

	if w.Mailer != nil {
		sent, err := w.remind(ctx, weekKey)
		if err != nil {
			log.Warn().Err(err).Str("weekKey", weekKey).Msg("engagement reminders failed")
		}
		result.RemindersSent = sent
	}

	if w.Archive == nil || w.Statistics == nil {
		return result, nil
	}
	data, name, err := w.Statistics.WeekReportPDF(ctx, weekKey, now)
	if err != nil {
		return result, err
	}
	key := "reports/" + name
	if err := w.Archive.Put(ctx, key, bytes.NewReader(data)); err != nil {
		return result, err
	}
	result.ArchiveKey = key
	w.Metrics.Inc(metrics.EventReportArchived)
	return result, nil
}

// remind mails every evaluator with an address who still owes ratings for
// weekKey. A failed send is logged and does not stop the others.
func (w WeeklyReport) remind(ctx context.Context, weekKey string) (int, error) {
	progress, err := w.Engagement.Progress(ctx, weekKey)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, p := range progress {
		if p.Outstanding() == 0 || p.Employee.Email == "" {
			continue
		}
		subject := "Engagement ratings for week " + weekKey
		if err := w.Mailer.Send(ctx, p.Employee.Email, subject, reminderBody(p, weekKey)); err != nil {
			log.Warn().Err(err).Int("employeeId", p.Employee.ID).Msg("reminder send failed")
			continue
		}
		sent++
	}
	return sent, nil
}

func reminderBody(p engagement.EvaluatorProgress, weekKey string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s,\n\n", p.Employee.Name)
	fmt.Fprintf(&b, "You have rated %d of %d colleagues for the week starting %s.\n", p.Given, p.Owed, weekKey)
	fmt.Fprintf(&b, "%d rating(s) are still outstanding.\n", p.Outstanding())
	return b.String()
}
