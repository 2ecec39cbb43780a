package statistics

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/domain/roster"
	"salesboard/internal/storage/memory"
)

type fixture struct {
	svc *Service
	eng *engagement.Service
	met *metrics.Service
	r   *roster.Roster
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memory.New()
	r := roster.Default()
	eng := engagement.NewService(store, r, engagement.FixedExpectation)
	met := metrics.NewService(store)
	svc := NewService(eng, met, Options{HistoryWeeks: 4, HistoryMonths: 3, Location: time.UTC})
	return fixture{svc: svc, eng: eng, met: met, r: r}
}

func (f fixture) employee(t *testing.T, id int) roster.Employee {
	t.Helper()
	emp, err := f.r.ByID(id)
	if err != nil {
		t.Fatalf("employee %d: %v", id, err)
	}
	return emp
}

func TestChartsWindowAndOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	pavel := f.employee(t, 2)
	venera := f.employee(t, 6)

	for _, week := range []string{"2025-03-10", "2025-01-06", "2025-02-24"} {
		if _, err := f.met.SaveWeekly(ctx, pavel, week, metrics.WeeklyMetric{BuyersCount: 3}); err != nil {
			t.Fatalf("weekly: %v", err)
		}
	}
	for _, month := range []string{"2025-03", "2024-11", "2025-01"} {
		if _, err := f.met.SaveMonthly(ctx, venera, month, metrics.MonthlyMetric{Revenue: 10, TonsCount: 9, DealsCount: 3}); err != nil {
			t.Fatalf("monthly: %v", err)
		}
	}
	if _, err := f.eng.SubmitRatings(ctx, pavel, "2025-03-03", []engagement.ScoreInput{{EvaluatedID: 1, Score: 70}}); err != nil {
		t.Fatalf("ratings: %v", err)
	}

	charts, err := f.svc.Charts(ctx, now)
	if err != nil {
		t.Fatalf("charts: %v", err)
	}
	if got := charts.Weekly.Labels; len(got) != 2 || got[0] != "2025-02-24" || got[1] != "2025-03-10" {
		t.Fatalf("unexpected weekly labels %v", got)
	}
	if got := charts.Monthly.Labels; len(got) != 2 || got[0] != "2025-01" || got[1] != "2025-03" {
		t.Fatalf("unexpected monthly labels %v", got)
	}
	if charts.PerDeal.Series[0].Values[0] != 3 {
		t.Fatalf("unexpected tons per deal %v", charts.PerDeal.Series[0].Values)
	}

	eng := charts.Engagement
	if len(eng.Labels) != 4 || eng.Labels[0] != "2025-02-17" || eng.Labels[3] != "2025-03-10" {
		t.Fatalf("unexpected engagement labels %v", eng.Labels)
	}
	if len(eng.Series) != 6 || eng.Series[0].Label != "Мика" {
		t.Fatalf("expected one series per employee, got %d", len(eng.Series))
	}
	if eng.Series[0].Values[2] != 70 || eng.Series[0].Values[3] != 0 {
		t.Fatalf("unexpected engagement values %v", eng.Series[0].Values)
	}
}

func TestEngagementChartFailedWeekPlotsZero(t *testing.T) {
	employees := []roster.Employee{{ID: 1, Name: "A"}}
	reports := []engagement.WeekReport{
		{WeekKey: "2025-03-03", Error: "boom"},
		{WeekKey: "2025-03-10", Summaries: []engagement.Summary{{EmployeeID: 1, AverageScore: 55.5}}},
	}
	chart := EngagementChart(reports, employees)
	if chart.Series[0].Values[0] != 0 || chart.Series[0].Values[1] != 55.5 {
		t.Fatalf("unexpected values %v", chart.Series[0].Values)
	}
}

func TestExportBundle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	if _, err := f.eng.SubmitRatings(ctx, f.employee(t, 4), "2025-03-10", []engagement.ScoreInput{{EvaluatedID: 3, Score: 40}}); err != nil {
		t.Fatalf("ratings: %v", err)
	}

	bundle, err := f.svc.Export(ctx, now)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(bundle.Users) != 6 || len(bundle.EngagementRatings) != 1 || !bundle.ExportDate.Equal(now) {
		t.Fatalf("unexpected bundle %+v", bundle)
	}
	if bundle.WeeklyMetrics == nil || bundle.MonthlyMetrics == nil {
		t.Fatal("expected empty slices rather than nil for metrics")
	}
	if got := ExportFilename(now, "json"); got != "company-metrics-2025-03-12.json" {
		t.Fatalf("unexpected filename %q", got)
	}
}

func TestExportXLSX(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	if _, err := f.met.SaveWeekly(ctx, f.employee(t, 2), "2025-03-10", metrics.WeeklyMetric{LeadsCount: 7}); err != nil {
		t.Fatalf("weekly: %v", err)
	}

	buf, name, err := f.svc.ExportXLSX(ctx, now)
	if err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if name != "company-metrics-2025-03-12.xlsx" {
		t.Fatalf("unexpected name %q", name)
	}

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer book.Close()
	if sheets := book.GetSheetList(); len(sheets) != 3 || sheets[0] != sheetWeekly {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	value, err := book.GetCellValue(sheetWeekly, "C2")
	if err != nil || value != "7" {
		t.Fatalf("unexpected leads cell %q %v", value, err)
	}
	who, _ := book.GetCellValue(sheetWeekly, "B2")
	if who != "Павел" {
		t.Fatalf("unexpected author cell %q", who)
	}
}

func TestWeekReportPDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	data, name, err := f.svc.WeekReportPDF(ctx, "2025-03-10", time.Now())
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if name != "engagement-2025-03-10.pdf" || !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("unexpected pdf %q (%d bytes)", name, len(data))
	}
	if _, _, err := f.svc.WeekReportPDF(ctx, "2025-03-11", time.Now()); err == nil {
		t.Fatal("expected invalid week key to be rejected")
	}
}

func TestTransliterate(t *testing.T) {
	cases := map[string]string{
		"Павел":  "Pavel",
		"Дарья":  "Darya",
		"Андрей": "Andrey",
		"Mika":   "Mika",
	}
	for in, want := range cases {
		if got := transliterate(in); got != want {
			t.Fatalf("transliterate(%q) = %q, want %q", in, got, want)
		}
	}
}
