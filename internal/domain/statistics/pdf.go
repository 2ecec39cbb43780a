package statistics

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/period"
)

const reportFont = "report"

// WeekReportPDF renders the engagement table for weekKey on one A4 page.
func (s *Service) WeekReportPDF(ctx context.Context, weekKey string, now time.Time) ([]byte, string, error) {
	if _, err := period.ParseWeekKey(weekKey); err != nil {
		return nil, "", err
	}
	report, err := s.engagement.WeekSummary(ctx, weekKey)
	if err != nil {
		return nil, "", err
	}
	data, err := RenderWeekReport(report, now.In(s.opts.Location), s.opts.PDFFontPath)
	if err != nil {
		return nil, "", err
	}
	return data, ReportFilename(weekKey), nil
}

func ReportFilename(weekKey string) string {
	return fmt.Sprintf("engagement-%s.pdf", weekKey)
}

// RenderWeekReport draws report with the UTF-8 font at fontPath, or with
// Helvetica and transliterated names when fontPath is empty.
func RenderWeekReport(report engagement.WeekReport, generated time.Time, fontPath string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	text := transliterate
	if fontPath != "" {
		pdf.AddUTF8Font(reportFont, "", fontPath)
		pdf.AddUTF8Font(reportFont, "B", fontPath)
		family = reportFont
		text = func(s string) string { return s }
	}
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Engagement report, week of %s", report.WeekKey))
	pdf.Ln(10)
	pdf.SetFont(family, "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated %s", generated.Format("2006-01-02 15:04")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Ratings received %d of %d, missing %d", report.TotalReceived, report.TotalExpected, report.TotalMissing))
	pdf.Ln(10)

	widths := []float64{70, 30, 30, 30, 30}
	headers := []string{"Employee", "Average", "Received", "Expected", "Missing"}
	pdf.SetFont(family, "B", 11)
	pdf.SetFillColor(220, 230, 241)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(family, "", 11)
	for _, s := range report.Summaries {
		pdf.CellFormat(widths[0], 8, text(s.EmployeeName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%.2f", s.AverageScore), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, fmt.Sprintf("%d", s.RatingsReceived), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, fmt.Sprintf("%d", s.ExpectedRatings), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 8, fmt.Sprintf("%d", s.RatingsMissing), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var cyrillicLatin = map[rune]string{
	'а': "a", 'б': "b", 'в': "v", 'г': "g", 'д': "d", 'е': "e", 'ё': "e", 'ж': "zh",
	'з': "z", 'и': "i", 'й': "y", 'к': "k", 'л': "l", 'м': "m", 'н': "n", 'о': "o",
	'п': "p", 'р': "r", 'с': "s", 'т': "t", 'у': "u", 'ф': "f", 'х': "kh", 'ц': "ts",
	'ч': "ch", 'ш': "sh", 'щ': "shch", 'ъ': "", 'ы': "y", 'ь': "", 'э': "e", 'ю': "yu",
	'я': "ya",
}

// transliterate maps Cyrillic to Latin for the built-in PDF fonts, which only
// cover Windows-1252. Other non-ASCII runes become '?'.
func transliterate(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
			continue
		}
		lower := []rune(strings.ToLower(string(r)))[0]
		latin, ok := cyrillicLatin[lower]
		if !ok {
			b.WriteByte('?')
			continue
		}
		if lower != r && latin != "" {
			latin = strings.ToUpper(latin[:1]) + latin[1:]
		}
		b.WriteString(latin)
	}
	return b.String()
}
