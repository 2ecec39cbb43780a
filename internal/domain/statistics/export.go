package statistics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"salesboard/internal/domain/engagement"
	"salesboard/internal/domain/metrics"
	"salesboard/internal/domain/roster"
)

var ErrExportGenerateFail = errors.New("failed to generate export file")

// Bundle is the full data download.
type Bundle struct {
	Users             []roster.Employee       `json:"users"`
	WeeklyMetrics     []metrics.WeeklyMetric  `json:"weeklyMetrics"`
	MonthlyMetrics    []metrics.MonthlyMetric `json:"monthlyMetrics"`
	EngagementRatings []engagement.Rating     `json:"engagementRatings"`
	ExportDate        time.Time               `json:"exportDate"`
}

func (s *Service) Export(ctx context.Context, now time.Time) (Bundle, error) {
	weekly, err := s.metrics.ListWeekly(ctx)
	if err != nil {
		return Bundle{}, err
	}
	monthly, err := s.metrics.ListMonthly(ctx)
	if err != nil {
		return Bundle{}, err
	}
	ratings, err := s.engagement.AllRatings(ctx)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Users:             s.engagement.Roster().Employees(),
		WeeklyMetrics:     weekly,
		MonthlyMetrics:    monthly,
		EngagementRatings: ratings,
		ExportDate:        now.UTC(),
	}, nil
}

// ExportFilename is the suggested download name for the export taken at now.
func ExportFilename(now time.Time, ext string) string {
	return fmt.Sprintf("company-metrics-%s.%s", now.Format("2006-01-02"), ext)
}

const (
	sheetWeekly     = "Weekly"
	sheetMonthly    = "Monthly"
	sheetEngagement = "Engagement"
)

// ExportXLSX renders the export bundle as a workbook with one sheet per data set.
func (s *Service) ExportXLSX(ctx context.Context, now time.Time) (*bytes.Buffer, string, error) {
	bundle, err := s.Export(ctx, now)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	names := map[int]string{}
	for _, u := range bundle.Users {
		names[u.ID] = u.Name
	}

	weeklyRows := make([][]any, 0, len(bundle.WeeklyMetrics))
	for _, m := range bundle.WeeklyMetrics {
		weeklyRows = append(weeklyRows, []any{
			m.WeekKey, names[m.UserID], m.LeadsCount, m.DealsCount, m.MP, m.TonsCount,
			m.DealsInNegotiation, m.BuyersCount, m.SuppliersCount, m.LeadsProcessed,
		})
	}
	monthlyRows := make([][]any, 0, len(bundle.MonthlyMetrics))
	for _, m := range bundle.MonthlyMetrics {
		monthlyRows = append(monthlyRows, []any{
			m.MonthKey, names[m.UserID], m.Revenue, m.NetProfit, m.SK, m.MP, m.TonsCount,
			m.DealsCount, m.TonsPerDeal, m.MPPerDeal,
		})
	}
	ratingRows := make([][]any, 0, len(bundle.EngagementRatings))
	for _, r := range bundle.EngagementRatings {
		ratingRows = append(ratingRows, []any{
			r.WeekKey, names[r.EvaluatorID], names[r.EvaluatedID], r.Score,
		})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{sheetWeekly, []string{"Week", "Entered by", "Leads", "Deals", "MP", "Tons", "In negotiation", "Buyers", "Suppliers", "Leads processed"}, weeklyRows},
		{sheetMonthly, []string{"Month", "Entered by", "Revenue", "Net profit", "SK", "MP", "Tons", "Deals", "Tons/deal", "MP/deal"}, monthlyRows},
		{sheetEngagement, []string{"Week", "Evaluator", "Evaluated", "Score"}, ratingRows},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return nil, "", err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, "", err
		}
		if err := writeSheet(f, sheet.name, sheet.headers, sheet.rows, headerStyle); err != nil {
			log.Error().Err(err).Str("sheet", sheet.name).Msg("xlsx sheet write failed")
			return nil, "", ErrExportGenerateFail
		}
	}
	f.SetActiveSheet(0)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		log.Error().Err(err).Msg("xlsx write failed")
		return nil, "", ErrExportGenerateFail
	}
	return buf, ExportFilename(now, "xlsx"), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cell(i, 1), h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, cell(0, 1), cell(len(headers)-1, 1), headerStyle); err != nil {
		return err
	}
	last, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		return err
	}
	for r, row := range rows {
		for c, value := range row {
			if err := f.SetCellValue(sheet, cell(c, r+2), value); err != nil {
				return err
			}
		}
	}
	return nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}
