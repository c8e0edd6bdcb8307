package daily_report

import (
	"fmt"

	"broker-crm/pkg/pdfdoc"

	"github.com/xuri/excelize/v2"
)

// Column offsets of the rates table.
var rateColumns = []float64{pdfdoc.MarginLeft, 270, 350, 430, 500}

// RenderPDF lays the report out on Letter pages using the report low-water mark.
func RenderPDF(report *DailyReport) ([]byte, error) {
	l := pdfdoc.New(pdfdoc.ReportLowWater)

	l.Title("Daily Report")
	sub := report.Date.Format("Monday, January 2, 2006")
	if report.Brokerage != "" {
		sub = report.Brokerage + " | " + sub
	}
	l.Styled(sub, pdfdoc.MutedStyle)
	l.Rule()

	l.KeyValue("New leads", fmt.Sprint(report.Summary.NewLeads))
	l.KeyValue("Calls", fmt.Sprint(report.Summary.Calls))
	l.KeyValue("Tasks due", fmt.Sprint(report.Summary.TasksDue))
	l.KeyValue("Closings", fmt.Sprintf("%d (%s)", report.Summary.Closings, report.Summary.ClosingVolume))
	l.Gap(pdfdoc.SectionGap)

	drawRates(l, report.Rates)

	for _, section := range report.Sections {
		items := make([]pdfdoc.Item, 0, len(section.Items))
		for _, it := range section.Items {
			items = append(items, pdfdoc.Item{Text: it.Text, Note: it.Note})
		}
		l.Section(section.Title, items)
	}

	return pdfdoc.Render(l, pdfdoc.Meta{
		Title:     "Daily Report " + report.Day(),
		Author:    report.Brokerage,
		Subject:   "Rates and activity",
		CreatedAt: report.Date,
	})
}

func drawRates(l *pdfdoc.Layout, rates []RateRow) {
	// header, column titles and the first row stay together
	l.EnsureSpace(pdfdoc.HeaderHeight + 2*pdfdoc.LineHeight)
	l.Styled("Rates", pdfdoc.HeaderStyle)
	l.Row(rateCells(pdfdoc.BoldStyle, "Product", "Rate", "APR", "Points", "Change")...)
	if len(rates) == 0 {
		l.Styled("None", pdfdoc.MutedStyle)
	}
	for _, r := range rates {
		l.Row(rateCells(pdfdoc.BodyStyle, r.Product, r.Rate, r.APR, r.Points, r.Change)...)
	}
	l.Gap(pdfdoc.SectionGap)
}

func rateCells(style pdfdoc.Style, values ...string) []pdfdoc.Cell {
	cells := make([]pdfdoc.Cell, len(values))
	for i, v := range values {
		cells[i] = pdfdoc.Cell{X: rateColumns[i], Text: v, Style: style}
	}
	return cells
}

// RenderXLSX exports the report as a workbook with Summary, Rates and
// Activity sheets.
func RenderXLSX(report *DailyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Summary"); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	summary := [][]any{
		{"Date", report.Day()},
		{"Brokerage", report.Brokerage},
		{"New leads", report.Summary.NewLeads},
		{"Calls", report.Summary.Calls},
		{"Tasks due", report.Summary.TasksDue},
		{"Closings", report.Summary.Closings},
		{"Closing volume", report.Summary.ClosingVolume},
	}
	if err := writeRows(f, "Summary", nil, summary, headerStyle); err != nil {
		return nil, err
	}

	rates := make([][]any, 0, len(report.Rates))
	for _, r := range report.Rates {
		rates = append(rates, []any{r.Product, r.Rate, r.APR, r.Points, r.Change})
	}
	if _, err := f.NewSheet("Rates"); err != nil {
		return nil, err
	}
	if err := writeRows(f, "Rates", []string{"Product", "Rate", "APR", "Points", "Change"}, rates, headerStyle); err != nil {
		return nil, err
	}

	var activity [][]any
	for _, section := range report.Sections {
		for _, it := range section.Items {
			activity = append(activity, []any{section.Title, it.Text, it.Note})
		}
	}
	if _, err := f.NewSheet("Activity"); err != nil {
		return nil, err
	}
	if err := writeRows(f, "Activity", []string{"Section", "Item", "Note"}, activity, headerStyle); err != nil {
		return nil, err
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, header []string, rows [][]any, headerStyle int) error {
	start := 1
	if len(header) > 0 {
		for i, h := range header {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
				return err
			}
		}
		start = 2
	}

	width := len(header)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+start)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		if len(row) > width {
			width = len(row)
		}
	}

	for i := 0; i < width; i++ {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, 24); err != nil {
			return err
		}
	}
	return nil
}
