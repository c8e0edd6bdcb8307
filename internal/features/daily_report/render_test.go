package daily_report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"broker-crm/pkg/pdfdoc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport(leads int) *DailyReport {
	report := &DailyReport{
		Date:      time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC),
		Brokerage: "Lone Star Lending",
		Summary:   Summary{NewLeads: leads, ClosingVolume: "$0"},
		Rates:     []RateRow{{Product: "30-Year Fixed", Rate: "6.375%", APR: "6.512%", Points: "0.500", Change: "-0.125"}},
		Sections: []ActivitySection{
			{Title: "New Leads"},
			{Title: "Calls", Items: []Item{}},
		},
	}
	for i := 0; i < leads; i++ {
		report.Sections[0].Items = append(report.Sections[0].Items, Item{
			Text: fmt.Sprintf("Lead %d | Web", i+1),
			Note: "Asked about first-time buyer programs and whether gift funds can cover the down payment",
		})
	}
	return report
}

func TestRenderPDF(t *testing.T) {
	t.Run("single page", func(t *testing.T) {
		data, err := RenderPDF(sampleReport(3))
		require.NoError(t, err)
		require.NoError(t, pdfdoc.Validate(data, 1))
	})

	t.Run("long sections continue on new pages", func(t *testing.T) {
		data, err := RenderPDF(sampleReport(60))
		require.NoError(t, err)
		require.NoError(t, pdfdoc.Validate(data, 0))
		assert.Greater(t, bytes.Count(data, []byte("/Type /Page\n")), 1)
	})
}

func TestRenderXLSX(t *testing.T) {
	data, err := RenderXLSX(sampleReport(2))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Rates", "Activity"}, f.GetSheetList())

	rates, err := f.GetRows("Rates")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Product", "Rate", "APR", "Points", "Change"},
		{"30-Year Fixed", "6.375%", "6.512%", "0.500", "-0.125"},
	}, rates)

	activity, err := f.GetRows("Activity")
	require.NoError(t, err)
	require.Len(t, activity, 3)
	assert.Equal(t, "New Leads", activity[1][0])
	assert.Equal(t, "Lead 1 | Web", activity[1][1])

	date, err := f.GetCellValue("Summary", "B1")
	require.NoError(t, err)
	assert.Equal(t, "2026-04-15", date)
}
