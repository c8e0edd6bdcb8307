package daily_report

import "time"

const DateLayout = "2006-01-02"

// RateRow is one product line of the day's rate sheet, formatted for print.
type RateRow struct {
	Product string `json:"product"`
	Rate    string `json:"rate"`
	APR     string `json:"apr"`
	Points  string `json:"points"`
	Change  string `json:"change"`
}

type Item struct {
	Text string `json:"text"`
	Note string `json:"note,omitempty"`
}

// ActivitySection is one enumerated list of the report, e.g. "New Leads".
type ActivitySection struct {
	Title string `json:"title"`
	Items []Item `json:"items"`
}

type Summary struct {
	NewLeads      int    `json:"new_leads"`
	Calls         int    `json:"calls"`
	TasksDue      int    `json:"tasks_due"`
	Closings      int    `json:"closings"`
	ClosingVolume string `json:"closing_volume"`
}

// DailyReport is the internal operations report for one calendar day.
type DailyReport struct {
	Date      time.Time         `json:"date"`
	Brokerage string            `json:"brokerage"`
	Summary   Summary           `json:"summary"`
	Rates     []RateRow         `json:"rates"`
	Sections  []ActivitySection `json:"sections"`
}

// Day returns the report date as YYYY-MM-DD.
func (r *DailyReport) Day() string {
	return r.Date.Format(DateLayout)
}

type SendRequest struct {
	Date       string   `json:"date"`
	Recipients []string `json:"recipients" validate:"omitempty,dive,email"`
}
