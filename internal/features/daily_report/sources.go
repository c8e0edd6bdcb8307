package daily_report

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"broker-crm/internal/features/record"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// source reads one activity section from a record collection. Records are
// selected by dateField falling within the report day.
type source struct {
	title      string
	collection string
	dateField  string
	item       func(rec record.Record, f *formatter) Item
}

var sources = []source{
	{
		title:      "New Leads",
		collection: record.CollectionLeads,
		dateField:  "created_at",
		item: func(rec record.Record, f *formatter) Item {
			return Item{
				Text: joinNonEmpty(personName(rec), rec.String("source"), f.money(rec["loan_amount"])),
				Note: rec.String("notes"),
			}
		},
	},
	{
		title:      "Calls",
		collection: record.CollectionCallLogs,
		dateField:  "call_time",
		item: func(rec record.Record, f *formatter) Item {
			return Item{
				Text: joinNonEmpty(f.clock(rec["call_time"]), rec.String("contact_name"), rec.String("direction"), rec.String("outcome")),
				Note: rec.String("summary"),
			}
		},
	},
	{
		title:      "Tasks Due",
		collection: record.CollectionTasks,
		dateField:  "due_date",
		item: func(rec record.Record, f *formatter) Item {
			return Item{
				Text: joinNonEmpty(rec.String("title"), rec.String("assigned_to"), rec.String("status")),
				Note: rec.String("description"),
			}
		},
	},
	{
		title:      "Closings",
		collection: record.CollectionClosings,
		dateField:  "closing_date",
		item: func(rec record.Record, f *formatter) Item {
			return Item{
				Text: joinNonEmpty(rec.String("borrower_name"), rec.String("property_address"), f.money(rec["loan_amount"])),
				Note: rec.String("notes"),
			}
		},
	},
}

const rateDateField = "effective_date"

// formatter renders figures the way the office reads them.
type formatter struct {
	p   *message.Printer
	loc *time.Location
}

func newFormatter(loc *time.Location) *formatter {
	return &formatter{p: message.NewPrinter(language.AmericanEnglish), loc: loc}
}

func (f *formatter) money(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	n, ok := number(v)
	if !ok {
		return ""
	}
	return f.p.Sprintf("$%d", int64(math.Round(n)))
}

func (f *formatter) percent(v any) string {
	n, ok := number(v)
	if !ok {
		return record.Stringify(v)
	}
	return strconv.FormatFloat(n, 'f', 3, 64) + "%"
}

func (f *formatter) decimal(v any) string {
	n, ok := number(v)
	if !ok {
		return record.Stringify(v)
	}
	return strconv.FormatFloat(n, 'f', 3, 64)
}

func (f *formatter) signed(v any) string {
	n, ok := number(v)
	if !ok {
		return record.Stringify(v)
	}
	return fmt.Sprintf("%+.3f", n)
}

func (f *formatter) clock(v any) string {
	switch t := v.(type) {
	case time.Time:
		return t.In(f.loc).Format("3:04 PM")
	case primitive.DateTime:
		return t.Time().In(f.loc).Format("3:04 PM")
	default:
		return ""
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case primitive.Decimal128:
		f, err := strconv.ParseFloat(n.String(), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func personName(rec record.Record) string {
	if name := rec.String("name"); name != "" {
		return name
	}
	return joinWith(" ", rec.String("first_name"), rec.String("last_name"))
}

func joinNonEmpty(parts ...string) string {
	return joinWith(" | ", parts...)
}

func joinWith(sep string, parts ...string) string {
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

func rateRow(rec record.Record, f *formatter) RateRow {
	return RateRow{
		Product: rec.String("product"),
		Rate:    f.percent(rec["rate"]),
		APR:     f.percent(rec["apr"]),
		Points:  f.decimal(rec["points"]),
		Change:  f.signed(rec["change"]),
	}
}
