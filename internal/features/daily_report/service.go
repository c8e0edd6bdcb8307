package daily_report

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/delivery"
	"broker-crm/internal/features/record"
	"broker-crm/internal/features/settings"
	"broker-crm/pkg/pdfdoc"
	"broker-crm/pkg/utils"

	"go.uber.org/zap"
)

type DailyReportService interface {
	Build(ctx context.Context, day time.Time) (*DailyReport, error)
	PDF(ctx context.Context, day time.Time) ([]byte, string, error)
	XLSX(ctx context.Context, day time.Time) ([]byte, string, error)
	Send(ctx context.Context, day time.Time, recipients []string) (*delivery.Email, error)
}

type DailyReportServiceImpl struct {
	Records      record.RecordService
	Settings     settings.SettingsService
	Delivery     delivery.DeliveryService
	AuditService audit.AuditService
	Logger       *zap.Logger
	Location     *time.Location
	PDFRenderer  func(report *DailyReport) ([]byte, error)
}

func NewDailyReportService(
	records record.RecordService,
	settingsService settings.SettingsService,
	deliveryService delivery.DeliveryService,
	auditService audit.AuditService,
	logger *zap.Logger,
) DailyReportService {
	return &DailyReportServiceImpl{
		Records:      records,
		Settings:     settingsService,
		Delivery:     deliveryService,
		AuditService: auditService,
		Logger:       logger,
		Location:     time.Local,
		PDFRenderer:  RenderPDF,
	}
}

// bounds returns [midnight, next midnight) of day in the service location.
func (s *DailyReportServiceImpl) bounds(day time.Time) (time.Time, time.Time) {
	d := day.In(s.Location)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, s.Location)
	return start, start.AddDate(0, 0, 1)
}

// Build gathers the day's rates and activity. A failing source fails the
// whole report; an empty source yields an empty section.
func (s *DailyReportServiceImpl) Build(ctx context.Context, day time.Time) (*DailyReport, error) {
	from, to := s.bounds(day)
	f := newFormatter(s.Location)

	report := &DailyReport{Date: from, Rates: []RateRow{}}
	if profile, err := s.Settings.GetBrokerageProfile(ctx); err == nil {
		report.Brokerage = profile.Name
	}

	rates, err := s.Records.RecordsBetween(ctx, record.CollectionRateSheet, rateDateField, from, to)
	if err != nil {
		return nil, fmt.Errorf("load rates: %w", err)
	}
	for _, rec := range rates {
		report.Rates = append(report.Rates, rateRow(rec, f))
	}

	for _, src := range sources {
		recs, err := s.Records.RecordsBetween(ctx, src.collection, src.dateField, from, to)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", src.collection, err)
		}
		section := ActivitySection{Title: src.title, Items: make([]Item, 0, len(recs))}
		for _, rec := range recs {
			section.Items = append(section.Items, src.item(rec, f))
		}
		report.Sections = append(report.Sections, section)

		switch src.collection {
		case record.CollectionLeads:
			report.Summary.NewLeads = len(recs)
		case record.CollectionCallLogs:
			report.Summary.Calls = len(recs)
		case record.CollectionTasks:
			report.Summary.TasksDue = len(recs)
		case record.CollectionClosings:
			report.Summary.Closings = len(recs)
			var volume float64
			for _, rec := range recs {
				if n, ok := number(rec["loan_amount"]); ok {
					volume += n
				}
			}
			report.Summary.ClosingVolume = f.money(volume)
		}
	}
	return report, nil
}

func (s *DailyReportServiceImpl) PDF(ctx context.Context, day time.Time) ([]byte, string, error) {
	report, err := s.Build(ctx, day)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderPDF(report)
	if err != nil {
		return nil, "", err
	}
	return data, fileName(report, "pdf"), nil
}

func (s *DailyReportServiceImpl) XLSX(ctx context.Context, day time.Time) ([]byte, string, error) {
	report, err := s.Build(ctx, day)
	if err != nil {
		return nil, "", err
	}
	data, err := RenderXLSX(report)
	if err != nil {
		s.Logger.Error("daily report export failed", zap.String("date", report.Day()), zap.Error(err))
		return nil, "", &pdfdoc.GenerationError{Document: "daily_report", Err: err}
	}
	return data, fileName(report, "xlsx"), nil
}

// Send emails the day's PDF. The first recipient is the primary one.
func (s *DailyReportServiceImpl) Send(ctx context.Context, day time.Time, recipients []string) (*delivery.Email, error) {
	if len(recipients) == 0 {
		return nil, utils.NewValidationError("recipients", "is required")
	}

	report, err := s.Build(ctx, day)
	if err != nil {
		return nil, err
	}
	data, err := s.renderPDF(report)
	if err != nil {
		return nil, err
	}

	email, err := s.Delivery.Send(ctx, delivery.Request{
		PrimaryEmail:    recipients[0],
		SecondaryEmails: recipients[1:],
		CustomerName:    teamName(report),
		Subject:         "Daily Report - " + report.Date.Format("Jan 2, 2006"),
		HTMLBody:        summaryHTML(report),
		PDFAttachment:   base64.StdEncoding.EncodeToString(data),
		FileName:        fileName(report, "pdf"),
	})

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionReport, "daily_report", report.Day(), map[string]common_models.Change{
		"recipients": {New: recipients},
		"sent":       {New: err == nil},
	})
	return email, err
}

// renderPDF logs the cause of a failed render and returns a
// *pdfdoc.GenerationError.
func (s *DailyReportServiceImpl) renderPDF(report *DailyReport) ([]byte, error) {
	data, err := s.PDFRenderer(report)
	if err != nil {
		s.Logger.Error("daily report generation failed", zap.String("date", report.Day()), zap.Error(err))
		return nil, &pdfdoc.GenerationError{Document: "daily_report", Err: err}
	}
	return data, nil
}

func fileName(report *DailyReport, ext string) string {
	return utils.DocumentFileName("daily-report", report.Day(), ext)
}

func teamName(report *DailyReport) string {
	if report.Brokerage == "" {
		return "Team"
	}
	return report.Brokerage + " Team"
}

func summaryHTML(report *DailyReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Daily report for %s.</p><ul>", html.EscapeString(report.Date.Format("Monday, January 2, 2006")))
	fmt.Fprintf(&b, "<li>New leads: %d</li>", report.Summary.NewLeads)
	fmt.Fprintf(&b, "<li>Calls: %d</li>", report.Summary.Calls)
	fmt.Fprintf(&b, "<li>Tasks due: %d</li>", report.Summary.TasksDue)
	fmt.Fprintf(&b, "<li>Closings: %d (%s)</li>", report.Summary.Closings, html.EscapeString(report.Summary.ClosingVolume))
	b.WriteString("</ul><p>The full report is attached.</p>")
	return b.String()
}
