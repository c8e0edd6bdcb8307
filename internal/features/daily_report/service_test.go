package daily_report

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/delivery"
	"broker-crm/internal/features/record"
	"broker-crm/internal/features/record/recordtest"
	"broker-crm/internal/features/settings"
	"broker-crm/pkg/pdfdoc"
	"broker-crm/pkg/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockSettings struct {
	settings.SettingsService
}

func (MockSettings) GetBrokerageProfile(ctx context.Context) (*settings.BrokerageProfile, error) {
	return &settings.BrokerageProfile{Name: "Lone Star Lending"}, nil
}

type MockDelivery struct {
	Requests []delivery.Request
	Err      error
}

func (m *MockDelivery) Send(ctx context.Context, req delivery.Request) (*delivery.Email, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return &delivery.Email{ID: "e1", Status: delivery.EmailSent}, nil
}

func (m *MockDelivery) GetStatus(ctx context.Context, id string) (*delivery.Email, error) {
	return nil, nil
}

type MockAuditService struct{}

func (MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) error {
	return nil
}

func (MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

var reportDay = time.Date(2026, 4, 15, 0, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return reportDay.Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
}

func seededMemory() *recordtest.Memory {
	return recordtest.NewMemory().
		Add(record.CollectionRateSheet,
			record.Record{"product": "30-Year Fixed", "rate": 6.375, "apr": 6.512, "points": 0.5, "change": -0.125, "effective_date": at(8, 0)},
			record.Record{"product": "15-Year Fixed", "rate": 5.75, "apr": 5.901, "points": int32(0), "change": 0.0, "effective_date": at(8, 0)},
			record.Record{"product": "Yesterday", "rate": 7.0, "effective_date": reportDay.Add(-time.Hour)},
		).
		Add(record.CollectionLeads,
			record.Record{"first_name": "Dana", "last_name": "Whitfield", "source": "Referral", "loan_amount": 360000.0, "notes": "Pre-approval requested", "created_at": at(9, 30)},
			record.Record{"name": "Sam Ortiz", "loan_amount": int64(1250000), "created_at": at(14, 5)},
			record.Record{"first_name": "Tomorrow", "created_at": reportDay.AddDate(0, 0, 1)},
		).
		Add(record.CollectionCallLogs,
			record.Record{"contact_name": "Dana Whitfield", "direction": "Outbound", "outcome": "Connected", "summary": "Discussed rate lock", "call_time": at(10, 15)},
		).
		Add(record.CollectionClosings,
			record.Record{"borrower_name": "Lee Park", "property_address": "9 Elm St", "loan_amount": 400000.0, "closing_date": at(16, 0)},
			record.Record{"borrower_name": "Kim Ray", "property_address": "12 Pine Rd", "loan_amount": "250000", "closing_date": at(11, 0)},
		)
}

func newTestReportService(mem *recordtest.Memory) (*DailyReportServiceImpl, *MockDelivery) {
	sender := &MockDelivery{}
	svc := NewDailyReportService(record.NewRecordService(mem, zap.NewNop()), MockSettings{}, sender, MockAuditService{}, zap.NewNop()).(*DailyReportServiceImpl)
	svc.Location = time.UTC
	return svc, sender
}

func TestBuild(t *testing.T) {
	svc, _ := newTestReportService(seededMemory())

	report, err := svc.Build(context.Background(), at(13, 0))
	require.NoError(t, err)

	assert.Equal(t, reportDay, report.Date)
	assert.Equal(t, "2026-04-15", report.Day())
	assert.Equal(t, "Lone Star Lending", report.Brokerage)

	wantRates := []RateRow{
		{Product: "30-Year Fixed", Rate: "6.375%", APR: "6.512%", Points: "0.500", Change: "-0.125"},
		{Product: "15-Year Fixed", Rate: "5.750%", APR: "5.901%", Points: "0.000", Change: "+0.000"},
	}
	if diff := cmp.Diff(wantRates, report.Rates); diff != "" {
		t.Errorf("rates mismatch (-want +got):\n%s", diff)
	}

	wantSummary := Summary{NewLeads: 2, Calls: 1, TasksDue: 0, Closings: 2, ClosingVolume: "$650,000"}
	assert.Equal(t, wantSummary, report.Summary)

	require.Len(t, report.Sections, 4)
	leads := report.Sections[0]
	assert.Equal(t, "New Leads", leads.Title)
	assert.Equal(t, []Item{
		{Text: "Dana Whitfield | Referral | $360,000", Note: "Pre-approval requested"},
		{Text: "Sam Ortiz | $1,250,000"},
	}, leads.Items)

	assert.Equal(t, []Item{{Text: "10:15 AM | Dana Whitfield | Outbound | Connected", Note: "Discussed rate lock"}}, report.Sections[1].Items)
	assert.Empty(t, report.Sections[2].Items)
	assert.NotNil(t, report.Sections[2].Items)

	closings := report.Sections[3].Items
	require.Len(t, closings, 2)
	assert.Equal(t, "Kim Ray | 12 Pine Rd | 250000", closings[0].Text)
}

func TestPDFAndXLSX(t *testing.T) {
	svc, _ := newTestReportService(seededMemory())
	ctx := context.Background()

	data, name, err := svc.PDF(ctx, reportDay)
	require.NoError(t, err)
	assert.Equal(t, "daily-report-2026-04-15.pdf", name)
	require.NoError(t, pdfdoc.Validate(data, 0))

	data, name, err = svc.XLSX(ctx, reportDay)
	require.NoError(t, err)
	assert.Equal(t, "daily-report-2026-04-15.xlsx", name)
	assert.NotEmpty(t, data)
}

func TestSend(t *testing.T) {
	ctx := context.Background()

	t.Run("attaches the pdf", func(t *testing.T) {
		svc, sender := newTestReportService(seededMemory())

		email, err := svc.Send(ctx, reportDay, []string{"owner@example.com", "ops@example.com"})
		require.NoError(t, err)
		assert.Equal(t, "e1", email.ID)

		require.Len(t, sender.Requests, 1)
		req := sender.Requests[0]
		assert.Equal(t, "owner@example.com", req.PrimaryEmail)
		assert.Equal(t, []string{"ops@example.com"}, req.SecondaryEmails)
		assert.Equal(t, "Lone Star Lending Team", req.CustomerName)
		assert.Equal(t, "Daily Report - Apr 15, 2026", req.Subject)
		assert.Equal(t, "daily-report-2026-04-15.pdf", req.FileName)
		assert.Contains(t, req.HTMLBody, "<li>Closings: 2 ($650,000)</li>")

		pdf, err := base64.StdEncoding.DecodeString(req.PDFAttachment)
		require.NoError(t, err)
		require.NoError(t, pdfdoc.Validate(pdf, 0))
	})

	t.Run("requires recipients", func(t *testing.T) {
		svc, sender := newTestReportService(seededMemory())

		_, err := svc.Send(ctx, reportDay, nil)
		var ve *utils.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Empty(t, sender.Requests)
	})

	t.Run("render failure is logged and hidden", func(t *testing.T) {
		svc, sender := newTestReportService(seededMemory())
		svc.PDFRenderer = func(*DailyReport) ([]byte, error) {
			return nil, fmt.Errorf("%w: xref table corrupt", pdfdoc.ErrInvalidDocument)
		}

		_, err := svc.Send(ctx, reportDay, []string{"owner@example.com"})
		var ge *pdfdoc.GenerationError
		require.ErrorAs(t, err, &ge)
		assert.Equal(t, "failed to generate document", err.Error())
		assert.ErrorIs(t, err, pdfdoc.ErrInvalidDocument)
		assert.Empty(t, sender.Requests)

		_, _, err = svc.PDF(ctx, reportDay)
		require.ErrorAs(t, err, &ge)
		assert.NotContains(t, err.Error(), "xref")
	})

	t.Run("delivery error is returned", func(t *testing.T) {
		svc, sender := newTestReportService(seededMemory())
		sender.Err = &delivery.DeliveryError{Err: errors.New("timeout")}

		_, err := svc.Send(ctx, reportDay, []string{"owner@example.com"})
		assert.True(t, delivery.IsDeliveryError(err))
	})
}
