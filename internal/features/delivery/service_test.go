package delivery

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/settings"
	"broker-crm/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type MockEmailRepo struct {
	mu     sync.Mutex
	Emails map[string]*Email
}

func (m *MockEmailRepo) Create(ctx context.Context, email *Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Emails == nil {
		m.Emails = map[string]*Email{}
	}
	cp := *email
	m.Emails[email.ID] = &cp
	return nil
}

func (m *MockEmailRepo) UpdateStatus(ctx context.Context, id string, status EmailStatus, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.Emails[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	e.Status, e.ErrorMessage = status, errorMsg
	return nil
}

func (m *MockEmailRepo) GetByID(ctx context.Context, id string) (*Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.Emails[id]; ok {
		return e, nil
	}
	return nil, mongo.ErrNoDocuments
}

type MockMailer struct {
	Calls   atomic.Int32
	Err     error
	Last    Message
	Started chan struct{}
	Release chan struct{}
}

func (m *MockMailer) Send(ctx context.Context, msg Message) error {
	m.Calls.Add(1)
	m.Last = msg
	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Release != nil {
		<-m.Release
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Err
}

type MockSettings struct{}

func (MockSettings) GetEmailConfig(ctx context.Context) (*settings.EmailConfig, error) {
	return &settings.EmailConfig{FromEmail: "loans@harbor.example", FromName: "Harbor Home Loans"}, nil
}
func (MockSettings) UpdateEmailConfig(ctx context.Context, config settings.EmailConfig) error {
	return nil
}
func (MockSettings) GetBrokerageProfile(ctx context.Context) (*settings.BrokerageProfile, error) {
	return &settings.BrokerageProfile{Name: "Harbor Home Loans"}, nil
}
func (MockSettings) UpdateBrokerageProfile(ctx context.Context, profile settings.BrokerageProfile) error {
	return nil
}

type MockAuditService struct{}

func (MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	return nil
}
func (MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

type MockBroadcaster struct {
	mu     sync.Mutex
	Events []StatusEvent
}

func (m *MockBroadcaster) Broadcast(event string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, payload.(StatusEvent))
}

func newTestService(mailer *MockMailer) (*DeliveryServiceImpl, *MockEmailRepo, *MockBroadcaster) {
	repo := &MockEmailRepo{}
	hub := &MockBroadcaster{}
	svc := NewDeliveryService(repo, mailer, MockSettings{}, MockAuditService{}, hub, zap.NewNop()).(*DeliveryServiceImpl)
	return svc, repo, hub
}

var pdfBytes = []byte("%PDF-1.3 fake document body")

func validRequest() Request {
	return Request{
		PrimaryEmail:    "jane@example.com",
		SecondaryEmails: []string{"JANE@example.com", "co-borrower@example.com", " "},
		CustomerName:    "Jane <Doe>",
		PDFAttachment:   base64.StdEncoding.EncodeToString(pdfBytes),
		FileName:        "../pre-approval-jane-doe.pdf",
	}
}

func TestSendValidatesBeforeAnyNetworkCall(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *Request)
		field string
	}{
		{"bad primary", func(r *Request) { r.PrimaryEmail = "jane@" }, "primary_email"},
		{"bad secondary", func(r *Request) { r.SecondaryEmails = []string{"nope"} }, "secondary_emails[0]"},
		{"missing name", func(r *Request) { r.CustomerName = "" }, "customer_name"},
		{"not base64", func(r *Request) { r.PDFAttachment = "%%%" }, "pdf_attachment"},
		{"file name without attachment", func(r *Request) { r.PDFAttachment = "" }, "pdf_attachment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &MockMailer{}
			svc, repo, _ := newTestService(mailer)
			req := validRequest()
			req.SecondaryEmails = nil
			tt.edit(&req)

			_, err := svc.Send(context.Background(), req)
			var ve *utils.ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Contains(t, ve.Fields, tt.field)
			assert.Zero(t, mailer.Calls.Load())
			assert.Empty(t, repo.Emails)
		})
	}
}

func TestSendSuccess(t *testing.T) {
	mailer := &MockMailer{}
	svc, repo, hub := newTestService(mailer)

	email, err := svc.Send(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, EmailSent, email.Status)
	assert.Equal(t, EmailSent, repo.Emails[email.ID].Status)

	msg := mailer.Last
	assert.Equal(t, "loans@harbor.example", msg.From)
	assert.Equal(t, "Harbor Home Loans", msg.FromName)
	assert.Equal(t, "loans@harbor.example", repo.Emails[email.ID].From)
	assert.Equal(t, []string{"jane@example.com"}, msg.To)
	assert.Equal(t, []string{"co-borrower@example.com"}, msg.Cc)
	assert.Equal(t, "Your documents from Harbor Home Loans", msg.Subject)
	assert.Contains(t, msg.HTML, "Hello Jane &lt;Doe&gt;,")
	assert.NotContains(t, msg.Text, "<p>")
	assert.Contains(t, msg.Text, "Harbor Home Loans")

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "pre-approval-jane-doe.pdf", msg.Attachments[0].Name)
	assert.Equal(t, pdfBytes, msg.Attachments[0].Data)

	require.Len(t, hub.Events, 2)
	assert.Equal(t, EmailQueued, hub.Events[0].Status)
	assert.Equal(t, EmailSent, hub.Events[1].Status)
}

func TestSendSurfacesTransportErrorVerbatim(t *testing.T) {
	mailer := &MockMailer{Err: errors.New("dial tcp 10.0.0.5:587: connect: connection refused")}
	svc, repo, hub := newTestService(mailer)

	email, err := svc.Send(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, "failed to send: dial tcp 10.0.0.5:587: connect: connection refused", err.Error())
	assert.True(t, IsDeliveryError(err))

	var de *DeliveryError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 502, de.HTTPStatus())

	assert.Equal(t, int32(1), mailer.Calls.Load(), "no retry")
	assert.Equal(t, EmailFailed, repo.Emails[email.ID].Status)
	assert.Equal(t, mailer.Err.Error(), repo.Emails[email.ID].ErrorMessage)
	assert.Equal(t, EmailFailed, hub.Events[len(hub.Events)-1].Status)
}

func TestSendIgnoresBlankSecondaryAddresses(t *testing.T) {
	mailer := &MockMailer{}
	svc, _, _ := newTestService(mailer)
	req := validRequest()
	req.SecondaryEmails = []string{"", "  ", " co-borrower@example.com "}

	_, err := svc.Send(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"co-borrower@example.com"}, mailer.Last.Cc)
}

func waitStarted(t *testing.T, mailer *MockMailer) {
	t.Helper()
	select {
	case <-mailer.Started:
	case <-time.After(5 * time.Second):
		t.Fatal("mailer was never called")
	}
}

func TestConcurrentDuplicateSubmissionsSendOnce(t *testing.T) {
	mailer := &MockMailer{Started: make(chan struct{}, 2), Release: make(chan struct{})}
	svc, _, _ := newTestService(mailer)

	results := make([]*Email, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Send(context.Background(), validRequest())
	}()
	waitStarted(t, mailer)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = svc.Send(context.Background(), validRequest())
	}()
	// Let the second submission join the in-flight send.
	time.Sleep(100 * time.Millisecond)
	close(mailer.Release)
	wg.Wait()

	assert.Equal(t, int32(1), mailer.Calls.Load())
	require.NotNil(t, results[0])
	assert.Same(t, results[0], results[1])

	// Once finished, the same request may be sent again.
	mailer.Started = nil
	_, err := svc.Send(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, int32(2), mailer.Calls.Load())
}

func TestJoinedSubmissionSurvivesFirstCallerCancel(t *testing.T) {
	mailer := &MockMailer{Started: make(chan struct{}, 1), Release: make(chan struct{})}
	svc, repo, _ := newTestService(mailer)

	first, cancel := context.WithCancel(context.Background())
	errs := make([]error, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Send(first, validRequest())
	}()
	waitStarted(t, mailer)

	var joined *Email
	wg.Add(1)
	go func() {
		defer wg.Done()
		joined, errs[1] = svc.Send(context.Background(), validRequest())
	}()
	time.Sleep(100 * time.Millisecond)
	cancel()
	close(mailer.Release)
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	require.NotNil(t, joined)
	assert.Equal(t, EmailSent, repo.Emails[joined.ID].Status)
	assert.Equal(t, int32(1), mailer.Calls.Load())
}
