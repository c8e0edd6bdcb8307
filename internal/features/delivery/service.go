package delivery

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"html"
	"path/filepath"
	"strings"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/settings"
	"broker-crm/pkg/merge"
	"broker-crm/pkg/utils"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultSubject = "Your documents from {{brokerage_name}}"
	defaultBody    = "<p>Hello {{customer_name}},</p>" +
		"<p>Please find your document from {{brokerage_name}} attached.</p>" +
		"<p>Reply to this email with any questions.</p>"
)

// Broadcaster publishes status events to connected clients.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

type DeliveryService interface {
	Send(ctx context.Context, req Request) (*Email, error)
	GetStatus(ctx context.Context, id string) (*Email, error)
}

type DeliveryServiceImpl struct {
	Repo         EmailRepository
	Mailer       Mailer
	Settings     settings.SettingsService
	AuditService audit.AuditService
	Broadcaster  Broadcaster
	Logger       *zap.Logger

	inflight singleflight.Group
	markdown *converter.Converter
}

func NewDeliveryService(
	repo EmailRepository,
	mailer Mailer,
	settingsService settings.SettingsService,
	auditService audit.AuditService,
	broadcaster Broadcaster,
	logger *zap.Logger,
) DeliveryService {
	return &DeliveryServiceImpl{
		Repo:         repo,
		Mailer:       mailer,
		Settings:     settingsService,
		AuditService: auditService,
		Broadcaster:  broadcaster,
		Logger:       logger,
		markdown: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Send validates req, records it as queued, and hands it to the mailer.
// Validation errors are returned before anything is stored or sent.
// Identical requests in flight at the same time share a single send and its
// result. A mailer failure is returned as *DeliveryError and never retried.
func (s *DeliveryServiceImpl) Send(ctx context.Context, req Request) (*Email, error) {
	req.SecondaryEmails = compactAddresses(req.SecondaryEmails)
	attachment, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	// The shared send outlives any single caller; joined callers must not
	// see the first caller's cancellation.
	sendCtx := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(requestKey(req), func() (interface{}, error) {
		return s.send(sendCtx, req, attachment)
	})
	if shared {
		s.Logger.Info("duplicate delivery request collapsed", zap.String("to", req.PrimaryEmail))
	}
	email, _ := v.(*Email)
	return email, err
}

func (s *DeliveryServiceImpl) GetStatus(ctx context.Context, id string) (*Email, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *DeliveryServiceImpl) validate(req Request) (*Attachment, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	if req.PDFAttachment == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(req.PDFAttachment)
	if err != nil {
		return nil, utils.NewValidationError("pdf_attachment", "must be base64 encoded")
	}
	if len(data) == 0 {
		return nil, utils.NewValidationError("pdf_attachment", "must not be empty")
	}
	return &Attachment{
		Name:        filepath.Base(req.FileName),
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}

func (s *DeliveryServiceImpl) send(ctx context.Context, req Request, attachment *Attachment) (*Email, error) {
	msg, err := s.compose(ctx, req, attachment)
	if err != nil {
		return nil, err
	}

	email := &Email{
		ID:           uuid.NewString(),
		From:         msg.From,
		To:           msg.To,
		Cc:           msg.Cc,
		CustomerName: req.CustomerName,
		Subject:      msg.Subject,
		HtmlBody:     msg.HTML,
		Status:       EmailQueued,
	}
	if attachment != nil {
		email.AttachmentName = attachment.Name
		email.AttachmentSize = len(attachment.Data)
	}
	if err := s.Repo.Create(ctx, email); err != nil {
		return nil, err
	}
	s.publish(email)

	sendErr := s.Mailer.Send(ctx, msg)

	email.Status = EmailSent
	if sendErr != nil {
		email.Status = EmailFailed
		email.ErrorMessage = sendErr.Error()
	}
	if err := s.Repo.UpdateStatus(ctx, email.ID, email.Status, email.ErrorMessage); err != nil {
		s.Logger.Error("email status not saved", zap.String("delivery_id", email.ID), zap.Error(err))
	}
	s.publish(email)

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelivery, "emails", email.ID, map[string]common_models.Change{
		"status": {Old: EmailQueued, New: email.Status},
	})

	if sendErr != nil {
		s.Logger.Warn("email delivery failed", zap.String("delivery_id", email.ID), zap.Error(sendErr))
		return email, &DeliveryError{Err: sendErr}
	}
	s.Logger.Info("email delivered", zap.String("delivery_id", email.ID), zap.Strings("to", email.To))
	return email, nil
}

// compose fills the default subject and body and derives the plain-text part.
func (s *DeliveryServiceImpl) compose(ctx context.Context, req Request, attachment *Attachment) (Message, error) {
	brokerage := ""
	if profile, err := s.Settings.GetBrokerageProfile(ctx); err == nil && profile != nil {
		brokerage = profile.Name
	}
	values := map[string]string{
		"customer_name":  req.CustomerName,
		"brokerage_name": brokerage,
	}

	subject := req.Subject
	if subject == "" {
		subject = merge.Render(defaultSubject, values)
	}
	body := req.HTMLBody
	if body == "" {
		escaped := make(map[string]string, len(values))
		for k, v := range values {
			escaped[k] = html.EscapeString(v)
		}
		body = merge.Render(defaultBody, escaped)
	}

	msg := Message{
		To:      []string{req.PrimaryEmail},
		Cc:      dedupe(req.PrimaryEmail, req.SecondaryEmails),
		Subject: subject,
		HTML:    body,
		Text:    s.plainText(body),
	}
	if config, err := s.Settings.GetEmailConfig(ctx); err == nil && config != nil {
		msg.From = config.Sender()
		msg.FromName = config.FromName
	}
	if attachment != nil {
		msg.Attachments = []Attachment{*attachment}
	}
	return msg, nil
}

func (s *DeliveryServiceImpl) plainText(body string) string {
	if s.markdown == nil {
		return body
	}
	text, err := s.markdown.ConvertString(body)
	if err != nil {
		s.Logger.Debug("plain-text alternative failed", zap.Error(err))
		return body
	}
	return text
}

func (s *DeliveryServiceImpl) publish(email *Email) {
	if s.Broadcaster == nil {
		return
	}
	s.Broadcaster.Broadcast(StatusEventName, StatusEvent{
		ID:     email.ID,
		Status: email.Status,
		To:     email.To,
		Error:  email.ErrorMessage,
	})
}

// compactAddresses trims addresses and drops blank entries left by empty
// form inputs.
func compactAddresses(addrs []string) []string {
	var out []string
	for _, addr := range addrs {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

func dedupe(primary string, secondary []string) []string {
	seen := map[string]bool{strings.ToLower(primary): true}
	var out []string
	for _, addr := range secondary {
		key := strings.ToLower(strings.TrimSpace(addr))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, strings.TrimSpace(addr))
	}
	return out
}

// requestKey identifies a submission by its full content.
func requestKey(req Request) string {
	h := sha256.New()
	for _, part := range []string{
		req.PrimaryEmail, strings.Join(req.SecondaryEmails, ","), req.CustomerName,
		req.Subject, req.HTMLBody, req.FileName, req.PDFAttachment,
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsDeliveryError reports whether err came from the transport.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}
