package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/delivery"
	"broker-crm/internal/features/file"
	"broker-crm/internal/features/settings"
	"broker-crm/pkg/pdfdoc"
	"broker-crm/pkg/utils"

	"go.uber.org/zap"
)

type DocumentService interface {
	Generate(ctx context.Context, payload Payload, opts Options) (*Document, error)
	GenerateAndSend(ctx context.Context, payload Payload, req SendRequest) (*Document, *delivery.Email, error)
}

type DocumentServiceImpl struct {
	Settings     settings.SettingsService
	Files        file.FileService
	Delivery     delivery.DeliveryService
	AuditService audit.AuditService
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewDocumentService(
	settingsService settings.SettingsService,
	fileService file.FileService,
	deliveryService delivery.DeliveryService,
	auditService audit.AuditService,
	logger *zap.Logger,
) DocumentService {
	return &DocumentServiceImpl{
		Settings:     settingsService,
		Files:        fileService,
		Delivery:     deliveryService,
		AuditService: auditService,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Generate validates payload and renders its letter. Both modes run the same
// generation; the mode only decides how the caller hands the bytes on. When
// opts.Archive is set the PDF is also stored on the payload's contact.
func (s *DocumentServiceImpl) Generate(ctx context.Context, payload Payload, opts Options) (*Document, error) {
	if opts.Mode == "" {
		opts.Mode = ModeDownload
	}
	if err := s.validate(payload, opts); err != nil {
		return nil, err
	}

	profile, err := s.Settings.GetBrokerageProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load brokerage profile: %w", err)
	}

	now := s.Now()
	var layout *pdfdoc.Layout
	switch p := payload.(type) {
	case *PreApprovalPayload:
		layout = preApprovalLayout(p, profile, now)
	case *LoanEstimatePayload:
		layout = loanEstimateLayout(p, profile, now)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, payload)
	}

	title := titleFor(payload.Kind())
	data, err := pdfdoc.Render(layout, pdfdoc.Meta{
		Title:     title,
		Author:    profile.Name,
		Subject:   title + " for " + payload.Customer(),
		CreatedAt: now,
	})
	if err != nil {
		s.Logger.Error("document generation failed",
			zap.String("kind", string(payload.Kind())),
			zap.Error(err))
		return nil, &pdfdoc.GenerationError{Document: string(payload.Kind()), Err: err}
	}

	doc := &Document{
		Kind:        payload.Kind(),
		FileName:    utils.DocumentFileName(string(payload.Kind()), payload.Customer(), "pdf"),
		ContentType: "application/pdf",
		Pages:       layout.PageCount(),
		Size:        len(data),
		GeneratedAt: now,
		Bytes:       data,
	}

	if opts.Archive {
		f, err := s.Files.Archive(ctx, archiveCollection, payload.Contact(), doc.FileName, data)
		if err != nil {
			return nil, fmt.Errorf("archive document: %w", err)
		}
		doc.File = f
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDocument, "documents", payload.Contact(), map[string]common_models.Change{
		"generated": {New: doc.FileName},
		"mode":      {New: string(opts.Mode)},
	})
	s.Logger.Info("document generated",
		zap.String("kind", string(doc.Kind)),
		zap.Int("pages", doc.Pages),
		zap.Int("size", doc.Size))
	return doc, nil
}

// GenerateAndSend renders the letter and only then hands it to delivery.
// Nothing is sent when generation fails.
func (s *DocumentServiceImpl) GenerateAndSend(ctx context.Context, payload Payload, req SendRequest) (*Document, *delivery.Email, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, nil, err
	}

	doc, err := s.Generate(ctx, payload, Options{Mode: ModeBytes, Archive: req.Archive})
	if err != nil {
		return nil, nil, err
	}

	email, err := s.Delivery.Send(ctx, delivery.Request{
		PrimaryEmail:    req.PrimaryEmail,
		SecondaryEmails: req.SecondaryEmails,
		CustomerName:    payload.Customer(),
		Subject:         req.Subject,
		HTMLBody:        req.HTMLBody,
		PDFAttachment:   doc.Base64(),
		FileName:        doc.FileName,
	})
	return doc, email, err
}

func (s *DocumentServiceImpl) validate(payload Payload, opts Options) error {
	if payload == nil {
		return utils.NewValidationError("payload", "is required")
	}
	verr := &utils.ValidationError{}
	if err := utils.ValidateStruct(payload); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	if !opts.Mode.Valid() {
		verr.Add("mode", fmt.Sprintf("must be one of [%s %s]", ModeDownload, ModeBytes))
	}
	if opts.Archive && payload.Contact() == "" {
		verr.Add("contact_id", "is required to archive")
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func titleFor(kind Kind) string {
	switch kind {
	case KindPreApproval:
		return "Pre-Approval Letter"
	case KindLoanEstimate:
		return "Loan Estimate"
	default:
		return string(kind)
	}
}

// NewPayload returns an empty payload for kind, ready to be decoded into.
func NewPayload(kind Kind) (Payload, error) {
	switch kind {
	case KindPreApproval:
		return &PreApprovalPayload{}, nil
	case KindLoanEstimate:
		return &LoanEstimatePayload{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}
