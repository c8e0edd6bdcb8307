package email_template

import (
	"context"
	"html"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/delivery"
	"broker-crm/internal/features/field_catalog"
	"broker-crm/pkg/merge"
	"broker-crm/pkg/utils"

	"go.uber.org/zap"
)

type EmailTemplateService interface {
	CreateTemplate(ctx context.Context, template *Template) error
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, template *Template) error
	DeleteTemplate(ctx context.Context, id string) error
	Render(ctx context.Context, id string, values map[string]string) (*RenderResult, error)
	RenderForRecord(ctx context.Context, id, collection, recordID string) (*RenderResult, error)
	Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error)
	SendTest(ctx context.Context, id string, req TestEmailRequest) (*delivery.Email, error)
}

type EmailTemplateServiceImpl struct {
	Repo         EmailTemplateRepository
	Contexts     *ContextBuilder
	Fields       field_catalog.FieldService
	Delivery     delivery.DeliveryService
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewEmailTemplateService(
	repo EmailTemplateRepository,
	contexts *ContextBuilder,
	fields field_catalog.FieldService,
	deliveryService delivery.DeliveryService,
	auditService audit.AuditService,
	logger *zap.Logger,
) EmailTemplateService {
	return &EmailTemplateServiceImpl{
		Repo:         repo,
		Contexts:     contexts,
		Fields:       fields,
		Delivery:     deliveryService,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *EmailTemplateServiceImpl) CreateTemplate(ctx context.Context, template *Template) error {
	if err := utils.ValidateStruct(template); err != nil {
		return err
	}
	template.ID = ""
	template.HTML = SanitizeHTML(template.HTML)

	if err := s.Repo.Create(ctx, template); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "email_templates", template.ID, map[string]common_models.Change{
		"name": {New: template.Name},
	})
	return nil
}

func (s *EmailTemplateServiceImpl) GetTemplate(ctx context.Context, id string) (*Template, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *EmailTemplateServiceImpl) ListTemplates(ctx context.Context) ([]Template, error) {
	return s.Repo.List(ctx)
}

// UpdateTemplate overwrites the stored template. The creation time is kept.
func (s *EmailTemplateServiceImpl) UpdateTemplate(ctx context.Context, template *Template) error {
	if err := utils.ValidateStruct(template); err != nil {
		return err
	}
	old, err := s.Repo.GetByID(ctx, template.ID)
	if err != nil {
		return err
	}
	template.HTML = SanitizeHTML(template.HTML)
	template.CreatedAt = old.CreatedAt

	if err := s.Repo.Update(ctx, template); err != nil {
		return err
	}

	changes := make(map[string]common_models.Change)
	if old.Name != template.Name {
		changes["name"] = common_models.Change{Old: old.Name, New: template.Name}
	}
	if old.Subject != template.Subject {
		changes["subject"] = common_models.Change{Old: old.Subject, New: template.Subject}
	}
	if old.HTML != template.HTML {
		changes["html"] = common_models.Change{Old: len(old.HTML), New: len(template.HTML)}
	}
	if len(changes) > 0 {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "email_templates", template.ID, changes)
	}
	return nil
}

func (s *EmailTemplateServiceImpl) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "email_templates", id, nil)
	return nil
}

// Render merges the template with values. Values are HTML escaped in the
// body and used as-is in the subject. Tags without a value stay in place
// and are listed in Unresolved.
func (s *EmailTemplateServiceImpl) Render(ctx context.Context, id string, values map[string]string) (*RenderResult, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return render(template.Subject, template.HTML, values), nil
}

func (s *EmailTemplateServiceImpl) RenderForRecord(ctx context.Context, id, collection, recordID string) (*RenderResult, error) {
	template, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	values, err := s.Contexts.ForRecord(ctx, collection, recordID)
	if err != nil {
		return nil, err
	}
	return render(template.Subject, template.HTML, values), nil
}

// Preview renders a stored template, or unsaved HTML when no template id is
// given, against the supplied context or the catalog sample values.
func (s *EmailTemplateServiceImpl) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	subject, body := req.Subject, SanitizeHTML(req.HTML)
	if req.TemplateID != "" {
		template, err := s.Repo.GetByID(ctx, req.TemplateID)
		if err != nil {
			return nil, err
		}
		subject, body = template.Subject, template.HTML
	}

	values := req.Context
	if values == nil {
		sample, err := s.Fields.SampleContext(ctx)
		if err != nil {
			return nil, err
		}
		values = sample
	}

	rendered := render(subject, body, values)
	return &PreviewResult{
		Highlighted: merge.Preview(body, values, merge.DefaultHighlighter),
		Rendered:    rendered.HTML,
		Subject:     rendered.Subject,
		Fields:      merge.Fields(subject + "\n" + body),
		Unresolved:  rendered.Unresolved,
	}, nil
}

// SendTest renders the template with testData and emails it to a single
// recipient. The subject is prefixed so test sends are recognisable.
func (s *EmailTemplateServiceImpl) SendTest(ctx context.Context, id string, req TestEmailRequest) (*delivery.Email, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	rendered, err := s.Render(ctx, id, req.TestData)
	if err != nil {
		return nil, err
	}
	if len(rendered.Unresolved) > 0 {
		s.Logger.Info("test email sent with unresolved merge tags",
			zap.String("template_id", id),
			zap.Strings("unresolved", rendered.Unresolved))
	}

	return s.Delivery.Send(ctx, delivery.Request{
		PrimaryEmail: req.To,
		CustomerName: req.To,
		Subject:      "[Test] " + rendered.Subject,
		HTMLBody:     rendered.HTML,
	})
}

func render(subject, body string, values map[string]string) *RenderResult {
	escaped := make(map[string]string, len(values))
	for k, v := range values {
		escaped[k] = html.EscapeString(v)
	}

	unresolved := merge.Unresolved(subject+"\n"+body, values)
	if unresolved == nil {
		unresolved = []string{}
	}
	return &RenderResult{
		Subject:    merge.Render(subject, values),
		HTML:       merge.Render(body, escaped),
		Unresolved: unresolved,
	}
}
