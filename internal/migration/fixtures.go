package migration

import (
	"bytes"
	"context"
	"fmt"
	"os"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/database"
	"broker-crm/internal/features/audit"
	"broker-crm/internal/features/email_template"
	"broker-crm/internal/features/field_catalog"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type fieldFixture struct {
	Fields []field_catalog.FieldDefinition `yaml:"fields"`
}

type templateFixture struct {
	Templates []email_template.Template `yaml:"templates"`
}

func LoadFieldFixture(path string) ([]field_catalog.FieldDefinition, error) {
	var f fieldFixture
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	return f.Fields, nil
}

func LoadTemplateFixture(path string) ([]email_template.Template, error) {
	var f templateFixture
	if err := readYAML(path, &f); err != nil {
		return nil, err
	}
	for i, t := range f.Templates {
		if t.Name == "" {
			return nil, fmt.Errorf("%s: template %d has no name", path, i)
		}
	}
	return f.Templates, nil
}

func readYAML(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// TemplateSeed creates or overwrites templates by name. A failed seed
// deletes the templates it created and restores the ones it overwrote.
type TemplateSeed struct {
	Repo         email_template.EmailTemplateRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewTemplateSeed(repo email_template.EmailTemplateRepository, auditService audit.AuditService, logger *zap.Logger) *TemplateSeed {
	return &TemplateSeed{Repo: repo, AuditService: auditService, Logger: logger}
}

func (s *TemplateSeed) Plan(templates []email_template.Template) *Plan {
	plan := &Plan{Name: "seed-templates", Logger: s.Logger}
	for i := range templates {
		tpl := templates[i]
		var previous *email_template.Template

		plan.Steps = append(plan.Steps, Step{
			Name: "template " + tpl.Name,
			Do: func(ctx context.Context) error {
				tpl.HTML = email_template.SanitizeHTML(tpl.HTML)
				existing, err := s.Repo.GetByName(ctx, tpl.Name)
				switch {
				case err == nil:
					prev := *existing
					previous = &prev
					tpl.ID = existing.ID
					return s.Repo.Update(ctx, &tpl)
				case database.IsNotFound(err):
					tpl.ID = ""
					return s.Repo.Create(ctx, &tpl)
				default:
					return err
				}
			},
			Undo: func(ctx context.Context) error {
				if previous != nil {
					return s.Repo.Update(ctx, previous)
				}
				return s.Repo.Delete(ctx, tpl.ID)
			},
		})
	}

	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}
	plan.Steps = append(plan.Steps, Step{
		Name: "record audit",
		Do: func(ctx context.Context) error {
			_ = s.AuditService.LogChange(ctx, common_models.AuditActionMigrate, "email_templates", "seed-templates", map[string]common_models.Change{
				"templates": {New: names},
			})
			return nil
		},
	})
	return plan
}
