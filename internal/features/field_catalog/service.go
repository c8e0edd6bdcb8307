package field_catalog

import (
	"context"
	"errors"
	"fmt"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/pkg/merge"
	"broker-crm/pkg/utils"

	"go.uber.org/zap"
)

type FieldService interface {
	CreateField(ctx context.Context, field *FieldDefinition) error
	GetField(ctx context.Context, name string) (*FieldDefinition, error)
	ListFields(ctx context.Context) ([]FieldDefinition, error)
	ListGrouped(ctx context.Context) ([]FieldGroup, error)
	UpdateField(ctx context.Context, field *FieldDefinition) error
	DeleteField(ctx context.Context, name string) error
	SampleContext(ctx context.Context) (map[string]string, error)
	Derive(ctx context.Context, values map[string]string) (map[string]string, error)
	Seed(ctx context.Context, fields []FieldDefinition) (int, error)
}

type FieldServiceImpl struct {
	Repo         FieldRepository
	AuditService audit.AuditService
	Formulas     *FormulaEngine
	Logger       *zap.Logger
}

func NewFieldService(repo FieldRepository, auditService audit.AuditService, logger *zap.Logger) FieldService {
	return &FieldServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Formulas:     NewFormulaEngine(),
		Logger:       logger,
	}
}

func (s *FieldServiceImpl) validate(field *FieldDefinition) error {
	var out *utils.ValidationError
	if err := utils.ValidateStruct(field); err != nil {
		if !errors.As(err, &out) {
			return err
		}
	}
	add := func(name, msg string) {
		if out == nil {
			out = &utils.ValidationError{}
		}
		out.Add(name, msg)
	}
	if field.FieldName != "" && !merge.ValidName(field.FieldName) {
		add("field_name", "may only contain letters, digits and underscores")
	}
	if field.FieldType != "" && !field.FieldType.Valid() {
		add("field_type", fmt.Sprintf("must be one of %v", common_models.FieldTypes))
	}
	if field.Formula != "" {
		if _, err := s.Formulas.compile(field.Formula); err != nil {
			add("formula", err.Error())
		}
	}
	if out != nil {
		return out
	}
	return nil
}

func (s *FieldServiceImpl) CreateField(ctx context.Context, field *FieldDefinition) error {
	if err := s.validate(field); err != nil {
		return err
	}
	if err := s.Repo.Create(ctx, field); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionField, "field_definitions", field.FieldName, map[string]common_models.Change{
		"field": {New: field},
	})
	return nil
}

func (s *FieldServiceImpl) GetField(ctx context.Context, name string) (*FieldDefinition, error) {
	return s.Repo.GetByName(ctx, name)
}

func (s *FieldServiceImpl) ListFields(ctx context.Context) ([]FieldDefinition, error) {
	return s.Repo.List(ctx)
}

// ListGrouped groups fields by section, keeping sections in the order the
// repository returns them.
func (s *FieldServiceImpl) ListGrouped(ctx context.Context) ([]FieldGroup, error) {
	fields, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	groups := []FieldGroup{}
	index := map[string]int{}
	for _, f := range fields {
		i, ok := index[f.Section]
		if !ok {
			i = len(groups)
			index[f.Section] = i
			groups = append(groups, FieldGroup{Section: f.Section})
		}
		groups[i].Fields = append(groups[i].Fields, f)
	}
	return groups, nil
}

func (s *FieldServiceImpl) UpdateField(ctx context.Context, field *FieldDefinition) error {
	if err := s.validate(field); err != nil {
		return err
	}
	old, _ := s.Repo.GetByName(ctx, field.FieldName)
	if err := s.Repo.Update(ctx, field); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionField, "field_definitions", field.FieldName, map[string]common_models.Change{
		"field": {Old: old, New: field},
	})
	return nil
}

func (s *FieldServiceImpl) DeleteField(ctx context.Context, name string) error {
	old, _ := s.Repo.GetByName(ctx, name)
	if err := s.Repo.Delete(ctx, name); err != nil {
		return err
	}
	_ = s.AuditService.LogChange(ctx, common_models.AuditActionField, "field_definitions", name, map[string]common_models.Change{
		"field": {Old: old, New: "DELETED"},
	})
	return nil
}

// SampleContext is the render context used by template previews: every
// field with sample data, plus derived fields computed from those samples.
func (s *FieldServiceImpl) SampleContext(ctx context.Context) (map[string]string, error) {
	fields, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.SampleData != nil && !f.Derived() {
			values[f.FieldName] = *f.SampleData
		}
	}
	return s.derive(ctx, fields, values), nil
}

// Derive evaluates the catalog formulas against values and returns a new
// context holding values plus every derived field that evaluated. Fields
// already present in values are not overwritten.
func (s *FieldServiceImpl) Derive(ctx context.Context, values map[string]string) (map[string]string, error) {
	fields, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return s.derive(ctx, fields, out), nil
}

func (s *FieldServiceImpl) derive(ctx context.Context, fields []FieldDefinition, values map[string]string) map[string]string {
	for _, f := range fields {
		if !f.Derived() {
			continue
		}
		if _, ok := values[f.FieldName]; ok {
			continue
		}
		v, err := s.Formulas.Eval(ctx, f.Formula, values)
		if err != nil {
			s.Logger.Debug("derived field left unresolved",
				zap.String("field", f.FieldName),
				zap.Error(err))
			continue
		}
		values[f.FieldName] = v
	}
	return values
}

// Seed upserts fields by name and returns how many were written. Invalid
// definitions abort the seed before anything is written.
func (s *FieldServiceImpl) Seed(ctx context.Context, fields []FieldDefinition) (int, error) {
	for i := range fields {
		if err := s.validate(&fields[i]); err != nil {
			return 0, fmt.Errorf("field %d (%s): %w", i, fields[i].FieldName, err)
		}
	}
	for i := range fields {
		if err := s.Repo.Upsert(ctx, &fields[i]); err != nil {
			return i, fmt.Errorf("upsert %s: %w", fields[i].FieldName, err)
		}
	}
	return len(fields), nil
}
