package field_catalog

import (
	"context"
	"errors"
	"testing"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
	"broker-crm/pkg/utils"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type MockFieldRepo struct {
	Fields []FieldDefinition
}

func (m *MockFieldRepo) Create(ctx context.Context, field *FieldDefinition) error {
	m.Fields = append(m.Fields, *field)
	return nil
}

func (m *MockFieldRepo) GetByName(ctx context.Context, name string) (*FieldDefinition, error) {
	for i := range m.Fields {
		if m.Fields[i].FieldName == name {
			f := m.Fields[i]
			return &f, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockFieldRepo) List(ctx context.Context) ([]FieldDefinition, error) {
	return m.Fields, nil
}

func (m *MockFieldRepo) Update(ctx context.Context, field *FieldDefinition) error {
	for i := range m.Fields {
		if m.Fields[i].FieldName == field.FieldName {
			m.Fields[i] = *field
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockFieldRepo) Delete(ctx context.Context, name string) error {
	for i := range m.Fields {
		if m.Fields[i].FieldName == name {
			m.Fields = append(m.Fields[:i], m.Fields[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func (m *MockFieldRepo) Upsert(ctx context.Context, field *FieldDefinition) error {
	if err := m.Update(ctx, field); err == nil {
		return nil
	}
	return m.Create(ctx, field)
}

func (m *MockFieldRepo) EnsureIndexes(ctx context.Context) error { return nil }

type MockAuditService struct {
	Actions []common_models.AuditAction
}

func (m *MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.Actions = append(m.Actions, action)
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func strPtr(s string) *string { return &s }

func newTestService(fields ...FieldDefinition) (*FieldServiceImpl, *MockFieldRepo, *MockAuditService) {
	repo := &MockFieldRepo{Fields: fields}
	auditSvc := &MockAuditService{}
	return &FieldServiceImpl{
		Repo:         repo,
		AuditService: auditSvc,
		Formulas:     NewFormulaEngine(),
		Logger:       zap.NewNop(),
	}, repo, auditSvc
}

func field(name, section string, sample *string) FieldDefinition {
	return FieldDefinition{
		FieldName:   name,
		DisplayName: name,
		Section:     section,
		FieldType:   common_models.FieldTypeText,
		SampleData:  sample,
	}
}

func TestCreateFieldValidation(t *testing.T) {
	svc, repo, auditSvc := newTestService()

	bad := FieldDefinition{FieldName: "first-name", DisplayName: "First", Section: "Contact", FieldType: "colour"}
	err := svc.CreateField(context.Background(), &bad)
	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "field_name")
	assert.Contains(t, ve.Fields, "field_type")
	assert.Empty(t, repo.Fields)

	broken := field("full_name", "Contact", nil)
	broken.Formula = "record.first_name +"
	err = svc.CreateField(context.Background(), &broken)
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "formula")

	good := field("first_name", "Contact", strPtr("Jane"))
	require.NoError(t, svc.CreateField(context.Background(), &good))
	assert.Len(t, repo.Fields, 1)
	assert.Equal(t, []common_models.AuditAction{common_models.AuditActionField}, auditSvc.Actions)
}

func TestListGroupedKeepsSectionOrder(t *testing.T) {
	svc, _, _ := newTestService(
		field("first_name", "Contact", nil),
		field("last_name", "Contact", nil),
		field("loan_amount", "Loan", nil),
		field("buyer_agent_first_name", "Agents", nil),
	)

	groups, err := svc.ListGrouped(context.Background())
	require.NoError(t, err)

	var got []string
	for _, g := range groups {
		got = append(got, g.Section)
	}
	if diff := cmp.Diff([]string{"Contact", "Loan", "Agents"}, got); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, groups[0].Fields, 2)
}

func TestSampleContextWithDerivedField(t *testing.T) {
	full := field("full_name", "Contact", strPtr("ignored for derived fields"))
	full.Formula = `record.first_name + " " + record.last_name`
	upper := field("loan_type_upper", "Loan", nil)
	upper.Formula = `text.to_upper(record.loan_type)`
	broken := field("broken", "Loan", nil)
	broken.Formula = `record.missing.deeper`

	svc, _, _ := newTestService(
		field("first_name", "Contact", strPtr("Jane")),
		field("last_name", "Contact", strPtr("Doe")),
		field("loan_type", "Loan", strPtr("Conventional")),
		field("no_sample", "Loan", nil),
		full, upper, broken,
	)

	got, err := svc.SampleContext(context.Background())
	require.NoError(t, err)

	want := map[string]string{
		"first_name":      "Jane",
		"last_name":       "Doe",
		"loan_type":       "Conventional",
		"full_name":       "Jane Doe",
		"loan_type_upper": "CONVENTIONAL",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sample context mismatch (-want +got):\n%s", diff)
	}
}

func TestDeriveDoesNotOverwrite(t *testing.T) {
	full := field("full_name", "Contact", nil)
	full.Formula = `record.first_name + " " + record.last_name`
	svc, _, _ := newTestService(full)

	in := map[string]string{"first_name": "Jane", "last_name": "Doe", "full_name": "Dr. Jane Doe"}
	got, err := svc.Derive(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Jane Doe", got["full_name"])

	delete(in, "full_name")
	got, err = svc.Derive(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", got["full_name"])
	_, mutated := in["full_name"]
	assert.False(t, mutated)
}

func TestSeedValidatesBeforeWriting(t *testing.T) {
	svc, repo, _ := newTestService(field("first_name", "Contact", strPtr("Jane")))

	n, err := svc.Seed(context.Background(), []FieldDefinition{
		field("first_name", "Borrower", strPtr("Janet")),
		field("bad name", "Contact", nil),
	})
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, "Contact", repo.Fields[0].Section)

	n, err = svc.Seed(context.Background(), []FieldDefinition{
		field("first_name", "Borrower", strPtr("Janet")),
		field("email", "Contact", nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, repo.Fields, 2)
	assert.Equal(t, "Borrower", repo.Fields[0].Section)
}

func TestDeleteMissingField(t *testing.T) {
	svc, _, auditSvc := newTestService()
	err := svc.DeleteField(context.Background(), "nope")
	assert.ErrorIs(t, err, mongo.ErrNoDocuments)
	assert.Empty(t, auditSvc.Actions)
}
