package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"broker-crm/internal/features/email_template"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFieldFixture(t *testing.T) {
	path := writeFixture(t, `
fields:
  - field_name: first_name
    display_name: First Name
    section: Contact
    field_type: text
    sample_data: Dana
  - field_name: full_name
    display_name: Full Name
    section: Contact
    field_type: text
    formula: record.first_name + " " + record.last_name
`)
	fields, err := LoadFieldFixture(path)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, "first_name", fields[0].FieldName)
	require.NotNil(t, fields[0].SampleData)
	assert.Equal(t, "Dana", *fields[0].SampleData)
	assert.True(t, fields[1].Derived())
}

func TestLoadFixtureRejectsUnknownKeys(t *testing.T) {
	path := writeFixture(t, "fields:\n  - field_name: x\n    colour: red\n")
	_, err := LoadFieldFixture(path)
	assert.Error(t, err)
}

func TestLoadTemplateFixture(t *testing.T) {
	path := writeFixture(t, `
templates:
  - name: Welcome
    subject: Welcome {{first_name}}
    html: <p>Hello {{first_name}}</p>
  - subject: missing name
`)
	_, err := LoadTemplateFixture(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template 1 has no name")
}

type MockTemplateRepo struct {
	email_template.EmailTemplateRepository
	Items     map[string]*email_template.Template
	seq       int
	FailNamed string
}

func newMockTemplateRepo(existing ...email_template.Template) *MockTemplateRepo {
	m := &MockTemplateRepo{Items: map[string]*email_template.Template{}}
	for i := range existing {
		tpl := existing[i]
		m.Items[tpl.ID] = &tpl
	}
	return m
}

func (m *MockTemplateRepo) GetByName(ctx context.Context, name string) (*email_template.Template, error) {
	for _, t := range m.Items {
		if t.Name == name {
			cp := *t
			return &cp, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (m *MockTemplateRepo) Create(ctx context.Context, t *email_template.Template) error {
	if t.Name == m.FailNamed {
		return errors.New("duplicate key")
	}
	m.seq++
	t.ID = fmt.Sprintf("tpl-%d", m.seq)
	cp := *t
	m.Items[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) Update(ctx context.Context, t *email_template.Template) error {
	if _, ok := m.Items[t.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	cp := *t
	m.Items[t.ID] = &cp
	return nil
}

func (m *MockTemplateRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.Items[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.Items, id)
	return nil
}

func TestTemplateSeed(t *testing.T) {
	ctx := context.Background()
	existing := email_template.Template{ID: "old", Name: "Welcome", Subject: "Hi", HTML: "<p>old</p>"}

	t.Run("creates and overwrites by name", func(t *testing.T) {
		repo := newMockTemplateRepo(existing)
		audits := &MockAuditService{}
		seed := NewTemplateSeed(repo, audits, zap.NewNop())

		err := seed.Plan([]email_template.Template{
			{Name: "Welcome", Subject: "Welcome {{first_name}}", HTML: `<p onclick="x()">Hello {{first_name}}</p>`},
			{Name: "Rate Lock", Subject: "Your rate is locked", HTML: "<p>Locked</p>"},
		}).Run(ctx)
		require.NoError(t, err)

		require.Len(t, repo.Items, 2)
		assert.Equal(t, "<p>Hello {{first_name}}</p>", repo.Items["old"].HTML)
		assert.Equal(t, "Rate Lock", repo.Items["tpl-1"].Name)
		assert.Equal(t, []string{"MIGRATE email_templates seed-templates"}, audits.Records)
	})

	t.Run("failure restores previous state", func(t *testing.T) {
		repo := newMockTemplateRepo(existing)
		repo.FailNamed = "Broken"
		seed := NewTemplateSeed(repo, &MockAuditService{}, zap.NewNop())

		err := seed.Plan([]email_template.Template{
			{Name: "Welcome", HTML: "<p>new</p>"},
			{Name: "Rate Lock", HTML: "<p>Locked</p>"},
			{Name: "Broken", HTML: "<p>x</p>"},
		}).Run(ctx)
		var stepErr *StepError
		require.ErrorAs(t, err, &stepErr)
		assert.Equal(t, "template Broken", stepErr.Step)
		assert.True(t, stepErr.RolledBack())

		require.Len(t, repo.Items, 1)
		assert.Equal(t, "<p>old</p>", repo.Items["old"].HTML)
	})
}

func TestBundledFixturesLoad(t *testing.T) {
	fields, err := LoadFieldFixture("../../cmd/migrate/fixtures/fields.yaml")
	require.NoError(t, err)
	assert.NotEmpty(t, fields)
	for _, f := range fields {
		assert.True(t, f.FieldType.Valid(), f.FieldName)
	}

	templates, err := LoadTemplateFixture("../../cmd/migrate/fixtures/templates.yaml")
	require.NoError(t, err)
	assert.Len(t, templates, 3)
}
