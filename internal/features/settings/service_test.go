package settings

import (
	"context"
	"errors"
	"testing"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/config"
	"broker-crm/internal/features/audit"
	"broker-crm/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockSettingsRepo struct {
	Email     *EmailConfig
	Brokerage *BrokerageProfile
	Err       error
}

func (m *MockSettingsRepo) GetEmailConfig(ctx context.Context) (*EmailConfig, error) {
	return m.Email, m.Err
}

func (m *MockSettingsRepo) SaveEmailConfig(ctx context.Context, config *EmailConfig) error {
	m.Email = config
	return m.Err
}

func (m *MockSettingsRepo) GetBrokerageProfile(ctx context.Context) (*BrokerageProfile, error) {
	return m.Brokerage, m.Err
}

func (m *MockSettingsRepo) SaveBrokerageProfile(ctx context.Context, profile *BrokerageProfile) error {
	m.Brokerage = profile
	return m.Err
}

func (m *MockSettingsRepo) EnsureIndexes(ctx context.Context) error {
	return nil
}

type MockAuditService struct {
	Changes []map[string]common_models.Change
}

func (m *MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	m.Changes = append(m.Changes, changes)
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}

func newTestService() (*SettingsServiceImpl, *MockSettingsRepo, *MockAuditService) {
	repo := &MockSettingsRepo{}
	auditSvc := &MockAuditService{}
	return &SettingsServiceImpl{
		Repo:         repo,
		AuditService: auditSvc,
		Config:       &config.Config{BrokerageName: "Harbor Home Loans"},
	}, repo, auditSvc
}

func TestBrokerageProfileDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	profile, err := svc.GetBrokerageProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Harbor Home Loans", profile.Name)
	assert.Equal(t, DefaultDisclaimer, profile.Disclaimer)
}

func TestUpdateBrokerageProfile(t *testing.T) {
	svc, repo, auditSvc := newTestService()

	err := svc.UpdateBrokerageProfile(context.Background(), BrokerageProfile{Name: "Harbor", NMLSID: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "123456", repo.Brokerage.NMLSID)
	require.Len(t, auditSvc.Changes, 1)

	profile, err := svc.GetBrokerageProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultDisclaimer, profile.Disclaimer)

	err = svc.UpdateBrokerageProfile(context.Background(), BrokerageProfile{Email: "nope"})
	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "email")
}

func TestUpdateEmailConfigRedactsAudit(t *testing.T) {
	svc, repo, auditSvc := newTestService()

	cfg, err := svc.GetEmailConfig(context.Background())
	require.NoError(t, err)
	assert.Nil(t, cfg)

	err = svc.UpdateEmailConfig(context.Background(), EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "u", SMTPPassword: "hunter2"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", repo.Email.SMTPPassword)

	logged := auditSvc.Changes[0]["email_config"].New.(EmailConfig)
	assert.Equal(t, "********", logged.SMTPPassword)
	assert.Equal(t, "u", (&logged).Sender())

	err = svc.UpdateEmailConfig(context.Background(), EmailConfig{SMTPHost: "smtp.example.com"})
	var ve *utils.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "is required", ve.Fields["smtp_port"])
}

func TestStoredProfileKeepsDefaultDisclaimer(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.Brokerage = &BrokerageProfile{Name: "Harbor", Disclaimer: ""}

	profile, err := svc.GetBrokerageProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Harbor", profile.Name)
	assert.Equal(t, DefaultDisclaimer, profile.Disclaimer)
	assert.Empty(t, repo.Brokerage.Disclaimer, "stored profile is not modified")
}

func TestRepositoryErrorsPropagate(t *testing.T) {
	svc, repo, auditSvc := newTestService()
	repo.Err = errors.New("server selection timeout")

	_, err := svc.GetBrokerageProfile(context.Background())
	assert.EqualError(t, err, "server selection timeout")

	err = svc.UpdateEmailConfig(context.Background(), EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587})
	assert.Error(t, err)
	assert.Empty(t, auditSvc.Changes)
}
