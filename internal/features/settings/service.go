package settings

import (
	"context"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/config"
	"broker-crm/internal/features/audit"
	"broker-crm/pkg/utils"
)

type SettingsService interface {
	GetEmailConfig(ctx context.Context) (*EmailConfig, error)
	UpdateEmailConfig(ctx context.Context, config EmailConfig) error
	GetBrokerageProfile(ctx context.Context) (*BrokerageProfile, error)
	UpdateBrokerageProfile(ctx context.Context, profile BrokerageProfile) error
}

type SettingsServiceImpl struct {
	Repo         SettingsRepository
	AuditService audit.AuditService
	Config       *config.Config
}

func NewSettingsService(repo SettingsRepository, auditService audit.AuditService, cfg *config.Config) SettingsService {
	return &SettingsServiceImpl{
		Repo:         repo,
		AuditService: auditService,
		Config:       cfg,
	}
}

// GetEmailConfig returns nil, nil while SMTP has not been configured.
func (s *SettingsServiceImpl) GetEmailConfig(ctx context.Context) (*EmailConfig, error) {
	return s.Repo.GetEmailConfig(ctx)
}

func (s *SettingsServiceImpl) UpdateEmailConfig(ctx context.Context, config EmailConfig) error {
	if err := utils.ValidateStruct(config); err != nil {
		return err
	}
	oldConfig, _ := s.GetEmailConfig(ctx)

	err := s.Repo.SaveEmailConfig(ctx, &config)
	if err == nil {
		var old interface{}
		if oldConfig != nil {
			old = oldConfig.Redacted()
		}
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "email_config", map[string]common_models.Change{
			"email_config": {
				Old: old,
				New: config.Redacted(),
			},
		})
	}
	return err
}

// GetBrokerageProfile never returns nil: an unsaved profile falls back to
// BROKERAGE_NAME and the default disclaimer.
func (s *SettingsServiceImpl) GetBrokerageProfile(ctx context.Context) (*BrokerageProfile, error) {
	stored, err := s.Repo.GetBrokerageProfile(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return &BrokerageProfile{
			Name:       s.Config.BrokerageName,
			Disclaimer: DefaultDisclaimer,
		}, nil
	}
	profile := *stored
	if profile.Disclaimer == "" {
		profile.Disclaimer = DefaultDisclaimer
	}
	return &profile, nil
}

func (s *SettingsServiceImpl) UpdateBrokerageProfile(ctx context.Context, profile BrokerageProfile) error {
	if err := utils.ValidateStruct(profile); err != nil {
		return err
	}
	oldProfile, _ := s.GetBrokerageProfile(ctx)

	err := s.Repo.SaveBrokerageProfile(ctx, &profile)
	if err == nil {
		_ = s.AuditService.LogChange(ctx, common_models.AuditActionSettings, "settings", "brokerage_profile", map[string]common_models.Change{
			"brokerage_profile": {
				Old: oldProfile,
				New: profile,
			},
		})
	}
	return err
}
