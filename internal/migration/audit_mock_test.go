package migration

import (
	"context"

	common_models "broker-crm/internal/common/models"
	"broker-crm/internal/features/audit"
)

type MockAuditService struct {
	Records []string
}

func (m *MockAuditService) LogChange(ctx context.Context, action common_models.AuditAction, module, recordID string, changes map[string]common_models.Change) error {
	m.Records = append(m.Records, string(action)+" "+module+" "+recordID)
	return nil
}

func (m *MockAuditService) ListLogs(ctx context.Context, filter audit.Filter, page, limit int64) ([]common_models.AuditLog, error) {
	return nil, nil
}
