package audit

import (
	"context"
	"time"

	common_models "broker-crm/internal/common/models"
	"broker-crm/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SystemActor is recorded when no authenticated user is on the context,
// e.g. for scheduled jobs and the migration CLI.
const SystemActor = "system"

type AuditService interface {
	LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error
	ListLogs(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, error)
}

type AuditServiceImpl struct {
	Repo   AuditRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewAuditService(repo AuditRepository, logger *zap.Logger) AuditService {
	return &AuditServiceImpl{
		Repo:   repo,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action common_models.AuditAction, module string, recordID string, changes map[string]common_models.Change) error {
	actorID := SystemActor
	if claims, ok := utils.ClaimsFromContext(ctx); ok && claims.UserID != "" {
		actorID = claims.UserID
	}

	log := common_models.AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Module:    module,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: s.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, log); err != nil {
		s.Logger.Warn("audit log write failed",
			zap.String("module", module),
			zap.String("record_id", recordID),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filter Filter, page, limit int64) ([]common_models.AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return s.Repo.List(ctx, filter, limit, (page-1)*limit)
}
