package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

// auditWriteTimeout bounds an audit insert, which outlives the request it records.
const auditWriteTimeout = 5 * time.Second

type auditRepository interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
}

// AuditService records and lists admin actions.
type AuditService struct {
	repo         auditRepository
	logger       *zap.Logger
	writeTimeout time.Duration
}

// NewAuditService constructs the audit service.
func NewAuditService(repo auditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger, writeTimeout: auditWriteTimeout}
}

// Record stores entry. A failed write is logged and otherwise ignored.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditLog) {
	if s == nil || s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record audit log",
			zap.String("action", entry.Action),
			zap.String("resource", entry.Resource),
			zap.Error(err))
	}
}

// List returns a page of the audit trail.
func (s *AuditService) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list audit logs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return logs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
