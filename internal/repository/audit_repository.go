package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexus-club/admin-api/internal/models"
)

// AuditRepository stores and pages through the admin audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit log entry.
func (r *AuditRepository) Create(ctx context.Context, log *models.AuditLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	var payload interface{}
	if len(log.Payload) > 0 {
		payload = string(log.Payload)
	}
	const query = `INSERT INTO audit_logs (admin_id, action, resource, resource_id, payload, ip_address, user_agent, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, log.AdminID, log.Action, log.Resource, log.ResourceID, payload,
		log.IPAddress, log.UserAgent, log.CreatedAt)
	if err := row.Scan(&log.ID); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List returns a page of audit entries, newest first, with the total count.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	var conditions []string
	var args []interface{}
	if filter.AdminID != nil {
		args = append(args, *filter.AdminID)
		conditions = append(conditions, fmt.Sprintf("admin_id = $%d", len(args)))
	}
	if filter.Resource != "" {
		args = append(args, filter.Resource)
		conditions = append(conditions, fmt.Sprintf("resource = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	offset := (page - 1) * size

	listQuery := fmt.Sprintf(`SELECT id, admin_id, action, resource, resource_id, COALESCE(payload, '{}'::jsonb) AS payload,
COALESCE(ip_address, '') AS ip_address, COALESCE(user_agent, '') AS user_agent, created_at
FROM audit_logs%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d`, where, size, offset)
	logs := []models.AuditLog{}
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list audit logs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM audit_logs"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count audit logs: %w", err)
	}
	return logs, total, nil
}
