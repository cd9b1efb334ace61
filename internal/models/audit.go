package models

import (
	"encoding/json"
	"time"
)

// AuditAction constants represent actions to be logged.
const (
	AuditActionLogin  = "LOGIN"
	AuditActionLogout = "LOGOUT"
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         int64           `db:"id" json:"id"`
	AdminID    *int64          `db:"admin_id" json:"adminId,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	Payload    json.RawMessage `db:"payload" json:"payload,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// AuditLogFilter pages through the audit trail.
type AuditLogFilter struct {
	AdminID  *int64
	Resource string
	Page     int
	PageSize int
}
