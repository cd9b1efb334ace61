package models

import "time"

// AdminRole represents the available roles for dashboard administrators.
type AdminRole string

const (
	AdminRoleSuperAdmin AdminRole = "superadmin"
	AdminRoleAdmin      AdminRole = "admin"
)

// Admin represents a dashboard account stored in the admins table.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	DisplayName  string    `db:"display_name" json:"displayName"`
	Role         AdminRole `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}
