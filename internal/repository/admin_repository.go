package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexus-club/admin-api/internal/models"
)

const adminColumns = `id, username, password_hash, display_name, role, created_at, updated_at`

// AdminRepository provides database access for dashboard accounts.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new instance of AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername returns an admin by case-insensitive username.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE LOWER(username) = LOWER($1) LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by username: %w", err)
	}
	return &admin, nil
}

// FindByID returns an admin by identifier.
func (r *AdminRepository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins WHERE id = $1 LIMIT 1`
	var admin models.Admin
	if err := r.db.GetContext(ctx, &admin, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find admin by id: %w", err)
	}
	return &admin, nil
}

// List returns every admin ordered by username.
func (r *AdminRepository) List(ctx context.Context) ([]models.Admin, error) {
	query := `SELECT ` + adminColumns + ` FROM admins ORDER BY LOWER(username)`
	admins := []models.Admin{}
	if err := r.db.SelectContext(ctx, &admins, query); err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	return admins, nil
}

// Create inserts a new admin and fills its generated fields.
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	now := time.Now().UTC()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	const query = `INSERT INTO admins (username, password_hash, display_name, role, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, admin.Username, admin.PasswordHash, admin.DisplayName, admin.Role, now).Scan(&admin.ID); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}
