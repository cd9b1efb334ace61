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

const seeColumns = `id, full_name, email, phone, study_place, classe, motivation, extra, status, created_at, updated_at`

// SeeRegistrationRepository persists company-visit registrations.
type SeeRegistrationRepository struct {
	db *sqlx.DB
}

// NewSeeRegistrationRepository creates the repository.
func NewSeeRegistrationRepository(db *sqlx.DB) *SeeRegistrationRepository {
	return &SeeRegistrationRepository{db: db}
}

// List returns registrations, newest first, optionally narrowed to one status.
func (r *SeeRegistrationRepository) List(ctx context.Context, status *models.SeeStatus) ([]models.SeeRegistration, error) {
	query := `SELECT ` + seeColumns + ` FROM see_registrations`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	items := []models.SeeRegistration{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list see registrations: %w", err)
	}
	return items, nil
}

// FindByID returns a registration by identifier.
func (r *SeeRegistrationRepository) FindByID(ctx context.Context, id int64) (*models.SeeRegistration, error) {
	query := `SELECT ` + seeColumns + ` FROM see_registrations WHERE id = $1`
	var item models.SeeRegistration
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find see registration: %w", err)
	}
	return &item, nil
}

// Create inserts a registration.
func (r *SeeRegistrationRepository) Create(ctx context.Context, item *models.SeeRegistration) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	const query = `INSERT INTO see_registrations (full_name, email, phone, study_place, classe, motivation, extra, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, item.FullName, item.Email, item.Phone, item.StudyPlace, item.Classe,
		item.Motivation, item.Extra, item.Status, now)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("create see registration: %w", err)
	}
	return nil
}

// UpdateStatus moves a registration from one status to another. It reports
// false when the stored status no longer equals from.
func (r *SeeRegistrationRepository) UpdateStatus(ctx context.Context, id int64, from, to models.SeeStatus) (bool, error) {
	const query = `UPDATE see_registrations SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update see status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update see status: %w", err)
	}
	return affected == 1, nil
}
