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

const newbieColumns = `id, nom, prenom, classe, hobbies, motivation, additional_notes, email, status, created_at, updated_at`

// NewbieRepository persists membership applications.
type NewbieRepository struct {
	db *sqlx.DB
}

// NewNewbieRepository creates the repository.
func NewNewbieRepository(db *sqlx.DB) *NewbieRepository {
	return &NewbieRepository{db: db}
}

// List returns applications, newest first, optionally narrowed to one status.
func (r *NewbieRepository) List(ctx context.Context, status *models.NewbieStatus) ([]models.NewbieApplication, error) {
	query := `SELECT ` + newbieColumns + ` FROM newbie_applications`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	items := []models.NewbieApplication{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("list newbie applications: %w", err)
	}
	return items, nil
}

// FindByID returns an application by identifier.
func (r *NewbieRepository) FindByID(ctx context.Context, id int64) (*models.NewbieApplication, error) {
	query := `SELECT ` + newbieColumns + ` FROM newbie_applications WHERE id = $1`
	var item models.NewbieApplication
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find newbie application: %w", err)
	}
	return &item, nil
}

// Create inserts an application.
func (r *NewbieRepository) Create(ctx context.Context, item *models.NewbieApplication) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	const query = `INSERT INTO newbie_applications (nom, prenom, classe, hobbies, motivation, additional_notes, email, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, item.Nom, item.Prenom, item.Classe, item.Hobbies, item.Motivation,
		item.AdditionalNotes, item.Email, item.Status, now)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("create newbie application: %w", err)
	}
	return nil
}

// UpdateStatus moves an application from one status to another. It reports
// false when the stored status no longer equals from.
func (r *NewbieRepository) UpdateStatus(ctx context.Context, id int64, from, to models.NewbieStatus) (bool, error) {
	const query = `UPDATE newbie_applications SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	res, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update newbie status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update newbie status: %w", err)
	}
	return affected == 1, nil
}

// Delete removes an application.
func (r *NewbieRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM newbie_applications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete newbie application: %w", err)
	}
	return nil
}
