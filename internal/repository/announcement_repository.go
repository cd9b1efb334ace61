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

const announcementColumns = `id, title, content, visible, created_at, updated_at`

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements, newest first. Hidden rows are skipped unless requested.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements`
	if !filter.IncludeHidden {
		query += ` WHERE visible = TRUE`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	announcements := []models.Announcement{}
	if err := r.db.SelectContext(ctx, &announcements, query); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// FindByID returns an announcement by identifier.
func (r *AnnouncementRepository) FindByID(ctx context.Context, id int64) (*models.Announcement, error) {
	query := `SELECT ` + announcementColumns + ` FROM announcements WHERE id = $1`
	var announcement models.Announcement
	if err := r.db.GetContext(ctx, &announcement, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find announcement: %w", err)
	}
	return &announcement, nil
}

// Create inserts a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	now := time.Now().UTC()
	announcement.CreatedAt = now
	announcement.UpdatedAt = now
	const query = `INSERT INTO announcements (title, content, visible, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, announcement.Title, announcement.Content, announcement.Visible, now).Scan(&announcement.ID); err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

// Update modifies an existing announcement.
func (r *AnnouncementRepository) Update(ctx context.Context, announcement *models.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	const query = `UPDATE announcements SET title = :title, content = :content, visible = :visible, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, announcement); err != nil {
		return fmt.Errorf("update announcement: %w", err)
	}
	return nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return nil
}
