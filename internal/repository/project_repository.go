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

const projectColumns = `id, name, description, status, start_date, end_date, image_url, site_url, created_at, updated_at`

// ProjectRepository persists club projects.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates the repository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns projects, newest start first.
func (r *ProjectRepository) List(ctx context.Context) ([]models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY start_date DESC, id DESC`
	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID returns a project by identifier.
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return &project, nil
}

// Create inserts a project.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	const query = `INSERT INTO projects (name, description, status, start_date, end_date, image_url, site_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, project.Name, project.Description, project.Status, project.StartDate,
		project.EndDate, project.ImageURL, project.SiteURL, now)
	if err := row.Scan(&project.ID); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update overwrites a project.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	const query = `UPDATE projects SET name = :name, description = :description, status = :status, start_date = :start_date,
end_date = :end_date, image_url = :image_url, site_url = :site_url, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// Delete removes a project by id.
func (r *ProjectRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
