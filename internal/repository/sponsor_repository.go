package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/nexus-club/admin-api/internal/models"
)

const sponsorColumns = `id, name, sector, phone, email, contact_person, contact_position, called, email_sent, comments, created_at, updated_at`

// sponsorPatchColumns maps patchable JSON fields to their columns.
var sponsorPatchColumns = map[string]string{
	"name":            "name",
	"sector":          "sector",
	"phone":           "phone",
	"email":           "email",
	"contactPerson":   "contact_person",
	"contactPosition": "contact_position",
	"called":          "called",
	"emailSent":       "email_sent",
	"comments":        "comments",
}

// SponsorPatchable reports whether field may be changed by a partial update.
func SponsorPatchable(field string) bool {
	_, ok := sponsorPatchColumns[field]
	return ok
}

// SponsorRepository persists sponsor prospects.
type SponsorRepository struct {
	db *sqlx.DB
}

// NewSponsorRepository creates the repository.
func NewSponsorRepository(db *sqlx.DB) *SponsorRepository {
	return &SponsorRepository{db: db}
}

// List returns sponsors matching the filter, most recently updated first.
func (r *SponsorRepository) List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error) {
	var conditions []string
	var args []interface{}
	if filter.Called != nil {
		args = append(args, *filter.Called)
		conditions = append(conditions, fmt.Sprintf("called = $%d", len(args)))
	}
	if filter.EmailSent != nil {
		args = append(args, *filter.EmailSent)
		conditions = append(conditions, fmt.Sprintf("email_sent = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, likePattern(term))
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(name) LIKE $%d OR LOWER(COALESCE(sector, '')) LIKE $%d OR LOWER(COALESCE(contact_person, '')) LIKE $%d OR LOWER(COALESCE(email, '')) LIKE $%d)",
			n, n, n, n))
	}

	query := `SELECT ` + sponsorColumns + ` FROM sponsors`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC, id DESC"

	sponsors := []models.Sponsor{}
	if err := r.db.SelectContext(ctx, &sponsors, query, args...); err != nil {
		return nil, fmt.Errorf("list sponsors: %w", err)
	}
	return sponsors, nil
}

// FindByID returns a sponsor by identifier.
func (r *SponsorRepository) FindByID(ctx context.Context, id int64) (*models.Sponsor, error) {
	query := `SELECT ` + sponsorColumns + ` FROM sponsors WHERE id = $1`
	var sponsor models.Sponsor
	if err := r.db.GetContext(ctx, &sponsor, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find sponsor: %w", err)
	}
	return &sponsor, nil
}

// Create inserts a sponsor.
func (r *SponsorRepository) Create(ctx context.Context, sponsor *models.Sponsor) error {
	now := time.Now().UTC()
	sponsor.CreatedAt = now
	sponsor.UpdatedAt = now
	const query = `INSERT INTO sponsors (name, sector, phone, email, contact_person, contact_position, called, email_sent, comments, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, sponsor.Name, sponsor.Sector, sponsor.Phone, sponsor.Email, sponsor.ContactPerson,
		sponsor.ContactPosition, sponsor.Called, sponsor.EmailSent, sponsor.Comments, now)
	if err := row.Scan(&sponsor.ID); err != nil {
		return fmt.Errorf("create sponsor: %w", err)
	}
	return nil
}

// Update overwrites every sponsor field.
func (r *SponsorRepository) Update(ctx context.Context, sponsor *models.Sponsor) error {
	sponsor.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sponsors SET name = :name, sector = :sector, phone = :phone, email = :email,
contact_person = :contact_person, contact_position = :contact_position, called = :called, email_sent = :email_sent,
comments = :comments, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, sponsor); err != nil {
		return fmt.Errorf("update sponsor: %w", err)
	}
	return nil
}

// Patch updates only the given fields, keyed by their JSON names. Fields
// outside the allow-list are rejected before any SQL is issued.
func (r *SponsorRepository) Patch(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return fmt.Errorf("patch sponsor: no fields")
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if !SponsorPatchable(name) {
			return fmt.Errorf("patch sponsor: field %q not allowed", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]interface{}, 0, len(names)+2)
	for _, name := range names {
		args = append(args, fields[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", sponsorPatchColumns[name], len(args)))
	}
	args = append(args, time.Now().UTC())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	args = append(args, id)
	query := fmt.Sprintf("UPDATE sponsors SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("patch sponsor: %w", err)
	}
	return nil
}

// Delete removes a sponsor.
func (r *SponsorRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sponsors WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete sponsor: %w", err)
	}
	return nil
}
