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

const memberColumns = `id, name, email, role, phone, profile_picture_url, display_order, created_at, updated_at`

// MemberRepository persists club members.
type MemberRepository struct {
	db *sqlx.DB
}

// NewMemberRepository creates the repository.
func NewMemberRepository(db *sqlx.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// List returns members in display order.
func (r *MemberRepository) List(ctx context.Context) ([]models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members ORDER BY display_order ASC, id ASC`
	members := []models.Member{}
	if err := r.db.SelectContext(ctx, &members, query); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// FindByID returns a member by identifier.
func (r *MemberRepository) FindByID(ctx context.Context, id int64) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	var member models.Member
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find member: %w", err)
	}
	return &member, nil
}

// Create inserts a member. A nil displayOrder is computed in the same
// statement as one past the current maximum.
func (r *MemberRepository) Create(ctx context.Context, member *models.Member, displayOrder *int) error {
	now := time.Now().UTC()
	const query = `INSERT INTO members (name, email, role, phone, profile_picture_url, display_order, created_at, updated_at)
SELECT $1, $2, $3, $4, $5, COALESCE($6::int, COALESCE(MAX(display_order), 0) + 1), $7, $7 FROM members
RETURNING id, display_order`
	row := r.db.QueryRowxContext(ctx, query, member.Name, member.Email, member.Role, member.Phone, member.ProfilePictureURL, displayOrder, now)
	if err := row.Scan(&member.ID, &member.DisplayOrder); err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	member.CreatedAt = now
	member.UpdatedAt = now
	return nil
}

// Update overwrites the mutable member fields.
func (r *MemberRepository) Update(ctx context.Context, member *models.Member) error {
	member.UpdatedAt = time.Now().UTC()
	const query = `UPDATE members SET name = :name, email = :email, role = :role, phone = :phone,
profile_picture_url = :profile_picture_url, display_order = :display_order, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, member); err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	return nil
}

// Delete removes a member.
func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return nil
}

// Reorder applies every display order in one transaction. An unknown id
// rolls the whole batch back and is reported with sql.ErrNoRows.
func (r *MemberRepository) Reorder(ctx context.Context, orders []models.MemberOrder) error {
	if len(orders) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	now := time.Now().UTC()
	const query = `UPDATE members SET display_order = $1, updated_at = $2 WHERE id = $3`
	for _, order := range orders {
		res, err := tx.ExecContext(ctx, query, order.DisplayOrder, now, order.ID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder member %d: %w", order.ID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("reorder member %d: %w", order.ID, err)
		}
		if affected == 0 {
			_ = tx.Rollback()
			return &MissingRowError{ID: order.ID}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder tx: %w", err)
	}
	return nil
}

// Contacts returns the distinct non-empty phones and emails of every member.
func (r *MemberRepository) Contacts(ctx context.Context) (phones []string, emails []string, err error) {
	phones = []string{}
	if err = r.db.SelectContext(ctx, &phones, `SELECT DISTINCT phone FROM members WHERE phone <> '' ORDER BY phone`); err != nil {
		return nil, nil, fmt.Errorf("list member phones: %w", err)
	}
	emails = []string{}
	if err = r.db.SelectContext(ctx, &emails, `SELECT DISTINCT email FROM members WHERE email <> '' ORDER BY email`); err != nil {
		return nil, nil, fmt.Errorf("list member emails: %w", err)
	}
	return phones, emails, nil
}

// MissingRowError reports the id a batch statement expected to find.
type MissingRowError struct {
	ID int64
}

func (e *MissingRowError) Error() string {
	return fmt.Sprintf("row %d not found", e.ID)
}

// Unwrap lets callers match the error with sql.ErrNoRows.
func (e *MissingRowError) Unwrap() error {
	return sql.ErrNoRows
}
