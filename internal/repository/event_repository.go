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

const eventColumns = `id, title, date, location, description, image_urls, created_at, updated_at`

// EventRepository persists club events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events, most recent first.
func (r *EventRepository) List(ctx context.Context) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date DESC, id DESC`
	events := []models.Event{}
	if err := r.db.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// FindByID returns an event by identifier.
func (r *EventRepository) FindByID(ctx context.Context, id int64) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return &event, nil
}

// Create inserts an event.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	if event.ImageURLs == nil {
		event.ImageURLs = []string{}
	}
	const query = `INSERT INTO events (title, date, location, description, image_urls, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, event.Title, event.Date, event.Location, event.Description, event.ImageURLs, now).Scan(&event.ID); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update overwrites an event including its image list.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	if event.ImageURLs == nil {
		event.ImageURLs = []string{}
	}
	const query = `UPDATE events SET title = :title, date = :date, location = :location, description = :description,
image_urls = :image_urls, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
