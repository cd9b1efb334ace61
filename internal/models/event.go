package models

import (
	"time"

	"github.com/lib/pq"
)

// Event represents a club event with its gallery.
type Event struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Date        time.Time      `db:"date" json:"date"`
	Location    string         `db:"location" json:"location"`
	Description *string        `db:"description" json:"description,omitempty"`
	ImageURLs   pq.StringArray `db:"image_urls" json:"imageUrls"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}
