package models

import "time"

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	Visible   bool      `db:"visible" json:"visible"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// AnnouncementFilter allows listing announcements.
type AnnouncementFilter struct {
	IncludeHidden bool
}
