package models

import "time"

// ProjectStatus tracks the lifecycle of a club project.
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusInactive  ProjectStatus = "inactive"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project represents a club project.
type Project struct {
	ID          int64         `db:"id" json:"id"`
	Name        string        `db:"name" json:"name"`
	Description string        `db:"description" json:"description"`
	Status      ProjectStatus `db:"status" json:"status"`
	StartDate   time.Time     `db:"start_date" json:"startDate"`
	EndDate     *time.Time    `db:"end_date" json:"endDate,omitempty"`
	ImageURL    *string       `db:"image_url" json:"imageUrl,omitempty"`
	SiteURL     *string       `db:"site_url" json:"siteUrl,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}
