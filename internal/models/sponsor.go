package models

import "time"

// Sponsor is a prospect or partner company tracked by the partnerships team.
type Sponsor struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Sector          *string   `db:"sector" json:"sector"`
	Phone           *string   `db:"phone" json:"phone"`
	Email           *string   `db:"email" json:"email"`
	ContactPerson   *string   `db:"contact_person" json:"contactPerson"`
	ContactPosition *string   `db:"contact_position" json:"contactPosition"`
	Called          bool      `db:"called" json:"called"`
	EmailSent       bool      `db:"email_sent" json:"emailSent"`
	Comments        *string   `db:"comments" json:"comments"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// SponsorFilter narrows the sponsor list.
type SponsorFilter struct {
	Called    *bool
	EmailSent *bool
	Search    string
}
