package models

import "time"

// NewbieStatus is the review state of a membership application.
type NewbieStatus string

const (
	NewbieStatusPending  NewbieStatus = "pending"
	NewbieStatusAccepted NewbieStatus = "accepted"
	NewbieStatusDeclined NewbieStatus = "declined"
)

// CanTransition reports whether an application may move from s to next.
// Only pending applications are decided; repeating the current status is a no-op.
func (s NewbieStatus) CanTransition(next NewbieStatus) bool {
	if s == next {
		return true
	}
	return s == NewbieStatusPending && (next == NewbieStatusAccepted || next == NewbieStatusDeclined)
}

// NewbieApplication is a newcomer's request to join the club.
type NewbieApplication struct {
	ID              int64        `db:"id" json:"id"`
	Nom             string       `db:"nom" json:"nom"`
	Prenom          string       `db:"prenom" json:"prenom"`
	Classe          *string      `db:"classe" json:"classe"`
	Hobbies         *string      `db:"hobbies" json:"hobbies"`
	Motivation      *string      `db:"motivation" json:"motivation"`
	AdditionalNotes *string      `db:"additional_notes" json:"additionalNotes"`
	Email           *string      `db:"email" json:"email"`
	Status          NewbieStatus `db:"status" json:"status"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}
