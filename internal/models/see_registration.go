package models

import "time"

// SeeStatus is the state of a company-visit registration.
type SeeStatus string

const (
	SeeStatusPending   SeeStatus = "pending"
	SeeStatusConfirmed SeeStatus = "confirmed"
	SeeStatusCancelled SeeStatus = "cancelled"
)

// CanTransition reports whether a registration may move from s to next.
// A confirmed seat can still be cancelled; a cancelled one is final.
func (s SeeStatus) CanTransition(next SeeStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case SeeStatusPending:
		return next == SeeStatusConfirmed || next == SeeStatusCancelled
	case SeeStatusConfirmed:
		return next == SeeStatusCancelled
	}
	return false
}

// SeeRegistration is a student's registration for a company visit.
type SeeRegistration struct {
	ID         int64     `db:"id" json:"id"`
	FullName   string    `db:"full_name" json:"fullName"`
	Email      string    `db:"email" json:"email"`
	Phone      string    `db:"phone" json:"phone"`
	StudyPlace string    `db:"study_place" json:"studyPlace"`
	Classe     string    `db:"classe" json:"classe"`
	Motivation string    `db:"motivation" json:"motivation"`
	Extra      *string   `db:"extra" json:"extra"`
	Status     SeeStatus `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
