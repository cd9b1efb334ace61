package models

import "time"

// MemberRole is the club position held by a member.
type MemberRole string

const (
	MemberRolePresident        MemberRole = "president"
	MemberRoleVicePresident    MemberRole = "vice_president"
	MemberRoleSecretary        MemberRole = "secretary"
	MemberRoleTreasurer        MemberRole = "treasurer"
	MemberRoleHeadOfDepartment MemberRole = "head_of_department"
	MemberRoleMember           MemberRole = "member"
	MemberRoleAlumni           MemberRole = "alumni"
)

// MemberRoles lists every accepted role.
var MemberRoles = []MemberRole{
	MemberRolePresident,
	MemberRoleVicePresident,
	MemberRoleSecretary,
	MemberRoleTreasurer,
	MemberRoleHeadOfDepartment,
	MemberRoleMember,
	MemberRoleAlumni,
}

// Member represents a club member shown on the public team page.
type Member struct {
	ID                int64      `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	Role              MemberRole `db:"role" json:"role"`
	Phone             string     `db:"phone" json:"phone"`
	ProfilePictureURL *string    `db:"profile_picture_url" json:"profilePictureUrl,omitempty"`
	DisplayOrder      int        `db:"display_order" json:"displayOrder"`
	CreatedAt         time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updatedAt"`
}

// MemberOrder is one (id, displayOrder) pair of a bulk reorder.
type MemberOrder struct {
	ID           int64 `json:"id" validate:"required,gt=0"`
	DisplayOrder int   `json:"displayOrder" validate:"min=0"`
}
