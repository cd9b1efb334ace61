package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating an admin.
type LoginRequest struct {
	Username  string `json:"username" form:"username" validate:"required"`
	Password  string `json:"password" form:"password" validate:"required"`
	IP        string `json:"-" form:"-"`
	UserAgent string `json:"-" form:"-"`
}

// AdminIdentity is the trusted view of the logged-in admin.
type AdminIdentity struct {
	AdminID     int64     `json:"adminId"`
	DisplayName string    `json:"displayName"`
	Role        AdminRole `json:"role"`
}

// Session is returned by a successful login. Token is the signed cookie value.
type Session struct {
	Admin     AdminIdentity `json:"admin"`
	Token     string        `json:"-"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// SessionClaims is the signed cookie payload. The registered ID claim carries
// the session id used for revocation.
type SessionClaims struct {
	AdminID     int64     `json:"adminId"`
	DisplayName string    `json:"displayName"`
	Role        AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// Identity extracts the admin identity from the claims.
func (c *SessionClaims) Identity() AdminIdentity {
	return AdminIdentity{AdminID: c.AdminID, DisplayName: c.DisplayName, Role: c.Role}
}
