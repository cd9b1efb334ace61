package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the verified session claims.
const ContextAdminKey = "currentAdmin"

// SessionAuthenticator verifies a session cookie value.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.SessionClaims, error)
}

// Session protects routes by requiring a valid session cookie.
func Session(auth SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, "authentication required"))
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(ContextAdminKey, claims)
		c.Next()
	}
}

// OptionalSession attaches claims when a valid cookie is present but never blocks.
func OptionalSession(auth SessionAuthenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		if claims, err := auth.Authenticate(c.Request.Context(), token); err == nil {
			c.Set(ContextAdminKey, claims)
		}
		c.Next()
	}
}

// CurrentAdmin returns the claims stored by Session or OptionalSession.
func CurrentAdmin(c *gin.Context) (*models.SessionClaims, bool) {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*models.SessionClaims)
	return claims, ok && claims != nil
}
