package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

// RequireRoles lets the request through only when the session role is listed.
// It must run after Session.
func RequireRoles(roles ...models.AdminRole) gin.HandlerFunc {
	allowed := make(map[models.AdminRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims, ok := CurrentAdmin(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
