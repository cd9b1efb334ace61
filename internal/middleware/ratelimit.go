package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/httprate"

	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

// RateLimit bounds requests per client IP over window. Rejected requests get
// the JSON 429 envelope along with the limiter's X-RateLimit headers.
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := httprate.Limit(limit, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {}),
	)
	return func(c *gin.Context) {
		passed := false
		limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !passed {
			response.Abort(c, appErrors.Clone(appErrors.ErrTooManyRequests, "too many attempts, try again later"))
		}
	}
}
