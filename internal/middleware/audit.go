package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry *models.AuditLog)
}

// Audit records every successful mutation made by an authenticated admin on
// resource. Reads and failed requests are not recorded.
func Audit(recorder AuditRecorder, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		action := actionFor(c.Request.Method)
		if recorder == nil || action == "" || c.Writer.Status() >= http.StatusBadRequest {
			return
		}
		claims, ok := CurrentAdmin(c)
		if !ok {
			return
		}

		payload, _ := json.Marshal(map[string]interface{}{
			"path":    c.FullPath(),
			"method":  c.Request.Method,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		})

		adminID := claims.AdminID
		entry := &models.AuditLog{
			AdminID:   &adminID,
			Action:    action,
			Resource:  resource,
			Payload:   payload,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		recorder.Record(c.Request.Context(), entry)
	}
}

func actionFor(method string) string {
	switch method {
	case http.MethodPost:
		return models.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return models.AuditActionUpdate
	case http.MethodDelete:
		return models.AuditActionDelete
	}
	return ""
}
