package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

type auditService interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, *models.Pagination, error)
}

// AuditHandler exposes the audit trail to superadmins.
type AuditHandler struct {
	service auditService
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(svc auditService) *AuditHandler {
	return &AuditHandler{service: svc}
}

// List godoc
// @Summary List audit logs
// @Tags Audit
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param adminId query int false "Admin ID"
// @Param resource query string false "Resource name"
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	filter := models.AuditLogFilter{Resource: c.Query("resource")}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if raw := c.Query("adminId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, appErrors.Validation(err, "adminId must be an integer"))
			return
		}
		filter.AdminID = &id
	}

	logs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, pagination)
}
