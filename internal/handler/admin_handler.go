package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type adminService interface {
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, req service.CreateAdminRequest) (*models.Admin, error)
}

// AdminHandler manages dashboard accounts. Routes are superadmin-only.
type AdminHandler struct {
	service adminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc adminService) *AdminHandler {
	return &AdminHandler{service: svc}
}

// List godoc
// @Summary List admins
// @Tags Admins
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admins [get]
func (h *AdminHandler) List(c *gin.Context) {
	admins, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, admins, nil)
}

// Create godoc
// @Summary Create admin
// @Tags Admins
// @Accept json
// @Produce json
// @Param payload body service.CreateAdminRequest true "Admin payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admins [post]
func (h *AdminHandler) Create(c *gin.Context) {
	var req service.CreateAdminRequest
	if err := bindPayload(c, &req, "admin"); err != nil {
		response.Error(c, err)
		return
	}
	admin, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, admin)
}
