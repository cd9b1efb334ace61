package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type seeRegistrationService interface {
	Register(ctx context.Context, req service.SeeRegisterRequest) (*models.SeeRegistration, error)
	List(ctx context.Context, status string) ([]models.SeeRegistration, error)
	UpdateStatus(ctx context.Context, req service.SeeStatusRequest) (*models.SeeRegistration, error)
	Export(ctx context.Context, format, status string) (*service.ExportFile, error)
}

// SeeRegistrationHandler handles company-visit registrations.
type SeeRegistrationHandler struct {
	service seeRegistrationService
}

// NewSeeRegistrationHandler creates a new registration handler.
func NewSeeRegistrationHandler(svc seeRegistrationService) *SeeRegistrationHandler {
	return &SeeRegistrationHandler{service: svc}
}

// Register godoc
// @Summary Register for a company visit
// @Tags SEE
// @Accept json
// @Produce json
// @Param payload body service.SeeRegisterRequest true "Registration"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /see-registrations [post]
func (h *SeeRegistrationHandler) Register(c *gin.Context) {
	var req service.SeeRegisterRequest
	if err := bindPayload(c, &req, "registration"); err != nil {
		response.Error(c, err)
		return
	}
	registration, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// List godoc
// @Summary List registrations
// @Tags SEE
// @Produce json
// @Param status query string false "pending, confirmed or cancelled"
// @Success 200 {object} response.Envelope
// @Router /see-registrations [get]
func (h *SeeRegistrationHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateStatus godoc
// @Summary Change registration status
// @Tags SEE
// @Accept json
// @Produce json
// @Param payload body service.SeeStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /see-registrations [patch]
func (h *SeeRegistrationHandler) UpdateStatus(c *gin.Context) {
	var req service.SeeStatusRequest
	if err := bindPayload(c, &req, "status"); err != nil {
		response.Error(c, err)
		return
	}
	registration, err := h.service.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// Export godoc
// @Summary Export registrations
// @Tags SEE
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Router /see-registrations/export [get]
func (h *SeeRegistrationHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Query("format"), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
