package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type newbieService interface {
	Apply(ctx context.Context, req service.NewbieApplyRequest) (*models.NewbieApplication, error)
	List(ctx context.Context, status string) ([]models.NewbieApplication, error)
	UpdateStatus(ctx context.Context, req service.NewbieStatusRequest) (*models.NewbieApplication, error)
	Delete(ctx context.Context, id int64) error
	Export(ctx context.Context, format, status string) (*service.ExportFile, error)
}

// NewbieHandler handles membership applications.
type NewbieHandler struct {
	service newbieService
}

// NewNewbieHandler creates a new newbie handler.
func NewNewbieHandler(svc newbieService) *NewbieHandler {
	return &NewbieHandler{service: svc}
}

// Apply godoc
// @Summary Submit an application
// @Tags Newbies
// @Accept json
// @Produce json
// @Param payload body service.NewbieApplyRequest true "Application"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /newbies [post]
func (h *NewbieHandler) Apply(c *gin.Context) {
	var req service.NewbieApplyRequest
	if err := bindPayload(c, &req, "application"); err != nil {
		response.Error(c, err)
		return
	}
	application, err := h.service.Apply(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, application)
}

// List godoc
// @Summary List applications
// @Tags Newbies
// @Produce json
// @Param status query string false "pending, accepted or declined"
// @Success 200 {object} response.Envelope
// @Router /newbies [get]
func (h *NewbieHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateStatus godoc
// @Summary Review an application
// @Description Pending applications may be accepted or declined
// @Tags Newbies
// @Accept json
// @Produce json
// @Param payload body service.NewbieStatusRequest true "Status change"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /newbies [patch]
func (h *NewbieHandler) UpdateStatus(c *gin.Context) {
	var req service.NewbieStatusRequest
	if err := bindPayload(c, &req, "status"); err != nil {
		response.Error(c, err)
		return
	}
	application, err := h.service.UpdateStatus(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// Delete godoc
// @Summary Delete application
// @Tags Newbies
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /newbies/{id} [delete]
func (h *NewbieHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"id": id}, nil)
}

// Export godoc
// @Summary Export applications
// @Tags Newbies
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Param status query string false "Status filter"
// @Success 200 {file} file
// @Router /newbies/export [get]
func (h *NewbieHandler) Export(c *gin.Context) {
	file, err := h.service.Export(c.Request.Context(), c.Query("format"), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
