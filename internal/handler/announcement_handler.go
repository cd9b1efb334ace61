package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, includeHidden bool) ([]models.Announcement, error)
	Get(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, req service.AnnouncementRequest) (*models.Announcement, error)
	Update(ctx context.Context, id int64, req service.AnnouncementRequest) (*models.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

// AnnouncementHandler manages announcement endpoints.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler creates a new announcement handler.
func NewAnnouncementHandler(svc announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: svc}
}

// List godoc
// @Summary List announcements
// @Description Visitors see visible announcements; all=true also returns hidden ones for a logged-in admin
// @Tags Announcements
// @Produce json
// @Param all query bool false "Include hidden announcements"
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *AnnouncementHandler) List(c *gin.Context) {
	includeHidden := c.Query("all") == "true" && claimsFromContext(c) != nil
	items, err := h.service.List(c.Request.Context(), includeHidden)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [get]
func (h *AnnouncementHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !item.Visible && claimsFromContext(c) == nil {
		response.Error(c, errAnnouncementNotFound)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Create announcement
// @Description Members are notified in the background when a provider is configured
// @Tags Announcements
// @Accept json
// @Produce json
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	req, err := bindAnnouncement(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Update announcement
// @Tags Announcements
// @Accept json
// @Produce json
// @Param id path int true "Announcement ID"
// @Param payload body service.AnnouncementRequest true "Announcement payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [put]
func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := bindAnnouncement(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete announcement
// @Tags Announcements
// @Param id path int true "Announcement ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /announcements/{id} [delete]
func (h *AnnouncementHandler) Delete(c *gin.Context) {
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

func bindAnnouncement(c *gin.Context) (service.AnnouncementRequest, error) {
	var req service.AnnouncementRequest
	if err := bindPayload(c, &req, "announcement"); err != nil {
		return req, err
	}
	if blankFormField(c, "visible") {
		req.Visible = nil
	}
	return req, nil
}
