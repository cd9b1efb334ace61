package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type eventService interface {
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, req service.EventRequest, images []service.FileUpload) (*models.Event, error)
	Update(ctx context.Context, id int64, req service.EventRequest, images []service.FileUpload) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
}

// EventHandler exposes club events.
type EventHandler struct {
	service eventService
}

// NewEventHandler creates a new event handler.
func NewEventHandler(svc eventService) *EventHandler {
	return &EventHandler{service: svc}
}

// List godoc
// @Summary List events
// @Tags Events
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /events [get]
func (h *EventHandler) List(c *gin.Context) {
	events, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// Get godoc
// @Summary Get event
// @Tags Events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Create godoc
// @Summary Create event
// @Tags Events
// @Accept mpfd
// @Produce json
// @Param title formData string true "Title"
// @Param date formData string true "Date (YYYY-MM-DD or RFC3339)"
// @Param location formData string true "Location"
// @Param description formData string false "Description"
// @Param images[] formData file false "Images"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /events [post]
func (h *EventHandler) Create(c *gin.Context) {
	req, images, err := h.bindEvent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Create(c.Request.Context(), req, images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, event)
}

// Update godoc
// @Summary Update event
// @Description Image URLs are replaced only when new files are sent
// @Tags Events
// @Accept mpfd
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [put]
func (h *EventHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, images, err := h.bindEvent(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	event, err := h.service.Update(c.Request.Context(), id, req, images)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, event, nil)
}

// Delete godoc
// @Summary Delete event
// @Tags Events
// @Param id path int true "Event ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(c *gin.Context) {
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

func (h *EventHandler) bindEvent(c *gin.Context) (service.EventRequest, []service.FileUpload, error) {
	var req service.EventRequest
	if err := bindPayload(c, &req, "event"); err != nil {
		return req, nil, err
	}
	images, err := formFiles(c, "images[]", "images")
	return req, images, err
}
