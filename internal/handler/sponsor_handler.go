package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/response"
)

type sponsorService interface {
	List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error)
	Get(ctx context.Context, id int64) (*models.Sponsor, error)
	Create(ctx context.Context, req service.SponsorRequest) (*models.Sponsor, error)
	Update(ctx context.Context, id int64, req service.SponsorRequest) (*models.Sponsor, error)
	Patch(ctx context.Context, id int64, raw map[string]json.RawMessage) (*models.Sponsor, error)
	Delete(ctx context.Context, id int64) error
}

// SponsorHandler exposes the sponsor prospect board.
type SponsorHandler struct {
	service sponsorService
}

// NewSponsorHandler creates a new sponsor handler.
func NewSponsorHandler(svc sponsorService) *SponsorHandler {
	return &SponsorHandler{service: svc}
}

// List godoc
// @Summary List sponsors
// @Tags Sponsors
// @Produce json
// @Param called query bool false "Filter by called flag"
// @Param emailSent query bool false "Filter by emailSent flag"
// @Param search query string false "Matches name, sector or contact"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sponsors [get]
func (h *SponsorHandler) List(c *gin.Context) {
	filter := models.SponsorFilter{Search: strings.TrimSpace(c.Query("search"))}
	var err error
	if filter.Called, err = queryBool(c, "called"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.EmailSent, err = queryBool(c, "emailSent"); err != nil {
		response.Error(c, err)
		return
	}

	sponsors, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsors, nil)
}

// Get godoc
// @Summary Get sponsor
// @Tags Sponsors
// @Produce json
// @Param id path int true "Sponsor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sponsors/{id} [get]
func (h *SponsorHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sponsor, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// Create godoc
// @Summary Create sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param payload body service.SponsorRequest true "Sponsor payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sponsors [post]
func (h *SponsorHandler) Create(c *gin.Context) {
	var req service.SponsorRequest
	if err := bindPayload(c, &req, "sponsor"); err != nil {
		response.Error(c, err)
		return
	}
	sponsor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sponsor)
}

// Update godoc
// @Summary Replace sponsor
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param id path int true "Sponsor ID"
// @Param payload body service.SponsorRequest true "Sponsor payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sponsors/{id} [put]
func (h *SponsorHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SponsorRequest
	if err := bindPayload(c, &req, "sponsor"); err != nil {
		response.Error(c, err)
		return
	}
	sponsor, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// Patch godoc
// @Summary Patch sponsor
// @Description Only name, sector, phone, email, contactPerson, contactPosition, called, emailSent and comments may be sent
// @Tags Sponsors
// @Accept json
// @Produce json
// @Param id path int true "Sponsor ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /sponsors/{id} [patch]
func (h *SponsorHandler) Patch(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		response.Error(c, appErrors.Validation(err, "invalid sponsor payload"))
		return
	}
	sponsor, err := h.service.Patch(c.Request.Context(), id, raw)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sponsor, nil)
}

// Delete godoc
// @Summary Delete sponsor
// @Tags Sponsors
// @Param id path int true "Sponsor ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sponsors/{id} [delete]
func (h *SponsorHandler) Delete(c *gin.Context) {
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

func queryBool(c *gin.Context, key string) (*bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, appErrors.Validation(err, key+" must be true or false")
	}
	return &v, nil
}
