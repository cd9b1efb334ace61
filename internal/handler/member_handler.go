package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type memberService interface {
	List(ctx context.Context) ([]models.Member, error)
	Get(ctx context.Context, id int64) (*models.Member, error)
	Create(ctx context.Context, req service.MemberRequest, picture *service.FileUpload) (*models.Member, error)
	Update(ctx context.Context, id int64, req service.MemberRequest, picture *service.FileUpload) (*models.Member, error)
	Reorder(ctx context.Context, req service.ReorderMembersRequest) error
	Delete(ctx context.Context, id int64) error
}

// MemberHandler exposes the club roster.
type MemberHandler struct {
	service memberService
}

// NewMemberHandler creates a new member handler.
func NewMemberHandler(svc memberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List members
// @Description Ordered by displayOrder then id
// @Tags Members
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	members, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, nil)
}

// Get godoc
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Create godoc
// @Summary Create member
// @Description Accepts JSON, urlencoded or multipart with an optional profilePicture file
// @Tags Members
// @Accept json,mpfd
// @Produce json
// @Param payload body service.MemberRequest true "Member payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /members [post]
func (h *MemberHandler) Create(c *gin.Context) {
	req, picture, err := h.bindMember(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.service.Create(c.Request.Context(), req, picture)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update member
// @Description Replaces every field; the picture is kept when no new file is sent
// @Tags Members
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Member ID"
// @Param payload body service.MemberRequest true "Member payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /members/{id} [put]
func (h *MemberHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, picture, err := h.bindMember(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	member, err := h.service.Update(c.Request.Context(), id, req, picture)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Reorder godoc
// @Summary Reorder members
// @Description Applies every displayOrder in one transaction
// @Tags Members
// @Accept json
// @Produce json
// @Param payload body service.ReorderMembersRequest true "New orders"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members [patch]
func (h *MemberHandler) Reorder(c *gin.Context) {
	var req service.ReorderMembersRequest
	if err := bindPayload(c, &req, "reorder"); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reorder(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"updated": len(req.MemberOrders)}, nil)
}

// Delete godoc
// @Summary Delete member
// @Tags Members
// @Param id path int true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(c *gin.Context) {
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

func (h *MemberHandler) bindMember(c *gin.Context) (service.MemberRequest, *service.FileUpload, error) {
	var req service.MemberRequest
	if err := bindPayload(c, &req, "member"); err != nil {
		return req, nil, err
	}
	if blankFormField(c, "displayOrder") {
		req.DisplayOrder = nil
	}
	picture, err := formFile(c, "profilePicture")
	return req, picture, err
}
