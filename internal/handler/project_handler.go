package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/service"
	"github.com/nexus-club/admin-api/pkg/response"
)

type projectService interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, req service.ProjectRequest, image *service.FileUpload) (*models.Project, error)
	Update(ctx context.Context, id int64, req service.ProjectRequest, image *service.FileUpload) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
}

// ProjectHandler exposes the project showcase.
type ProjectHandler struct {
	service projectService
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(svc projectService) *ProjectHandler {
	return &ProjectHandler{service: svc}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /projects [get]
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, projects, nil)
}

// Get godoc
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [get]
func (h *ProjectHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	project, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Create godoc
// @Summary Create project
// @Tags Projects
// @Accept mpfd
// @Produce json
// @Param name formData string true "Name"
// @Param description formData string true "Description"
// @Param status formData string true "active, inactive or completed"
// @Param startDate formData string true "Start date"
// @Param endDate formData string false "End date"
// @Param siteUrl formData string false "Site URL"
// @Param image formData file false "Cover image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /projects [post]
func (h *ProjectHandler) Create(c *gin.Context) {
	req, image, err := h.bindProject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	project, err := h.service.Create(c.Request.Context(), req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept mpfd
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, image, err := h.bindProject(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	project, err := h.service.Update(c.Request.Context(), id, req, image)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, project, nil)
}

// Delete godoc
// @Summary Delete project
// @Tags Projects
// @Param id path int true "Project ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(c *gin.Context) {
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

func (h *ProjectHandler) bindProject(c *gin.Context) (service.ProjectRequest, *service.FileUpload, error) {
	var req service.ProjectRequest
	if err := bindPayload(c, &req, "project"); err != nil {
		return req, nil, err
	}
	image, err := formFile(c, "image")
	return req, image, err
}
