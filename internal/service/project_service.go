package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type projectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	FindByID(ctx context.Context, id int64) (*models.Project, error)
	Create(ctx context.Context, project *models.Project) error
	Update(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
}

// ProjectRequest holds the multipart fields of a project form.
type ProjectRequest struct {
	Name        string `form:"name" json:"name" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"required"`
	Status      string `form:"status" json:"status" validate:"required,project_status"`
	StartDate   string `form:"startDate" json:"startDate" validate:"required"`
	EndDate     string `form:"endDate" json:"endDate"`
	SiteURL     string `form:"siteUrl" json:"siteUrl" validate:"omitempty,url"`
}

// ProjectService handles project use-cases.
type ProjectService struct {
	repo      projectRepository
	uploads   fileStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProjectService constructs the project service.
func NewProjectService(repo projectRepository, uploads fileStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ProjectService{repo: repo, uploads: uploads, cache: cache, validator: ensureValidator(validate), logger: logger}
	svc.validator.RegisterValidation("project_status", func(fl validator.FieldLevel) bool {
		switch models.ProjectStatus(fl.Field().String()) {
		case models.ProjectStatusActive, models.ProjectStatusInactive, models.ProjectStatusCompleted:
			return true
		default:
			return false
		}
	})
	return svc
}

// List returns every project.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	projects, err := cachedList(ctx, s.cache, cacheKeyProjects, s.repo.List)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list projects")
	}
	return projects, nil
}

// Get returns one project.
func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "project not found")
		}
		return nil, appErrors.Internal(err, "failed to load project")
	}
	return project, nil
}

// Create stores the optional image, then the project.
func (s *ProjectService) Create(ctx context.Context, req ProjectRequest, image *FileUpload) (*models.Project, error) {
	project, err := s.buildProject(req)
	if err != nil {
		return nil, err
	}
	if image != nil {
		url, err := s.uploads.Store(ctx, *image)
		if err != nil {
			return nil, err
		}
		project.ImageURL = &url
	}
	if err := s.repo.Create(ctx, project); err != nil {
		if project.ImageURL != nil {
			s.uploads.Remove(ctx, *project.ImageURL)
		}
		return nil, persistenceError(err, "create project", "project already exists")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyProjects)
	return project, nil
}

// Update replaces a project; the image is kept unless a new one is sent.
func (s *ProjectService) Update(ctx context.Context, id int64, req ProjectRequest, image *FileUpload) (*models.Project, error) {
	next, err := s.buildProject(req)
	if err != nil {
		return nil, err
	}
	project, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := project.ImageURL
	var stored *string
	if image != nil {
		url, err := s.uploads.Store(ctx, *image)
		if err != nil {
			return nil, err
		}
		stored = &url
		project.ImageURL = stored
	}
	project.Name = next.Name
	project.Description = next.Description
	project.Status = next.Status
	project.StartDate = next.StartDate
	project.EndDate = next.EndDate
	project.SiteURL = next.SiteURL

	if err := s.repo.Update(ctx, project); err != nil {
		if stored != nil {
			s.uploads.Remove(ctx, *stored)
		}
		return nil, persistenceError(err, "update project", "project already exists")
	}
	if stored != nil && previous != nil {
		s.uploads.Remove(ctx, *previous)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyProjects)
	return project, nil
}

// Delete removes a project by id.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	project, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete project")
	}
	if project.ImageURL != nil {
		s.uploads.Remove(ctx, *project.ImageURL)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyProjects)
	return nil
}

func (s *ProjectService) buildProject(req ProjectRequest) (*models.Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	req.SiteURL = strings.TrimSpace(req.SiteURL)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "project payload")
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid project payload: "+err.Error())
	}
	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		parsed, err := parseDate(req.EndDate)
		if err != nil {
			return nil, appErrors.Validation(err, "invalid project payload: "+err.Error())
		}
		if parsed.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid project payload: endDate must not precede startDate")
		}
		end = &parsed
	}
	return &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		StartDate:   start,
		EndDate:     end,
		SiteURL:     optionalString(req.SiteURL),
	}, nil
}
