package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type seeRegistrationRepository interface {
	List(ctx context.Context, status *models.SeeStatus) ([]models.SeeRegistration, error)
	FindByID(ctx context.Context, id int64) (*models.SeeRegistration, error)
	Create(ctx context.Context, item *models.SeeRegistration) error
	UpdateStatus(ctx context.Context, id int64, from, to models.SeeStatus) (bool, error)
}

type seeRegistrationExporter interface {
	SeeRegistrations(format string, items []models.SeeRegistration) (*ExportFile, error)
}

// SeeRegisterRequest is the public company-visit registration form.
type SeeRegisterRequest struct {
	FullName   string `json:"fullName" form:"fullName" validate:"required,max=200"`
	Email      string `json:"email" form:"email" validate:"required,max=255,mailbox"`
	Phone      string `json:"phone" form:"phone" validate:"required,phone"`
	StudyPlace string `json:"studyPlace" form:"studyPlace" validate:"required,max=200"`
	Classe     string `json:"classe" form:"classe" validate:"required,max=100"`
	Motivation string `json:"motivation" form:"motivation" validate:"required,max=2000"`
	Extra      string `json:"extra" form:"extra" validate:"omitempty,max=2000"`
}

// SeeStatusRequest moves a registration to a new status.
type SeeStatusRequest struct {
	ID     int64            `json:"id" validate:"required,gt=0"`
	Status models.SeeStatus `json:"status" validate:"required,see_status"`
}

// SeeRegistrationService handles company-visit registrations.
type SeeRegistrationService struct {
	repo      seeRegistrationRepository
	exporter  seeRegistrationExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSeeRegistrationService constructs the service.
func NewSeeRegistrationService(repo seeRegistrationRepository, exporter seeRegistrationExporter, validate *validator.Validate, logger *zap.Logger) *SeeRegistrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SeeRegistrationService{repo: repo, exporter: exporter, validator: ensureValidator(validate), logger: logger}
	svc.validator.RegisterValidation("see_status", func(fl validator.FieldLevel) bool {
		_, ok := ParseSeeStatus(fl.Field().String())
		return ok
	})
	return svc
}

// ParseSeeStatus reports whether raw names a known registration status.
func ParseSeeStatus(raw string) (models.SeeStatus, bool) {
	switch status := models.SeeStatus(raw); status {
	case models.SeeStatusPending, models.SeeStatusConfirmed, models.SeeStatusCancelled:
		return status, true
	}
	return "", false
}

// Register records a pending registration.
func (s *SeeRegistrationService) Register(ctx context.Context, req SeeRegisterRequest) (*models.SeeRegistration, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.StudyPlace = strings.TrimSpace(req.StudyPlace)
	req.Classe = strings.TrimSpace(req.Classe)
	req.Motivation = strings.TrimSpace(req.Motivation)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "registration")
	}
	item := &models.SeeRegistration{
		FullName:   req.FullName,
		Email:      req.Email,
		Phone:      req.Phone,
		StudyPlace: req.StudyPlace,
		Classe:     req.Classe,
		Motivation: req.Motivation,
		Extra:      optionalString(req.Extra),
		Status:     models.SeeStatusPending,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, persistenceError(err, "register", "email already registered")
	}
	return item, nil
}

// List returns registrations, optionally filtered by status.
func (s *SeeRegistrationService) List(ctx context.Context, status string) ([]models.SeeRegistration, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	var filter *models.SeeStatus
	if status != "" {
		parsed, ok := ParseSeeStatus(status)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of pending, confirmed, cancelled")
		}
		filter = &parsed
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list registrations")
	}
	return items, nil
}

// UpdateStatus confirms or cancels a registration.
func (s *SeeRegistrationService) UpdateStatus(ctx context.Context, req SeeStatusRequest) (*models.SeeRegistration, error) {
	req.Status = models.SeeStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "status update")
	}
	item, err := s.repo.FindByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "registration not found")
		}
		return nil, appErrors.Internal(err, "failed to load registration")
	}
	if item.Status == req.Status {
		return item, nil
	}
	if !item.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move registration from %s to %s", item.Status, req.Status))
	}
	updated, err := s.repo.UpdateStatus(ctx, req.ID, item.Status, req.Status)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update registration status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "registration status was changed by another request")
	}
	item.Status = req.Status
	return item, nil
}

// Export renders the registrations matching status as a download.
func (s *SeeRegistrationService) Export(ctx context.Context, format, status string) (*ExportFile, error) {
	items, err := s.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return s.exporter.SeeRegistrations(format, items)
}
