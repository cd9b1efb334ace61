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

type newbieRepository interface {
	List(ctx context.Context, status *models.NewbieStatus) ([]models.NewbieApplication, error)
	FindByID(ctx context.Context, id int64) (*models.NewbieApplication, error)
	Create(ctx context.Context, item *models.NewbieApplication) error
	UpdateStatus(ctx context.Context, id int64, from, to models.NewbieStatus) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type newbieExporter interface {
	NewbieApplications(format string, items []models.NewbieApplication) (*ExportFile, error)
}

// NewbieApplyRequest is the public application form.
type NewbieApplyRequest struct {
	Nom             string `json:"nom" form:"nom" validate:"required,max=100"`
	Prenom          string `json:"prenom" form:"prenom" validate:"required,max=100"`
	Classe          string `json:"classe" form:"classe" validate:"omitempty,max=100"`
	Hobbies         string `json:"hobbies" form:"hobbies" validate:"omitempty,max=1000"`
	Motivation      string `json:"motivation" form:"motivation" validate:"omitempty,max=2000"`
	AdditionalNotes string `json:"additionalNotes" form:"additionalNotes" validate:"omitempty,max=2000"`
	Email           string `json:"email" form:"email" validate:"omitempty,max=255,mailbox"`
}

// NewbieStatusRequest moves an application to a new review status.
type NewbieStatusRequest struct {
	ID     int64               `json:"id" validate:"required,gt=0"`
	Status models.NewbieStatus `json:"status" validate:"required,newbie_status"`
}

// NewbieService handles membership applications.
type NewbieService struct {
	repo      newbieRepository
	exporter  newbieExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNewbieService constructs the service.
func NewNewbieService(repo newbieRepository, exporter newbieExporter, validate *validator.Validate, logger *zap.Logger) *NewbieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &NewbieService{repo: repo, exporter: exporter, validator: ensureValidator(validate), logger: logger}
	svc.validator.RegisterValidation("newbie_status", func(fl validator.FieldLevel) bool {
		_, ok := ParseNewbieStatus(fl.Field().String())
		return ok
	})
	return svc
}

// ParseNewbieStatus reports whether raw names a known review status.
func ParseNewbieStatus(raw string) (models.NewbieStatus, bool) {
	switch status := models.NewbieStatus(raw); status {
	case models.NewbieStatusPending, models.NewbieStatusAccepted, models.NewbieStatusDeclined:
		return status, true
	}
	return "", false
}

// Apply records a new pending application.
func (s *NewbieService) Apply(ctx context.Context, req NewbieApplyRequest) (*models.NewbieApplication, error) {
	req = normalizeNewbie(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "application")
	}
	item := &models.NewbieApplication{
		Nom:             req.Nom,
		Prenom:          req.Prenom,
		Classe:          optionalString(req.Classe),
		Hobbies:         optionalString(req.Hobbies),
		Motivation:      optionalString(req.Motivation),
		AdditionalNotes: optionalString(req.AdditionalNotes),
		Email:           optionalString(req.Email),
		Status:          models.NewbieStatusPending,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, persistenceError(err, "submit application", "application already submitted")
	}
	return item, nil
}

// List returns applications, optionally filtered by status.
func (s *NewbieService) List(ctx context.Context, status string) ([]models.NewbieApplication, error) {
	filter, err := newbieStatusFilter(status)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list applications")
	}
	return items, nil
}

// Get returns one application.
func (s *NewbieService) Get(ctx context.Context, id int64) (*models.NewbieApplication, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Internal(err, "failed to load application")
	}
	return item, nil
}

// UpdateStatus decides an application. Unknown statuses are rejected before
// any lookup; repeating the current status writes nothing.
func (s *NewbieService) UpdateStatus(ctx context.Context, req NewbieStatusRequest) (*models.NewbieApplication, error) {
	req.Status = models.NewbieStatus(strings.ToLower(strings.TrimSpace(string(req.Status))))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "status update")
	}
	item, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if item.Status == req.Status {
		return item, nil
	}
	if !item.Status.CanTransition(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move application from %s to %s", item.Status, req.Status))
	}
	updated, err := s.repo.UpdateStatus(ctx, req.ID, item.Status, req.Status)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to update application status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "application was decided by another request")
	}
	item.Status = req.Status
	s.logger.Info("newbie application decided", zap.Int64("id", item.ID), zap.String("status", string(item.Status)))
	return item, nil
}

// Delete removes an application.
func (s *NewbieService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete application")
	}
	return nil
}

// Export renders the applications matching status as a download.
func (s *NewbieService) Export(ctx context.Context, format, status string) (*ExportFile, error) {
	items, err := s.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return s.exporter.NewbieApplications(format, items)
}

func newbieStatusFilter(raw string) (*models.NewbieStatus, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return nil, nil
	}
	status, ok := ParseNewbieStatus(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be one of pending, accepted, declined")
	}
	return &status, nil
}

func normalizeNewbie(req NewbieApplyRequest) NewbieApplyRequest {
	req.Nom = strings.TrimSpace(req.Nom)
	req.Prenom = strings.TrimSpace(req.Prenom)
	req.Classe = strings.TrimSpace(req.Classe)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	return req
}
