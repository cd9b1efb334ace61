package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	"github.com/nexus-club/admin-api/internal/repository"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type sponsorRepository interface {
	List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error)
	FindByID(ctx context.Context, id int64) (*models.Sponsor, error)
	Create(ctx context.Context, sponsor *models.Sponsor) error
	Update(ctx context.Context, sponsor *models.Sponsor) error
	Patch(ctx context.Context, id int64, fields map[string]interface{}) error
	Delete(ctx context.Context, id int64) error
}

// SponsorRequest holds the payload for creating or fully replacing a sponsor.
type SponsorRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	Sector          string `json:"sector" validate:"max=150"`
	Phone           string `json:"phone" validate:"omitempty,phone"`
	Email           string `json:"email" validate:"omitempty,max=255,mailbox"`
	ContactPerson   string `json:"contactPerson" validate:"max=150"`
	ContactPosition string `json:"contactPosition" validate:"max=150"`
	Called          bool   `json:"called"`
	EmailSent       bool   `json:"emailSent"`
	Comments        string `json:"comments"`
}

// SponsorService handles sponsor prospect tracking.
type SponsorService struct {
	repo      sponsorRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSponsorService constructs the sponsor service.
func NewSponsorService(repo sponsorRepository, validate *validator.Validate, logger *zap.Logger) *SponsorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SponsorService{repo: repo, validator: ensureValidator(validate), logger: logger}
}

// List returns sponsors matching the filter.
func (s *SponsorService) List(ctx context.Context, filter models.SponsorFilter) ([]models.Sponsor, error) {
	sponsors, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sponsors")
	}
	return sponsors, nil
}

// Get returns one sponsor.
func (s *SponsorService) Get(ctx context.Context, id int64) (*models.Sponsor, error) {
	sponsor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sponsor not found")
		}
		return nil, appErrors.Internal(err, "failed to load sponsor")
	}
	return sponsor, nil
}

// Create stores a new sponsor.
func (s *SponsorService) Create(ctx context.Context, req SponsorRequest) (*models.Sponsor, error) {
	req = normalizeSponsor(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "sponsor payload")
	}
	sponsor := &models.Sponsor{}
	applySponsorRequest(sponsor, req)
	if err := s.repo.Create(ctx, sponsor); err != nil {
		return nil, persistenceError(err, "create sponsor", "email already used")
	}
	return sponsor, nil
}

// Update replaces every field of a sponsor.
func (s *SponsorService) Update(ctx context.Context, id int64, req SponsorRequest) (*models.Sponsor, error) {
	req = normalizeSponsor(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "sponsor payload")
	}
	sponsor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySponsorRequest(sponsor, req)
	if err := s.repo.Update(ctx, sponsor); err != nil {
		return nil, persistenceError(err, "update sponsor", "email already used")
	}
	return sponsor, nil
}

// Patch updates the given allow-listed fields only. Unknown fields and empty
// patches are rejected before the store is touched.
func (s *SponsorService) Patch(ctx context.Context, id int64, raw map[string]json.RawMessage) (*models.Sponsor, error) {
	fields, err := s.decodePatch(raw)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Patch(ctx, id, fields); err != nil {
		return nil, persistenceError(err, "update sponsor", "email already used")
	}
	return s.Get(ctx, id)
}

// Delete removes a sponsor.
func (s *SponsorService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete sponsor")
	}
	return nil
}

func (s *SponsorService) decodePatch(raw map[string]json.RawMessage) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid sponsor patch: no fields to update")
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make(map[string]interface{}, len(raw))
	for _, name := range names {
		if !repository.SponsorPatchable(name) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid sponsor patch: field %s cannot be updated", name))
		}
		value, err := s.decodePatchValue(name, raw[name])
		if err != nil {
			return nil, appErrors.Validation(err, fmt.Sprintf("invalid sponsor patch: %s %v", name, err))
		}
		fields[name] = value
	}
	return fields, nil
}

func (s *SponsorService) decodePatchValue(name string, raw json.RawMessage) (interface{}, error) {
	switch name {
	case "called", "emailSent":
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, errors.New("must be a boolean")
		}
		return b, nil
	case "name":
		var v string
		if err := json.Unmarshal(raw, &v); err != nil || strings.TrimSpace(v) == "" {
			return nil, errors.New("must be a non-empty string")
		}
		return strings.TrimSpace(v), nil
	}

	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.New("must be a string or null")
	}
	v = strings.TrimSpace(v)
	switch name {
	case "email":
		v = strings.ToLower(v)
		if v != "" && s.validator.Var(v, "mailbox") != nil {
			return nil, errors.New("must be a valid email address")
		}
	case "phone":
		if v != "" && s.validator.Var(v, "phone") != nil {
			return nil, errors.New("must be a valid phone number")
		}
	}
	if v == "" {
		return nil, nil
	}
	return v, nil
}

func normalizeSponsor(req SponsorRequest) SponsorRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	return req
}

func applySponsorRequest(sponsor *models.Sponsor, req SponsorRequest) {
	sponsor.Name = req.Name
	sponsor.Sector = optionalString(req.Sector)
	sponsor.Phone = optionalString(req.Phone)
	sponsor.Email = optionalString(req.Email)
	sponsor.ContactPerson = optionalString(req.ContactPerson)
	sponsor.ContactPosition = optionalString(req.ContactPosition)
	sponsor.Called = req.Called
	sponsor.EmailSent = req.EmailSent
	sponsor.Comments = optionalString(req.Comments)
}
