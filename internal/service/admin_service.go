package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type adminRepository interface {
	List(ctx context.Context) ([]models.Admin, error)
	Create(ctx context.Context, admin *models.Admin) error
}

// CreateAdminRequest represents payload for creating dashboard accounts.
type CreateAdminRequest struct {
	Username    string           `json:"username" validate:"required,min=3,max=100"`
	Password    string           `json:"password" validate:"required,min=8,max=72"`
	DisplayName string           `json:"displayName" validate:"required,max=150"`
	Role        models.AdminRole `json:"role" validate:"omitempty,admin_role"`
}

// AdminService manages dashboard accounts.
type AdminService struct {
	repo      adminRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAdminService creates an instance of AdminService.
func NewAdminService(repo adminRepository, validate *validator.Validate, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	validate = ensureValidator(validate)
	_ = validate.RegisterValidation("admin_role", func(fl validator.FieldLevel) bool {
		switch models.AdminRole(fl.Field().String()) {
		case models.AdminRoleSuperAdmin, models.AdminRoleAdmin:
			return true
		default:
			return false
		}
	})
	return &AdminService{repo: repo, validator: validate, logger: logger}
}

// List returns every admin account.
func (s *AdminService) List(ctx context.Context) ([]models.Admin, error) {
	admins, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list admins")
	}
	return admins, nil
}

// Create hashes the password and stores a new admin.
func (s *AdminService) Create(ctx context.Context, req CreateAdminRequest) (*models.Admin, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "admin payload")
	}
	if req.Role == "" {
		req.Role = models.AdminRoleAdmin
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to hash password")
	}
	admin := &models.Admin{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         req.Role,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, persistenceError(err, "create admin", "username already taken")
	}
	s.logger.Info("admin created", zap.Int64("admin_id", admin.ID), zap.String("role", string(admin.Role)))
	return admin, nil
}
