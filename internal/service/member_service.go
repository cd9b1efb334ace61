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
	"github.com/nexus-club/admin-api/internal/repository"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type memberRepository interface {
	List(ctx context.Context) ([]models.Member, error)
	FindByID(ctx context.Context, id int64) (*models.Member, error)
	Create(ctx context.Context, member *models.Member, displayOrder *int) error
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id int64) error
	Reorder(ctx context.Context, orders []models.MemberOrder) error
}

type fileStore interface {
	Store(ctx context.Context, file FileUpload) (string, error)
	StoreAll(ctx context.Context, files []FileUpload) ([]string, error)
	Remove(ctx context.Context, urls ...string)
}

// MemberRequest holds the payload for creating or replacing a member.
// The legacy form field "nom" is accepted in place of "name".
type MemberRequest struct {
	Name         string            `json:"name" form:"name" validate:"required,max=150"`
	Nom          string            `json:"nom" form:"nom" validate:"-"`
	Email        string            `json:"email" form:"email" validate:"required,max=255,mailbox"`
	Role         models.MemberRole `json:"role" form:"role" validate:"required,member_role"`
	Phone        string            `json:"phone" form:"phone" validate:"omitempty,phone"`
	DisplayOrder *int              `json:"displayOrder" form:"displayOrder" validate:"omitempty,min=0"`
}

// ReorderMembersRequest applies a batch of display orders.
type ReorderMembersRequest struct {
	MemberOrders []models.MemberOrder `json:"memberOrders" validate:"required,min=1,unique=ID,dive"`
}

// MemberService handles member use-cases.
type MemberService struct {
	repo      memberRepository
	uploads   fileStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMemberService constructs the member service.
func NewMemberService(repo memberRepository, uploads fileStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &MemberService{repo: repo, uploads: uploads, cache: cache, validator: ensureValidator(validate), logger: logger}
	svc.validator.RegisterValidation("member_role", func(fl validator.FieldLevel) bool {
		role := models.MemberRole(fl.Field().String())
		for _, allowed := range models.MemberRoles {
			if role == allowed {
				return true
			}
		}
		return false
	})
	return svc
}

// List returns members in display order.
func (s *MemberService) List(ctx context.Context) ([]models.Member, error) {
	members, err := cachedList(ctx, s.cache, cacheKeyMembers, s.repo.List)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list members")
	}
	return members, nil
}

// Get returns one member.
func (s *MemberService) Get(ctx context.Context, id int64) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Internal(err, "failed to load member")
	}
	return member, nil
}

// Create registers a member. Without an explicit displayOrder the member is
// placed after every existing one.
func (s *MemberService) Create(ctx context.Context, req MemberRequest, picture *FileUpload) (*models.Member, error) {
	req = normalizeMember(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "member payload")
	}

	member := &models.Member{Name: req.Name, Email: req.Email, Role: req.Role, Phone: req.Phone}
	if picture != nil {
		url, err := s.uploads.Store(ctx, *picture)
		if err != nil {
			return nil, err
		}
		member.ProfilePictureURL = &url
	}

	if err := s.repo.Create(ctx, member, req.DisplayOrder); err != nil {
		if member.ProfilePictureURL != nil {
			s.uploads.Remove(ctx, *member.ProfilePictureURL)
		}
		return nil, persistenceError(err, "create member", "email already used")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyMembers)
	return member, nil
}

// Update replaces a member's fields. The picture is kept unless a new one is sent.
func (s *MemberService) Update(ctx context.Context, id int64, req MemberRequest, picture *FileUpload) (*models.Member, error) {
	req = normalizeMember(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "member payload")
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := member.ProfilePictureURL
	var stored *string
	if picture != nil {
		url, err := s.uploads.Store(ctx, *picture)
		if err != nil {
			return nil, err
		}
		stored = &url
		member.ProfilePictureURL = stored
	}

	member.Name = req.Name
	member.Email = req.Email
	member.Role = req.Role
	member.Phone = req.Phone
	if req.DisplayOrder != nil {
		member.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repo.Update(ctx, member); err != nil {
		if stored != nil {
			s.uploads.Remove(ctx, *stored)
		}
		return nil, persistenceError(err, "update member", "email already used")
	}
	if stored != nil && previous != nil {
		s.uploads.Remove(ctx, *previous)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyMembers)
	return member, nil
}

// Reorder applies all display orders atomically.
func (s *MemberService) Reorder(ctx context.Context, req ReorderMembersRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validationError(err, "reorder payload")
	}
	if err := s.repo.Reorder(ctx, req.MemberOrders); err != nil {
		var missing *repository.MissingRowError
		if errors.As(err, &missing) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("member %d not found", missing.ID))
		}
		return appErrors.Internal(err, "failed to reorder members")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyMembers)
	return nil
}

// Delete removes a member and its picture.
func (s *MemberService) Delete(ctx context.Context, id int64) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete member")
	}
	if member.ProfilePictureURL != nil {
		s.uploads.Remove(ctx, *member.ProfilePictureURL)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyMembers)
	return nil
}

func normalizeMember(req MemberRequest) MemberRequest {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = strings.TrimSpace(req.Nom)
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	return req
}
