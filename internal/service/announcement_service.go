package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

const (
	noticeActionCreate = "create"
	noticeActionUpdate = "update"
	noticeActionDelete = "delete"
)

type announcementRepository interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
	FindByID(ctx context.Context, id int64) (*models.Announcement, error)
	Create(ctx context.Context, announcement *models.Announcement) error
	Update(ctx context.Context, announcement *models.Announcement) error
	Delete(ctx context.Context, id int64) error
}

type announcementNotifier interface {
	Enabled() bool
	Enqueue(notice AnnouncementNotice) error
}

// AnnouncementRequest is the payload for creating or replacing an announcement.
// Visible defaults to true when omitted.
type AnnouncementRequest struct {
	Title   string `json:"title" form:"title" validate:"required,max=200"`
	Content string `json:"content" form:"content" validate:"required"`
	Visible *bool  `json:"visible" form:"visible"`
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	notifier  announcementNotifier
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service. A nil notifier disables fanout.
func NewAnnouncementService(repo announcementRepository, notifier announcementNotifier, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, notifier: notifier, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns visible announcements, or all of them when includeHidden is set.
func (s *AnnouncementService) List(ctx context.Context, includeHidden bool) ([]models.Announcement, error) {
	var (
		items []models.Announcement
		err   error
	)
	if includeHidden {
		items, err = s.repo.List(ctx, models.AnnouncementFilter{IncludeHidden: true})
	} else {
		items, err = cachedList(ctx, s.cache, cacheKeyAnnouncements, func(ctx context.Context) ([]models.Announcement, error) {
			return s.repo.List(ctx, models.AnnouncementFilter{})
		})
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list announcements")
	}
	return items, nil
}

// Get returns an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (*models.Announcement, error) {
	announcement, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Internal(err, "failed to load announcement")
	}
	return announcement, nil
}

// Create stores an announcement and schedules the member fanout.
func (s *AnnouncementService) Create(ctx context.Context, req AnnouncementRequest) (*models.Announcement, error) {
	req = normalizeAnnouncement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "announcement payload")
	}
	announcement := &models.Announcement{Title: req.Title, Content: req.Content, Visible: true}
	if req.Visible != nil {
		announcement.Visible = *req.Visible
	}
	if err := s.repo.Create(ctx, announcement); err != nil {
		return nil, persistenceError(err, "create announcement", "announcement already exists")
	}
	s.afterMutation(ctx, noticeActionCreate, announcement)
	return announcement, nil
}

// Update replaces an announcement. Visibility is kept when omitted.
func (s *AnnouncementService) Update(ctx context.Context, id int64, req AnnouncementRequest) (*models.Announcement, error) {
	req = normalizeAnnouncement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "announcement payload")
	}
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	announcement.Title = req.Title
	announcement.Content = req.Content
	if req.Visible != nil {
		announcement.Visible = *req.Visible
	}
	if err := s.repo.Update(ctx, announcement); err != nil {
		return nil, persistenceError(err, "update announcement", "announcement already exists")
	}
	s.afterMutation(ctx, noticeActionUpdate, announcement)
	return announcement, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	announcement, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete announcement")
	}
	s.afterMutation(ctx, noticeActionDelete, announcement)
	return nil
}

func (s *AnnouncementService) afterMutation(ctx context.Context, action string, announcement *models.Announcement) {
	_ = s.cache.Invalidate(ctx, cacheKeyAnnouncements)
	if s.notifier == nil || !s.notifier.Enabled() {
		return
	}
	notice := AnnouncementNotice{
		AnnouncementID: announcement.ID,
		Action:         action,
		Title:          announcement.Title,
		Content:        announcement.Content,
	}
	if err := s.notifier.Enqueue(notice); err != nil {
		s.logger.Warn("announcement fanout not scheduled",
			zap.Int64("announcement_id", announcement.ID),
			zap.String("action", action),
			zap.Error(err))
	}
}

func normalizeAnnouncement(req AnnouncementRequest) AnnouncementRequest {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	return req
}
