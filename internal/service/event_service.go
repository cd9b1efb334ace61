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

type eventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	FindByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id int64) error
}

// EventRequest holds the multipart fields of an event form.
type EventRequest struct {
	Title       string `form:"title" json:"title" validate:"required,max=200"`
	Date        string `form:"date" json:"date" validate:"required"`
	Location    string `form:"location" json:"location" validate:"required,max=200"`
	Description string `form:"description" json:"description"`
}

// EventService handles event use-cases.
type EventService struct {
	repo      eventRepository
	uploads   fileStore
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs the event service.
func NewEventService(repo eventRepository, uploads fileStore, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, uploads: uploads, cache: cache, validator: ensureValidator(validate), logger: logger}
}

// List returns every event.
func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	events, err := cachedList(ctx, s.cache, cacheKeyEvents, s.repo.List)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list events")
	}
	return events, nil
}

// Get returns one event.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Internal(err, "failed to load event")
	}
	return event, nil
}

// Create stores the images first, then the event. Images are removed again
// when the insert fails.
func (s *EventService) Create(ctx context.Context, req EventRequest, images []FileUpload) (*models.Event, error) {
	event, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	urls, err := s.uploads.StoreAll(ctx, images)
	if err != nil {
		return nil, err
	}
	event.ImageURLs = urls

	if err := s.repo.Create(ctx, event); err != nil {
		s.uploads.Remove(ctx, urls...)
		return nil, persistenceError(err, "create event", "event already exists")
	}
	_ = s.cache.Invalidate(ctx, cacheKeyEvents)
	return event, nil
}

// Update replaces an event. Sending images replaces the gallery; sending none keeps it.
func (s *EventService) Update(ctx context.Context, id int64, req EventRequest, images []FileUpload) (*models.Event, error) {
	next, err := s.buildEvent(req)
	if err != nil {
		return nil, err
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := append([]string(nil), event.ImageURLs...)
	var stored []string
	if len(images) > 0 {
		stored, err = s.uploads.StoreAll(ctx, images)
		if err != nil {
			return nil, err
		}
		event.ImageURLs = stored
	}
	event.Title = next.Title
	event.Date = next.Date
	event.Location = next.Location
	event.Description = next.Description

	if err := s.repo.Update(ctx, event); err != nil {
		s.uploads.Remove(ctx, stored...)
		return nil, persistenceError(err, "update event", "event already exists")
	}
	if len(stored) > 0 {
		s.uploads.Remove(ctx, previous...)
	}
	_ = s.cache.Invalidate(ctx, cacheKeyEvents)
	return event, nil
}

// Delete removes an event and its images.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Internal(err, "failed to delete event")
	}
	s.uploads.Remove(ctx, event.ImageURLs...)
	_ = s.cache.Invalidate(ctx, cacheKeyEvents)
	return nil
}

func (s *EventService) buildEvent(req EventRequest) (*models.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "event payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, appErrors.Validation(err, "invalid event payload: "+err.Error())
	}
	return &models.Event{
		Title:       req.Title,
		Date:        date,
		Location:    req.Location,
		Description: optionalString(req.Description),
	}, nil
}
