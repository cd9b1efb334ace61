package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/nexus-club/admin-api/pkg/errors"
	"github.com/nexus-club/admin-api/pkg/storage"
)

// FileUpload is an uploaded file handed from a handler to a service.
type FileUpload struct {
	Filename    string
	Size        int64
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileFromHeader adapts a multipart file header.
func FileFromHeader(fh *multipart.FileHeader) FileUpload {
	return FileUpload{
		Filename:    fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// UploadConfig bounds stored files.
type UploadConfig struct {
	MaxBytes int64
	Timeout  time.Duration
}

// UploadService writes uploaded files through the configured storage driver.
type UploadService struct {
	storage storage.Storage
	cfg     UploadConfig
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewUploadService constructs the upload service.
func NewUploadService(store storage.Storage, cfg UploadConfig, metrics *MetricsService, logger *zap.Logger) *UploadService {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 10 * 1024 * 1024
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{storage: store, cfg: cfg, metrics: metrics, logger: logger, now: time.Now}
}

// Store writes one file and returns the URL it is served from.
func (s *UploadService) Store(ctx context.Context, file FileUpload) (string, error) {
	if file.Size > s.cfg.MaxBytes {
		return "", appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file %s exceeds the %d byte limit", file.Filename, s.cfg.MaxBytes))
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	src, err := file.Open()
	if err != nil {
		s.metrics.RecordUpload(s.storage.Driver(), false)
		return "", appErrors.Internal(err, "failed to read uploaded file")
	}
	defer src.Close()

	name := storage.ObjectName(file.Filename, s.now())
	url, err := s.storage.Save(ctx, name, io.LimitReader(src, s.cfg.MaxBytes), file.Size, file.ContentType)
	if err != nil {
		s.metrics.RecordUpload(s.storage.Driver(), false)
		return "", appErrors.Internal(err, "failed to store uploaded file")
	}
	s.metrics.RecordUpload(s.storage.Driver(), true)
	return url, nil
}

// StoreAll writes every file. When one fails, files already written are removed.
func (s *UploadService) StoreAll(ctx context.Context, files []FileUpload) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.Store(ctx, file)
		if err != nil {
			s.Remove(ctx, urls...)
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}

// Remove deletes stored files on a best-effort basis. Deletes outlive a
// cancelled request but each is bounded by the upload timeout.
func (s *UploadService) Remove(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.delete(context.WithoutCancel(ctx), url); err != nil {
			s.logger.Warn("failed to remove stored file", zap.String("url", url), zap.Error(err))
		}
	}
}

func (s *UploadService) delete(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.storage.Delete(ctx, url)
}
