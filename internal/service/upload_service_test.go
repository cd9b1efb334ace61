package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type memoryStorage struct {
	saved     map[string][]byte
	deleted   []string
	deleteCtx []context.Context
	failOn    string
}

func (m *memoryStorage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	if m.failOn != "" && strings.HasSuffix(name, m.failOn) {
		return "", errors.New("write failed")
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = buf.Bytes()
	return "/uploads/" + name, nil
}

func (m *memoryStorage) Delete(ctx context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	m.deleteCtx = append(m.deleteCtx, ctx)
	return nil
}

func (m *memoryStorage) Driver() string { return "memory" }

func TestUploadServiceStore(t *testing.T) {
	store := &memoryStorage{}
	svc := NewUploadService(store, UploadConfig{MaxBytes: 1024}, NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }

	url, err := svc.Store(context.Background(), *textUpload("My Photo.PNG", "pixels"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/1700000000000-"))
	assert.True(t, strings.HasSuffix(url, "-My-Photo.png"))
	require.Len(t, store.saved, 1)
	for _, body := range store.saved {
		assert.Equal(t, "pixels", string(body))
	}
}

func TestUploadServiceRejectsOversize(t *testing.T) {
	store := &memoryStorage{}
	svc := NewUploadService(store, UploadConfig{MaxBytes: 4}, nil, zap.NewNop())

	_, err := svc.Store(context.Background(), *textUpload("big.png", "too large"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrPayloadTooLarge))
	assert.Empty(t, store.saved)
}

func TestUploadServiceStoreAllRollsBack(t *testing.T) {
	store := &memoryStorage{failOn: "second.png"}
	svc := NewUploadService(store, UploadConfig{}, nil, zap.NewNop())

	_, err := svc.StoreAll(context.Background(), []FileUpload{*textUpload("first.png", "1"), *textUpload("second.png", "2")})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
	require.Len(t, store.deleted, 1)
	assert.True(t, strings.HasSuffix(store.deleted[0], "first.png"))
}

func TestUploadServiceRemoveSkipsEmpty(t *testing.T) {
	store := &memoryStorage{}
	svc := NewUploadService(store, UploadConfig{}, nil, zap.NewNop())
	svc.Remove(context.Background(), "", "/uploads/a.png")
	assert.Equal(t, []string{"/uploads/a.png"}, store.deleted)
}

func TestUploadServiceRemoveOutlivesRequestWithDeadline(t *testing.T) {
	store := &memoryStorage{}
	svc := NewUploadService(store, UploadConfig{Timeout: time.Second}, nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	svc.Remove(ctx, "/uploads/a.png")

	require.Len(t, store.deleteCtx, 1)
	deadline, ok := store.deleteCtx[0].Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, start.Add(time.Second), deadline, 500*time.Millisecond)
}
