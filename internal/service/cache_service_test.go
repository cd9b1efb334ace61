package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nexus-club/admin-api/internal/models"
	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

type memoryCache struct {
	entries map[string][]byte
	getErr  error
	deleted []string
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.entries == nil {
		m.entries = map[string][]byte{}
	}
	m.entries[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.entries {
		if key == pattern || (prefix != pattern && strings.HasPrefix(key, prefix)) {
			delete(m.entries, key)
		}
	}
	return nil
}

func TestCachedListServesFromCache(t *testing.T) {
	backend := &memoryCache{}
	cache := NewCacheService(backend, NewMetricsService(), time.Minute, zap.NewNop(), true)
	loads := 0
	load := func(ctx context.Context) ([]models.Member, error) {
		loads++
		return []models.Member{{ID: 1, Name: "Amel"}}, nil
	}

	first, err := cachedList(context.Background(), cache, cacheKeyMembers, load)
	require.NoError(t, err)
	second, err := cachedList(context.Background(), cache, cacheKeyMembers, load)
	require.NoError(t, err)

	assert.Equal(t, 1, loads)
	assert.Equal(t, first, second)

	require.NoError(t, cache.Invalidate(context.Background(), cacheKeyMembers))
	_, err = cachedList(context.Background(), cache, cacheKeyMembers, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestCachedListFallsThroughOnCacheError(t *testing.T) {
	backend := &memoryCache{getErr: errors.New("redis unavailable")}
	cache := NewCacheService(backend, nil, time.Minute, zap.NewNop(), true)
	loads := 0

	items, err := cachedList(context.Background(), cache, cacheKeyEvents, func(ctx context.Context) ([]models.Event, error) {
		loads++
		return []models.Event{{ID: 7}}, nil
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, loads)
}

func TestCacheServiceDisabled(t *testing.T) {
	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	assert.NoError(t, nilCache.Invalidate(context.Background(), "x"))

	backend := &memoryCache{}
	cache := NewCacheService(backend, nil, 0, zap.NewNop(), false)
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, backend.entries)
}

func TestMemberMutationInvalidatesCache(t *testing.T) {
	backend := &memoryCache{}
	cache := NewCacheService(backend, nil, time.Minute, zap.NewNop(), true)
	svc := NewMemberService(newMockMemberRepo(), &fakeFileStore{}, cache, nil, zap.NewNop())

	_, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Contains(t, backend.entries, cacheKeyMembers)

	_, err = svc.Create(context.Background(), MemberRequest{Name: "A", Email: "a@b.com", Role: models.MemberRoleMember}, nil)
	require.NoError(t, err)
	assert.NotContains(t, backend.entries, cacheKeyMembers)
}
