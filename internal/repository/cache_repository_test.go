package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/nexus-club/admin-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "members:list", &dest), appErrors.ErrCacheMiss)
	require.NoError(t, repo.Set(ctx, "members:list", []string{"a"}, time.Minute))
	exists, err := repo.Exists(ctx, "session:revoked:abc")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, repo.DeleteByPattern(ctx, "members:*"))
	assert.NoError(t, repo.Close())
}
