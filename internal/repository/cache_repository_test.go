package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
)

func TestCacheRepositoryRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	repo := NewCacheRepository(client, nil)
	ctx := context.Background()

	var out map[string]int
	assert.ErrorIs(t, repo.Get(ctx, "teachers:list:1", &out), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "teachers:list:1", map[string]int{"total": 3}, time.Minute))
	require.NoError(t, repo.Set(ctx, "teachers:list:2", map[string]int{"total": 4}, time.Minute))
	require.NoError(t, repo.Set(ctx, "students:list:1", map[string]int{"total": 5}, time.Minute))
	require.NoError(t, repo.Get(ctx, "teachers:list:1", &out))
	assert.Equal(t, 3, out["total"])

	require.NoError(t, repo.DeleteByPattern(ctx, "teachers:*"))
	assert.False(t, srv.Exists("teachers:list:1"))
	assert.False(t, srv.Exists("teachers:list:2"))
	assert.True(t, srv.Exists("students:list:1"))
	require.NoError(t, repo.Close())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var out string
	assert.ErrorIs(t, repo.Get(ctx, "k", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", "v", time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}
