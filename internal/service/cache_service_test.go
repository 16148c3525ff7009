package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/dms-admin-api/pkg/errors"
)

type memoryCacheRepo struct {
	data      map[string][]byte
	ttls      map[string]time.Duration
	patterns  []string
	getErr    error
	deleteErr error
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *memoryCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.data = make(map[string][]byte)
	return nil
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	cache := NewCacheService(repo, metrics, 0, nil, true)
	ctx := context.Background()

	var out []string
	hit, err := cache.Get(ctx, "teachers:list", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "teachers:list", []string{"ana"}, 0))
	assert.Equal(t, 2*time.Minute, repo.ttls["teachers:list"])

	hit, err = cache.Get(ctx, "teachers:list", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"ana"}, out)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))

	require.NoError(t, cache.Invalidate(ctx, teacherCachePattern))
	assert.Equal(t, []string{"teachers:*"}, repo.patterns)
	hit, _ = cache.Get(ctx, "teachers:list", &out)
	assert.False(t, hit)
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	repo := newMemoryCacheRepo()
	repo.getErr = errors.New("connection refused")
	repo.deleteErr = errors.New("connection refused")
	cache := NewCacheService(repo, nil, time.Minute, nil, true)

	var out []string
	hit, err := cache.Get(context.Background(), "k", &out)
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, cache.Invalidate(context.Background(), "k*"))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	ctx := context.Background()

	for _, cache := range []*CacheService{nil, NewCacheService(repo, nil, 0, nil, false), NewCacheService(nil, nil, 0, nil, true)} {
		assert.False(t, cache.Enabled())
		require.NoError(t, cache.Set(ctx, "k", "v", 0))
		hit, err := cache.Get(ctx, "k", new(string))
		require.NoError(t, err)
		assert.False(t, hit)
		require.NoError(t, cache.Invalidate(ctx, "k*"))
	}
	assert.Empty(t, repo.data)
	assert.Empty(t, repo.patterns)
}
