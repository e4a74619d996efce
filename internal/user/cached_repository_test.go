package user

import (
	"context"
	"testing"
	"time"

	"auth_service/internal/cache"
	"auth_service/internal/observability"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   2,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}

	client.FlushDB(ctx)
	t.Cleanup(func() {
		client.FlushDB(context.Background())
		client.Close()
	})
	return client
}

func TestCachedRepository_GetByID(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()
	metrics := observability.NewMetrics(prometheus.NewRegistry())

	inner := NewMemoryRepository(nil)
	createdAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, inner.Create(ctx, &User{ID: "1", Username: "alice", Email: "a@x.com", Password: "hash", CreatedAt: createdAt}))

	repo := NewCachedRepository(inner, cache.NewUserCache(client, time.Minute), metrics)

	// First lookup misses and fills the cache
	u, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.Password)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheMissesTotal.WithLabelValues("user")))

	// Second lookup is served from Redis without the hash
	u, err = repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.Equal(t, "a@x.com", u.Email)
	assert.True(t, createdAt.Equal(u.CreatedAt))
	assert.Empty(t, u.Password)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CacheHitsTotal.WithLabelValues("user")))
}

func TestCachedRepository_NotFoundIsNotCached(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	repo := NewCachedRepository(NewMemoryRepository(nil), cache.NewUserCache(client, time.Minute), nil)

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)

	exists, err := client.Exists(ctx, cache.UserKey("missing")).Result()
	require.NoError(t, err)
	assert.Zero(t, exists)
}

func TestCachedRepository_PassesThroughOtherLookups(t *testing.T) {
	client := setupTestRedis(t)
	ctx := context.Background()

	repo := NewCachedRepository(NewMemoryRepository(nil), cache.NewUserCache(client, time.Minute), nil)
	require.NoError(t, repo.Create(ctx, &User{ID: "1", Username: "alice", Email: "a@x.com", Password: "hash"}))

	u, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "hash", u.Password)
}
