package user

import (
	"context"
	"encoding/json"

	"auth_service/internal/cache"
	"auth_service/internal/observability"

	"github.com/sirupsen/logrus"
)

// CachedRepository puts a Redis read-through cache in front of id lookups,
// which the auth middleware performs on every protected request.
// Users served from the cache carry no password hash.
type CachedRepository struct {
	UserRepositoryInterface
	cache   *cache.UserCache
	metrics *observability.Metrics
}

func NewCachedRepository(inner UserRepositoryInterface, userCache *cache.UserCache, metrics *observability.Metrics) *CachedRepository {
	return &CachedRepository{
		UserRepositoryInterface: inner,
		cache:                   userCache,
		metrics:                 metrics,
	}
}

func (r *CachedRepository) GetByID(ctx context.Context, id string) (*User, error) {
	key := cache.UserKey(id)

	cachedData, err := r.cache.Get(ctx, key)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read user cache")
	} else if cachedData != nil {
		var u User
		if json.Unmarshal(cachedData, &u) == nil {
			r.metrics.ObserveCache("user", true)
			return &u, nil
		}
	}
	r.metrics.ObserveCache("user", false)

	u, err := r.UserRepositoryInterface.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache write failures are not critical
	if err := r.cache.Set(ctx, key, u); err != nil {
		logrus.WithError(err).Warn("Failed to set cache for user")
	}

	return u, nil
}
