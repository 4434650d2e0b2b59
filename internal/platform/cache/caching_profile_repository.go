// Package cache provides Redis read-through decorators for repository interfaces.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"umarket/internal/feature/users/domain/entity"
	"umarket/internal/feature/users/usecase"
)

// CachingProfileRepository decorates a ProfileRepository with Redis caching.
// Profiles are owned by the auth service, so entries simply expire after ttl.
type CachingProfileRepository struct {
	inner     usecase.ProfileRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ProfileRepository = (*CachingProfileRepository)(nil)

// NewCachingProfileRepository decorates a ProfileRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "profiles".
func NewCachingProfileRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ProfileRepository, namespace string) *CachingProfileRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "profiles"
	}
	return &CachingProfileRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

// FindByID returns the cached profile or loads it from the inner repository.
func (c *CachingProfileRepository) FindByID(ctx context.Context, id string) (*entity.Profile, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}
	return readThrough(ctx, c.rdb, c.namespace, c.cacheKey(id), "", c.ttl, func() (*entity.Profile, error) {
		return c.inner.FindByID(ctx, id)
	})
}

func (c *CachingProfileRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}
