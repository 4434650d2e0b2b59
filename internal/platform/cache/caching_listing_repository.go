package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"umarket/internal/feature/listings/domain/entity"
	"umarket/internal/feature/listings/usecase"
)

// CachingListingRepository decorates a ListingRepository with Redis caching of single listings.
// List queries always hit the inner repository; writes invalidate the listing's entry.
type CachingListingRepository struct {
	inner     usecase.ListingRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.ListingRepository = (*CachingListingRepository)(nil)

// NewCachingListingRepository decorates a ListingRepository with Redis caching.
// If ttl is 0, it defaults to 1 minute. If namespace is empty, it uses "listings".
func NewCachingListingRepository(rdb *redis.Client, ttl time.Duration, inner usecase.ListingRepository, namespace string) *CachingListingRepository {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if namespace == "" {
		namespace = "listings"
	}
	return &CachingListingRepository{inner: inner, rdb: rdb, ttl: ttl, namespace: namespace}
}

func (c *CachingListingRepository) List(ctx context.Context, filter entity.ListingFilter) ([]entity.Listing, error) {
	return c.inner.List(ctx, filter)
}

// FindByID returns the cached listing or loads it from the inner repository.
func (c *CachingListingRepository) FindByID(ctx context.Context, id string) (*entity.Listing, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}
	return readThrough(ctx, c.rdb, c.namespace, c.cacheKey(id), c.genKey(id), c.ttl, func() (*entity.Listing, error) {
		return c.inner.FindByID(ctx, id)
	})
}

func (c *CachingListingRepository) Create(ctx context.Context, listing *entity.Listing) (*entity.Listing, error) {
	return c.inner.Create(ctx, listing)
}

// Update writes through to the inner repository and invalidates the cached entry.
func (c *CachingListingRepository) Update(ctx context.Context, id string, changes entity.ListingChanges) (*entity.Listing, error) {
	out, err := c.inner.Update(ctx, id, changes)
	c.invalidate(ctx, id)
	return out, err
}

// Delete removes the listing and invalidates the cached entry.
func (c *CachingListingRepository) Delete(ctx context.Context, id string) error {
	err := c.inner.Delete(ctx, id)
	c.invalidate(ctx, id)
	return err
}

// invalidate は失敗した書き込みの後も呼ばれます。部分的に適用された可能性があるためです。
// 世代を先に進めてから削除するので、並行する FindByID が古い値を書き戻すことはありません。
func (c *CachingListingRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := bumpGeneration(ctx, c.rdb, c.genKey(id)); err != nil {
		slog.Warn("cache generation bump failed", "cache", c.namespace, "listing_id", id, "error", err)
	}
	if err := c.rdb.Del(ctx, c.cacheKey(id)).Err(); err != nil {
		slog.Warn("cache invalidation failed", "cache", c.namespace, "listing_id", id, "error", err)
	}
}

func (c *CachingListingRepository) cacheKey(id string) string {
	return c.namespace + ":" + safe(id)
}

func (c *CachingListingRepository) genKey(id string) string {
	return c.cacheKey(id) + ":gen"
}
