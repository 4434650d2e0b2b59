// Package di provides dependency injection factories for creating application components.
package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"umarket/internal/app/config"
	listingadapters "umarket/internal/feature/listings/adapters"
	listingusecase "umarket/internal/feature/listings/usecase"
	orderadapters "umarket/internal/feature/orders/adapters"
	orderusecase "umarket/internal/feature/orders/usecase"
	reportadapters "umarket/internal/feature/reports/adapters"
	reportusecase "umarket/internal/feature/reports/usecase"
	useradapters "umarket/internal/feature/users/adapters"
	userusecase "umarket/internal/feature/users/usecase"
	"umarket/internal/platform/cache"
	infrahttp "umarket/internal/platform/http"
	"umarket/internal/platform/supabase"
	"umarket/internal/shared/ratelimiter"
)

// Stores bundles one repository per feature. Both store drivers produce the same set.
type Stores struct {
	Listings listingusecase.ListingRepository
	Orders   orderusecase.OrderRepository
	Profiles userusecase.ProfileRepository
	Reports  reportusecase.ReportRepository
}

// NewSupabaseClient creates the REST client with a rate-limited HTTP client.
func NewSupabaseClient(cfg *config.Config) *supabase.Client {
	limiter := ratelimiter.NewRateLimiter(cfg.SupabaseRateLimit, cfg.SupabaseRateBurst)
	httpClient := infrahttp.NewHTTPClient(cfg.SupabaseTimeout, limiter)
	return supabase.NewClient(cfg.Supabase(), httpClient)
}

// NewSupabaseStores creates the repositories backed by the Supabase REST API.
func NewSupabaseStores(c *supabase.Client) Stores {
	return Stores{
		Listings: listingadapters.NewListingSupabaseRepository(c),
		Orders:   orderadapters.NewOrderSupabaseRepository(c),
		Profiles: useradapters.NewProfileSupabaseRepository(c),
		Reports:  reportadapters.NewReportSupabaseRepository(c),
	}
}

// NewGormStores creates the repositories backed by a direct Postgres connection.
// Avatar paths still resolve to Supabase Storage URLs when SUPABASE_URL is set.
func NewGormStores(db *gorm.DB, cfg *config.Config) Stores {
	avatarURL := func(path string) *string {
		return supabase.PublicObjectURL(cfg.SupabaseURL, cfg.AvatarBucket, path)
	}
	return Stores{
		Listings: listingadapters.NewListingGormRepository(db),
		Orders:   orderadapters.NewOrderGormRepository(db),
		Profiles: useradapters.NewProfileGormRepository(db, avatarURL),
		Reports:  reportadapters.NewReportGormRepository(db),
	}
}

// WithCache wraps profiles and listings with Redis read-through caches.
// If Redis is unavailable (rdb == nil), the stores are returned unchanged.
func WithCache(s Stores, rdb *redis.Client, cfg *config.Config) Stores {
	if rdb == nil {
		return s
	}
	s.Listings = cache.NewCachingListingRepository(rdb, cfg.ListingCacheTTL, s.Listings, "listings")
	s.Profiles = cache.NewCachingProfileRepository(rdb, cfg.ProfileCacheTTL, s.Profiles, "profiles")
	return s
}

// Models returns every gorm model the Postgres driver migrates.
func Models() []any {
	var out []any
	out = append(out, listingadapters.Models()...)
	out = append(out, orderadapters.Models()...)
	out = append(out, useradapters.Models()...)
	out = append(out, reportadapters.Models()...)
	return out
}
