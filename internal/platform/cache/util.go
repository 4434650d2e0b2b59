package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"umarket/internal/platform/metrics"
)

// genTTL は世代キーの保持期間です。期限切れは世代の変化として扱われるため、短くても安全です。
const genTTL = 24 * time.Hour

// readThrough はキャッシュを確認し、なければ load の結果を保存して返します。
// Redis の障害はキャッシュミスとして扱い、load のエラーはキャッシュしません。
//
// genKey が空でなければ、load の前後で世代キーを比較し、その間に invalidate された
// 場合は保存しません（古い値で無効化を上書きしないため）。比較から Set までの間に
// 入った書き込みは残りますが、その影響は ttl で打ち切られます。
func readThrough[T any](ctx context.Context, rdb *redis.Client, cacheName, key, genKey string, ttl time.Duration, load func() (*T, error)) (*T, error) {
	b, err := rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out T
		if err := json.Unmarshal(b, &out); err == nil {
			metrics.CacheLookups.WithLabelValues(cacheName, "hit").Inc()
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = rdb.Del(ctx, key).Err()
		metrics.CacheLookups.WithLabelValues(cacheName, "miss").Inc()
	case err == nil, errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues(cacheName, "miss").Inc()
	default:
		slog.Warn("cache read failed", "cache", cacheName, "key", key, "error", err)
		metrics.CacheLookups.WithLabelValues(cacheName, "error").Inc()
	}

	var before int64
	cacheable := true
	if genKey != "" {
		before, cacheable = generation(ctx, rdb, genKey)
	}

	out, err := load()
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return out, nil
	}
	if genKey != "" {
		if after, ok := generation(ctx, rdb, genKey); !ok || after != before {
			slog.Debug("cache write skipped, entry invalidated during load", "cache", cacheName, "key", key)
			metrics.CacheSkippedWrites.WithLabelValues(cacheName).Inc()
			return out, nil
		}
	}
	// Best effort
	if b, err := json.Marshal(out); err == nil {
		_ = rdb.Set(ctx, key, b, ttl).Err()
	}
	return out, nil
}

// generation は世代キーの値を返します。未設定は0です。読めなければ ok=false です。
func generation(ctx context.Context, rdb *redis.Client, genKey string) (int64, bool) {
	n, err := rdb.Get(ctx, genKey).Int64()
	switch {
	case err == nil:
		return n, true
	case errors.Is(err, redis.Nil):
		return 0, true
	default:
		return 0, false
	}
}

// bumpGeneration は進行中の readThrough が古い値を保存しないよう世代を進めます。
func bumpGeneration(ctx context.Context, rdb *redis.Client, genKey string) error {
	if err := rdb.Incr(ctx, genKey).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, genKey, genTTL).Err()
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
