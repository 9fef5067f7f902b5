package fetcher

import (
	"context"
	"time"

	"StockPulse/pkg/cache"
	"StockPulse/pkg/logger"
)

// CacheKey is the cache key for one (source, params) pair.
func CacheKey(source, params string) string {
	if params == "" {
		return cache.Key("fetch", source)
	}
	return cache.Key("fetch", source, cache.HashKey(params))
}

// CachedFetch serves fresh entries from the cache and falls back to Fetch.
// Cache failures are logged and bypassed; fetch failures are never cached.
func CachedFetch[T any](ctx context.Context, f *Fetcher, source, params string, ttl time.Duration, policy Policy, fn func(context.Context) (T, error)) (T, error) {
	if f.cache == nil || ttl <= 0 {
		return Fetch(ctx, f, source, params, policy, fn)
	}

	key := CacheKey(source, params)
	v, ok, err := cache.GetJSON[T](ctx, f.cache, key)
	switch {
	case err != nil:
		f.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
	case ok:
		f.metrics.RecordCacheResult(source, true)
		return v, nil
	default:
		f.metrics.RecordCacheResult(source, false)
	}

	v, err = Fetch(ctx, f, source, params, policy, fn)
	if err != nil {
		return v, err
	}
	if err := cache.SetJSON(ctx, f.cache, key, v, ttl); err != nil {
		f.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
	return v, nil
}
