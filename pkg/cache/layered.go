package cache

import (
	"context"
	"time"
)

// LayeredCache implements two-level cache (L1: Memory, L2: Redis).
type LayeredCache struct {
	memCache    *MemoryCache
	remote      Cache
	backfillTTL time.Duration
}

// NewLayeredCache creates a layered cache over a remote L2.
func NewLayeredCache(remote Cache, opts ...LayeredOption) *LayeredCache {
	cfg := &LayeredConfig{
		MemoryMaxSize: 1000,
		BackfillTTL:   time.Minute,
		Clock:         time.Now,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &LayeredCache{
		memCache:    NewMemoryCache(WithMemoryMaxSize(cfg.MemoryMaxSize), WithMemoryClock(cfg.Clock)),
		remote:      remote,
		backfillTTL: cfg.BackfillTTL,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// Write-through: remote first, then memory
	if err := lc.remote.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return lc.memCache.Set(ctx, key, value, ttl)
}

func (lc *LayeredCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b, ok, _ := lc.memCache.Get(ctx, key); ok {
		return b, true, nil
	}

	b, ok, err := lc.remote.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}

	// L1 keeps the hit briefly; L2 stays the source of truth for expiry.
	_ = lc.memCache.Set(ctx, key, b, lc.backfillTTL)
	return b, true, nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.memCache.Delete(ctx, keys...)
	return lc.remote.Delete(ctx, keys...)
}

// Close closes the memory layer. The remote is owned by its creator.
func (lc *LayeredCache) Close() error {
	return lc.memCache.Close()
}

var _ Cache = (*LayeredCache)(nil)
