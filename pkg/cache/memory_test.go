package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	clk := newFakeClock()
	mc := NewMemoryCache(WithMemoryClock(clk.Now), WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "snapshot", []byte("rows"), 10*time.Minute))

	clk.Advance(9 * time.Minute)
	b, ok, err := mc.Get(ctx, "snapshot")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rows", string(b))

	clk.Advance(time.Minute)
	_, ok, err = mc.Get(ctx, "snapshot")
	require.NoError(t, err)
	assert.False(t, ok, "entry must expire exactly at ttl")
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCache_NoTTLNeverExpires(t *testing.T) {
	clk := newFakeClock()
	mc := NewMemoryCache(WithMemoryClock(clk.Now), WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", []byte("v"), 0))
	clk.Advance(365 * 24 * time.Hour)

	_, ok, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	clk := newFakeClock()
	mc := NewMemoryCache(WithMemoryClock(clk.Now), WithMemoryMaxSize(2), WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", []byte("1"), 0))
	clk.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "b", []byte("2"), 0))
	clk.Advance(time.Second)
	_, _, _ = mc.Get(ctx, "a")
	clk.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "c", []byte("3"), 0))

	_, ok, _ := mc.Get(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	_, ok, _ = mc.Get(ctx, "a")
	assert.True(t, ok)
	_, ok, _ = mc.Get(ctx, "c")
	assert.True(t, ok)
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	src := []byte("abc")
	require.NoError(t, mc.Set(ctx, "k", src, time.Minute))
	src[0] = 'x'

	b, ok, err := mc.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "abc", string(b))
}

func TestJSONHelpers(t *testing.T) {
	mc := NewMemoryCache(WithMemoryCleanup(0))
	defer mc.Close()
	ctx := context.Background()

	type row struct {
		Code string `json:"code"`
	}
	require.NoError(t, SetJSON(ctx, mc, "rows", []row{{Code: "600519"}}, time.Minute))

	got, ok, err := GetJSON[[]row](ctx, mc, "rows")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []row{{Code: "600519"}}, got)

	require.NoError(t, mc.Set(ctx, "broken", []byte("{"), time.Minute))
	_, ok, err = GetJSON[[]row](ctx, mc, "broken")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "fetch:snapshot:all", Key("fetch", "snapshot", "all"))
	assert.Equal(t, "fetch:snapshot", Key("fetch", "snapshot", ""))
	assert.Len(t, HashKey("x"), 32)
	assert.Equal(t, HashKey("600519"), HashKey("600519"))
	assert.NotEqual(t, HashKey("600519"), HashKey("000001"))
}
