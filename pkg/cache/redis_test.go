package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCache_Get(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, "sp")
	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		mock.ExpectGet("sp:k").SetVal("v")
		b, ok, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v", string(b))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss is not an error", func(t *testing.T) {
		mock.ExpectGet("sp:missing").RedisNil()
		b, ok, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, b)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redis error surfaces", func(t *testing.T) {
		mock.ExpectGet("sp:bad").SetErr(errors.New("conn reset"))
		_, ok, err := c.Get(ctx, "bad")
		assert.Error(t, err)
		assert.False(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisCache_SetAndDelete(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, "sp")
	ctx := context.Background()

	mock.ExpectSet("sp:k", []byte("v"), time.Minute).SetVal("OK")
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	mock.ExpectUnlink("sp:a", "sp:b").SetVal(2)
	require.NoError(t, c.Delete(ctx, "a", "b"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayeredCache_BackfillsMemoryFromRemote(t *testing.T) {
	db, mock := redismock.NewClientMock()
	remote := NewRedisCacheWithClient(db, "sp")
	lc := NewLayeredCache(remote, WithLayeredBackfillTTL(time.Minute))
	defer lc.Close()
	ctx := context.Background()

	mock.ExpectGet("sp:snap").SetVal("rows")
	b, ok, err := lc.Get(ctx, "snap")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rows", string(b))

	// Second read is served by L1; no further redis expectation is registered.
	b, ok, err = lc.Get(ctx, "snap")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "rows", string(b))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLayeredCache_SetWritesThrough(t *testing.T) {
	db, mock := redismock.NewClientMock()
	lc := NewLayeredCache(NewRedisCacheWithClient(db, "sp"))
	defer lc.Close()
	ctx := context.Background()

	mock.ExpectSet("sp:k", []byte("v"), 10*time.Minute).SetErr(errors.New("readonly"))
	assert.Error(t, lc.Set(ctx, "k", []byte("v"), 10*time.Minute))

	_, ok, _ := lc.memCache.Get(ctx, "k")
	assert.False(t, ok, "L1 must not hold values the remote rejected")
	assert.NoError(t, mock.ExpectationsWereMet())
}
