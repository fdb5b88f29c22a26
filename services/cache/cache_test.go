package cachesvc

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/report"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	srv := miniredis.RunT(t)
	client, err := NewRedisClient(context.Background(), core.RedisConfig{Address: srv.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCache(client), srv
}

func testCache(t *testing.T, cache report.Cache) {
	ctx := context.Background()

	gen, err := cache.Generation(ctx)
	require.NoError(t, err)

	_, ok, err := cache.Get(ctx, gen, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "empty cache")

	require.NoError(t, cache.Set(ctx, gen, "k1", []byte("v1"), time.Minute))
	require.NoError(t, cache.Set(ctx, gen, "k2", []byte("v2"), 0))

	val, ok, err := cache.Get(ctx, gen, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1"), val)

	require.NoError(t, cache.Invalidate(ctx))
	newGen, err := cache.Generation(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, gen, newGen)
	for _, key := range []string{"k1", "k2"} {
		_, ok, err = cache.Get(ctx, newGen, key)
		require.NoError(t, err)
		assert.False(t, ok, "%s survived invalidation", key)
	}

	// a value computed before the invalidation stays invisible
	require.NoError(t, cache.Set(ctx, gen, "k1", []byte("stale"), time.Minute))
	_, ok, err = cache.Get(ctx, newGen, "k1")
	require.NoError(t, err)
	assert.False(t, ok, "stale generation was stored")

	require.NoError(t, cache.Set(ctx, newGen, "k1", []byte("v1bis"), time.Minute))
	val, ok, err = cache.Get(ctx, newGen, "k1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v1bis"), val)
}

func TestRedisCache(t *testing.T) {
	cache, _ := newRedisCache(t)
	testCache(t, cache)
}

func TestRedisCache_ttl(t *testing.T) {
	cache, srv := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 0, "k", []byte("v"), time.Minute))
	srv.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, 0, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_keys(t *testing.T) {
	cache, srv := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 0, "k", []byte("v"), time.Minute))
	assert.True(t, srv.Exists("darasa:reports:0:k"))

	require.NoError(t, cache.Invalidate(ctx))
	gen, err := cache.Generation(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Set(ctx, gen, "k", []byte("v"), time.Minute))
	assert.True(t, srv.Exists("darasa:reports:1:k"))
	stored, err := srv.Get(generationKey)
	require.NoError(t, err)
	assert.Equal(t, "1", stored)
}

func TestRedisCache_unavailable(t *testing.T) {
	cache, srv := newRedisCache(t)
	srv.Close()

	_, err := cache.Generation(context.Background())
	assert.Error(t, err)
	_, _, err = cache.Get(context.Background(), 0, "k")
	assert.Error(t, err)
}

func TestNewRedisClient_unreachable(t *testing.T) {
	srv := miniredis.RunT(t)
	addr := srv.Addr()
	srv.Close()

	_, err := NewRedisClient(context.Background(), core.RedisConfig{Address: addr})
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	testCache(t, NewMemoryCache())
}

func TestMemoryCache_ttl(t *testing.T) {
	cache := NewMemoryCache()
	now := time.Date(2021, 3, 1, 8, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, 0, "k", []byte("v"), time.Minute))
	now = now.Add(59 * time.Second)
	_, ok, _ := cache.Get(ctx, 0, "k")
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, _ = cache.Get(ctx, 0, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len(), "expired entries are evicted on read")
}

func TestMemoryCache_copies(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	val := []byte("abc")
	require.NoError(t, cache.Set(ctx, 0, "k", val, 0))
	val[0] = 'z'

	got, _, _ := cache.Get(ctx, 0, "k")
	assert.Equal(t, []byte("abc"), got)
	got[1] = 'z'
	got, _, _ = cache.Get(ctx, 0, "k")
	assert.Equal(t, []byte("abc"), got)
}
