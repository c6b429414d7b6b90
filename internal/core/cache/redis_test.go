package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	N int `json:"n"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestGetOrLoadJSON_CachesUntilInvalidated(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var calls int32
	load := func(context.Context) (*payload, error) {
		n := atomic.AddInt32(&calls, 1)
		return &payload{N: int(n)}, nil
	}

	v, err := GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.N)

	v, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v.N)
	assert.True(t, mr.Exists("k"))

	require.NoError(t, c.Invalidate(ctx, "k"))
	v, err = GetOrLoadJSON(c, ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v.N)
}

func TestGetOrLoad_TTLExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	_, err := c.GetOrLoad(ctx, "k", time.Second, func(context.Context) ([]byte, error) { return []byte("a"), nil })
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_LoadErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("boom")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_RedisDownFallsBackToSource(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()
	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("src"), nil })
	require.NoError(t, err)
	assert.Equal(t, "src", string(b))
}

func TestNilCacheBypasses(t *testing.T) {
	var c *Cache
	v, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*payload, error) {
		return &payload{N: 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, v.N)
	assert.NoError(t, c.Invalidate(context.Background(), "k"))
}

func TestGetOrLoadJSON_DropsUndecodablePayload(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("k", "not-json"))

	v, err := GetOrLoadJSON(c, context.Background(), "k", time.Minute, func(context.Context) (*payload, error) {
		return &payload{N: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, v.N)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoad_InvalidateDuringLoadSkipsWriteBack(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	// a write commits and invalidates while the loader still holds the old row
	b, err := c.GetOrLoad(ctx, "k", time.Minute, func(ctx context.Context) ([]byte, error) {
		require.NoError(t, c.Invalidate(ctx, "k"))
		return []byte("stale"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "stale", string(b))
	assert.False(t, mr.Exists("k"))

	b, err = c.GetOrLoad(ctx, "k", time.Minute, func(context.Context) ([]byte, error) { return []byte("fresh"), nil })
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(b))
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}
