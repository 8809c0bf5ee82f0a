package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", payload{Name: "a", Score: 0.3}, time.Minute))
	var got payload
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Score: 0.3}, got)

	require.NoError(t, mc.Delete(ctx, "k"))
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	mc := NewMemoryCache()
	defer mc.Close()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { return clock }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", 1, time.Second))
	clock = clock.Add(2 * time.Second)
	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	defer mc.Close()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mc.now = func() time.Time { clock = clock.Add(time.Millisecond); return clock }
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, mc.Set(ctx, "b", 2, time.Minute))
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	require.NoError(t, mc.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, mc.Len())
	assert.NoError(t, mc.Get(ctx, "a", &v))
	assert.ErrorIs(t, mc.Get(ctx, "b", &v), ErrCacheMiss)
}

type brokenCache struct{}

func (brokenCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}
func (brokenCache) Get(context.Context, string, interface{}) error { return errors.New("redis down") }
func (brokenCache) Delete(context.Context, ...string) error        { return nil }
func (brokenCache) Close() error                                   { return nil }

func TestLayeredCachePromotesFromL2(t *testing.T) {
	l1, l2 := NewMemoryCache(), NewMemoryCache()
	lc := NewLayeredCache(l1, l2, time.Minute)
	defer lc.Close()
	ctx := context.Background()

	require.NoError(t, l2.Set(ctx, "k", payload{Name: "x"}, time.Hour))
	var got payload
	require.NoError(t, lc.Get(ctx, "k", &got))
	assert.Equal(t, "x", got.Name)
	assert.Equal(t, 1, l1.Len(), "L2 hit must be copied into L1")
}

func TestLayeredCacheDegradesOnL2Failure(t *testing.T) {
	lc := NewLayeredCache(NewMemoryCache(), brokenCache{}, time.Minute)
	defer lc.Close()
	ctx := context.Background()

	var got payload
	assert.ErrorIs(t, lc.Get(ctx, "k", &got), ErrCacheMiss)
	assert.Error(t, lc.Set(ctx, "k", payload{Name: "y"}, time.Minute))
	require.NoError(t, lc.Get(ctx, "k", &got), "L1 still serves after a failed L2 write")
	assert.Equal(t, "y", got.Name)
}

func TestGenerateKeyWithParams(t *testing.T) {
	assert.Equal(t, "analogs:X:5.5:100", GenerateKeyWithParams("analogs", "X", 5.5, 100))
}
