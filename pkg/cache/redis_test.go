package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewFromClient(client), mr
}

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestRedisCache_JSONRoundTrip(t *testing.T) {
	rc, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, rc.SetJSON(ctx, "product:1", item{ID: 1, Name: "Ring"}, time.Minute))

	var got item
	found, err := rc.GetJSON(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Ring", got.Name)

	mr.FastForward(2 * time.Minute)
	found, err = rc.GetJSON(ctx, "product:1", &got)
	require.NoError(t, err)
	assert.False(t, found, "expired key should miss")
}

func TestRedisCache_MissAndDelete(t *testing.T) {
	rc, _ := newTestCache(t)
	ctx := context.Background()

	_, found, err := rc.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, rc.Set(ctx, "k", "v", 0))
	require.NoError(t, rc.Delete(ctx, "k"))
	_, found, err = rc.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, rc.Delete(ctx))
}

func TestRedisCache_CorruptValue(t *testing.T) {
	rc, mr := newTestCache(t)
	require.NoError(t, mr.Set("product:2", "{not json"))

	var got item
	found, err := rc.GetJSON(context.Background(), "product:2", &got)
	assert.Error(t, err)
	assert.False(t, found)
}
