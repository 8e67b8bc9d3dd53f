package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/pkg/cache"
)

func TestProductCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	pc := NewProductCache(cache.NewFromClient(client))
	ctx := context.Background()

	_, found, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)

	p := &domain.Product{
		ID:       1,
		Name:     "Aurora Ring",
		PriceINR: decimal.RequireFromString("45000"),
		PriceUSD: decimal.RequireFromString("540.50"),
		Images:   []string{"/img/aurora.jpg"},
		Stock:    3,
	}
	require.NoError(t, pc.Set(ctx, p, time.Minute))
	assert.True(t, mr.Exists("velure:product:1"))

	got, found, err := pc.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Aurora Ring", got.Name)
	assert.True(t, got.PriceUSD.Equal(p.PriceUSD))
	assert.Equal(t, []string{"/img/aurora.jpg"}, got.Images)

	require.NoError(t, pc.Invalidate(ctx, 1, 2))
	_, found, err = pc.Get(ctx, 1)
	require.NoError(t, err)
	assert.False(t, found)
}
