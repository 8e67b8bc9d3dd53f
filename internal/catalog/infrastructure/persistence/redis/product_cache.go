package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/pkg/cache"
)

const keyPrefix = "velure:product:"

type productCache struct {
	rc *cache.RedisCache
}

// NewProductCache 创建基于 Redis 的商品缓存
func NewProductCache(rc *cache.RedisCache) domain.ProductCache {
	return &productCache{rc: rc}
}

func productKey(id uint) string {
	return fmt.Sprintf("%s%d", keyPrefix, id)
}

func (c *productCache) Get(ctx context.Context, id uint) (*domain.Product, bool, error) {
	var p domain.Product
	found, err := c.rc.GetJSON(ctx, productKey(id), &p)
	if err != nil || !found {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *productCache) Set(ctx context.Context, product *domain.Product, ttl time.Duration) error {
	return c.rc.SetJSON(ctx, productKey(product.ID), product, ttl)
}

func (c *productCache) Invalidate(ctx context.Context, ids ...uint) error {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, productKey(id))
	}
	return c.rc.Delete(ctx, keys...)
}
