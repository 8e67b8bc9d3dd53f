package domain

import "context"

// CartRepository 购物车仓储
type CartRepository interface {
	// GetOrCreate 返回 owner 的购物车，不存在时插入空购物车；并发首次访问只会产生一个购物车
	GetOrCreate(ctx context.Context, ownerID string) (*Cart, error)
	// SaveIfVersion 当存储中的版本等于 expected 时整体替换行并递增版本，版本不符时返回 false
	SaveIfVersion(ctx context.Context, cart *Cart, expected int64) (bool, error)
	// DeleteAll 删除所有购物车，返回删除数量
	DeleteAll(ctx context.Context) (int64, error)
}

// CatalogLookup 商品目录查询端口，商品不存在时返回 ErrProductNotFound
type CatalogLookup interface {
	Lookup(ctx context.Context, productID uint) (*ProductSnapshot, error)
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
