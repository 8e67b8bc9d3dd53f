package domain

import (
	"context"
	"time"
)

// ProductRepository 商品仓储
type ProductRepository interface {
	Save(ctx context.Context, product *Product) error
	// Update 只写入 columns 列出的字段，随后用库中最新数据刷新 product
	Update(ctx context.Context, product *Product, columns ...string) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, int64, error)
	Delete(ctx context.Context, id uint) error
	// DecrementStock 条件扣减库存，库存不足时返回 ErrInsufficientStock
	DecrementStock(ctx context.Context, id uint, qty int) error
	// ReplaceAll 删除全部商品后写入给定集合
	ReplaceAll(ctx context.Context, products []*Product) error
}

// ProductCache 商品读缓存
type ProductCache interface {
	Get(ctx context.Context, id uint) (*Product, bool, error)
	Set(ctx context.Context, product *Product, ttl time.Duration) error
	Invalidate(ctx context.Context, ids ...uint) error
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}
