package domain

import (
	"context"

	cart "github.com/wyfcoding/velure/internal/cart/domain"
)

// OrderRepository 订单仓储接口
type OrderRepository interface {
	// Create 保存新订单及订单行
	Create(ctx context.Context, order *Order) error
	// Get 根据主键获取订单
	Get(ctx context.Context, id uint) (*Order, error)
	// List 按创建时间倒序列出订单，status 为空时不过滤
	List(ctx context.Context, status OrderStatus) ([]*Order, error)
	// ListByOwner 列出用户订单
	ListByOwner(ctx context.Context, ownerID string) ([]*Order, error)
	// UpdateStatus 更新订单状态
	UpdateStatus(ctx context.Context, order *Order) error
	// DeleteAll 删除所有订单，返回删除数量
	DeleteAll(ctx context.Context) (int64, error)
}

// CartPort 购物车端口。Clear 在购物车版本变化时失败
type CartPort interface {
	Fetch(ctx context.Context, ownerID string) (*cart.Cart, error)
	Clear(ctx context.Context, c *cart.Cart) error
}

// InventoryPort 库存端口。DecrementStock 须在下单事务内调用，StockCommitted 在提交后调用
type InventoryPort interface {
	DecrementStock(ctx context.Context, productID uint, qty int) error
	StockCommitted(ctx context.Context, productID uint, qty int)
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, event any) error
}

// TxManager 事务管理
type TxManager interface {
	WithTx(ctx context.Context, fn func(txCtx context.Context) error) error
}
