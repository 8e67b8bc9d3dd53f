package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicItemAdded       = "cart.item.added"
	TopicItemQuantitySet = "cart.item.quantity_set"
	TopicItemRemoved     = "cart.item.removed"
	TopicPurged          = "cart.purged"
)

// CartItemAddedEvent 购物车添加商品事件
type CartItemAddedEvent struct {
	CartID    uint            `json:"cart_id"`
	OwnerID   string          `json:"owner_id"`
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	LineQty   int             `json:"line_quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  Currency        `json:"currency"`
	Timestamp time.Time       `json:"timestamp"`
}

// CartItemQuantitySetEvent 购物车修改数量事件
type CartItemQuantitySetEvent struct {
	CartID    uint      `json:"cart_id"`
	OwnerID   string    `json:"owner_id"`
	ProductID uint      `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

// CartItemRemovedEvent 购物车移除商品事件
type CartItemRemovedEvent struct {
	CartID    uint      `json:"cart_id"`
	OwnerID   string    `json:"owner_id"`
	ProductID uint      `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// CartsPurgedEvent 批量删除购物车事件
type CartsPurgedEvent struct {
	Deleted   int64     `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}
