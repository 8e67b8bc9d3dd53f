package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicProductCreated      = "product.created"
	TopicProductUpdated      = "product.updated"
	TopicProductDeleted      = "product.deleted"
	TopicProductStockChanged = "product.stock.changed"
)

// ProductCreatedEvent 商品创建事件
type ProductCreatedEvent struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	PriceINR  decimal.Decimal `json:"price_inr"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Timestamp time.Time       `json:"timestamp"`
}

// ProductUpdatedEvent 商品更新事件
type ProductUpdatedEvent struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	PriceINR  decimal.Decimal `json:"price_inr"`
	PriceUSD  decimal.Decimal `json:"price_usd"`
	Stock     int             `json:"stock"`
	Category  string          `json:"category"`
	Timestamp time.Time       `json:"timestamp"`
}

// ProductDeletedEvent 商品删除事件
type ProductDeletedEvent struct {
	ProductID uint      `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

// ProductStockChangedEvent 商品库存变更事件
type ProductStockChangedEvent struct {
	ProductID uint      `json:"product_id"`
	OldStock  int       `json:"old_stock"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}
