package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
	TopicOrdersPurged       = "order.purged"
)

// OrderCreatedEvent 下单成功事件
type OrderCreatedEvent struct {
	OrderID    uint            `json:"order_id"`
	OrderNo    string          `json:"order_no"`
	OwnerID    string          `json:"owner_id"`
	Currency   Currency        `json:"currency"`
	TotalPrice decimal.Decimal `json:"total_price"`
	ItemCount  int             `json:"item_count"`
	Timestamp  time.Time       `json:"timestamp"`
}

// OrderStatusChangedEvent 订单状态变更事件
type OrderStatusChangedEvent struct {
	OrderID   uint        `json:"order_id"`
	OrderNo   string      `json:"order_no"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	Timestamp time.Time   `json:"timestamp"`
}

// OrdersPurgedEvent 订单清空事件
type OrdersPurgedEvent struct {
	Deleted   int64     `json:"deleted"`
	Timestamp time.Time `json:"timestamp"`
}
