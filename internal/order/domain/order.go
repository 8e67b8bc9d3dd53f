// Package domain 包含订单领域模型
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
)

var (
	ErrUnauthenticated   = errors.New("not logged in")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrConflict 下单期间购物车被修改
	ErrConflict = errors.New("cart changed during checkout")
	// ErrUnavailable 购物车或存储暂不可用，可稍后重试
	ErrUnavailable = errors.New("checkout temporarily unavailable")
)

// Currency 与商品目录共用货币定义
type Currency = catalog.Currency

// OrderStatus 订单状态
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ParseStatus 解析订单状态
func ParseStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	}
	return "", fmt.Errorf("%w: Invalid status value %q", ErrInvalidArgument, s)
}

// ShippingAddress 收货地址
type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone,omitempty"`
}

// Validate 校验必填字段
func (a ShippingAddress) Validate() error {
	fields := []struct{ name, value string }{
		{"fullName", a.FullName},
		{"address", a.Address},
		{"city", a.City},
		{"postalCode", a.PostalCode},
		{"country", a.Country},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: shipping address missing %s", ErrInvalidArgument, strings.Join(missing, ", "))
	}
	return nil
}

// OrderItem 订单行，价格取自下单时购物车快照
type OrderItem struct {
	ProductID uint            `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"price"`
	ImageRef  string          `json:"image"`
}

// Order 订单实体
type Order struct {
	ID              uint            `json:"id"`
	OrderNo         string          `json:"orderId"`
	OwnerID         string          `json:"ownerId"`
	Items           []OrderItem     `json:"items"`
	Currency        Currency        `json:"currency"`
	TotalPrice      decimal.Decimal `json:"totalPrice"`
	Status          OrderStatus     `json:"status"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// NewOrder 创建待处理订单。所有行必须使用同一货币
func NewOrder(orderNo, ownerID string, currency Currency, items []OrderItem, shipping ShippingAddress) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrInvalidArgument)
	}
	total := decimal.Zero
	for _, it := range items {
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
		}
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return &Order{
		OrderNo:         orderNo,
		OwnerID:         ownerID,
		Items:           items,
		Currency:        currency,
		TotalPrice:      total,
		Status:          StatusPending,
		ShippingAddress: shipping,
	}, nil
}

// SetStatus 更新状态，delivered 时记录送达时间
func (o *Order) SetStatus(s OrderStatus, now time.Time) {
	o.Status = s
	if s == StatusDelivered {
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
}
