package mysql

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/velure/internal/order/domain"
)

// OrderModel MySQL 订单表映射
type OrderModel struct {
	ID              uint                   `gorm:"primaryKey;autoIncrement"`
	CreatedAt       time.Time              `gorm:"column:created_at;index"`
	UpdatedAt       time.Time              `gorm:"column:updated_at"`
	OrderNo         string                 `gorm:"column:order_no;type:varchar(32);uniqueIndex;not null"`
	OwnerID         string                 `gorm:"column:owner_id;type:varchar(64);index;not null"`
	Currency        string                 `gorm:"column:currency;type:varchar(3);not null"`
	TotalPrice      decimal.Decimal        `gorm:"column:total_price;type:decimal(20,2);not null"`
	Status          string                 `gorm:"column:status;type:varchar(20);index;not null"`
	IsDelivered     bool                   `gorm:"column:is_delivered;not null;default:false"`
	DeliveredAt     *time.Time             `gorm:"column:delivered_at"`
	ShippingAddress domain.ShippingAddress `gorm:"column:shipping_address;serializer:json;type:text"`
	Items           []OrderItemModel       `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单行表
type OrderItemModel struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   uint            `gorm:"column:order_id;index;not null"`
	ProductID uint            `gorm:"column:product_id;not null"`
	Name      string          `gorm:"column:name;type:varchar(255);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:decimal(20,2);not null"`
	ImageRef  string          `gorm:"column:image_ref;type:varchar(512)"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// mapping helpers

func toOrderModel(o *domain.Order) *OrderModel {
	if o == nil {
		return nil
	}
	items := make([]OrderItemModel, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemModel{
			OrderID:   o.ID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ImageRef:  it.ImageRef,
		})
	}
	return &OrderModel{
		ID:              o.ID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		OrderNo:         o.OrderNo,
		OwnerID:         o.OwnerID,
		Currency:        string(o.Currency),
		TotalPrice:      o.TotalPrice,
		Status:          string(o.Status),
		IsDelivered:     o.IsDelivered,
		DeliveredAt:     o.DeliveredAt,
		ShippingAddress: o.ShippingAddress,
		Items:           items,
	}
}

func toOrder(m *OrderModel) *domain.Order {
	if m == nil {
		return nil
	}
	items := make([]domain.OrderItem, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			ImageRef:  it.ImageRef,
		})
	}
	return &domain.Order{
		ID:              m.ID,
		OrderNo:         m.OrderNo,
		OwnerID:         m.OwnerID,
		Items:           items,
		Currency:        domain.Currency(m.Currency),
		TotalPrice:      m.TotalPrice,
		Status:          domain.OrderStatus(m.Status),
		IsDelivered:     m.IsDelivered,
		DeliveredAt:     m.DeliveredAt,
		ShippingAddress: m.ShippingAddress,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
