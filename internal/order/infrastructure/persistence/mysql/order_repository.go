package mysql

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/velure/internal/order/domain"
	"github.com/wyfcoding/velure/pkg/db"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(database *gorm.DB) domain.OrderRepository {
	return &orderRepository{db: database}
}

func (r *orderRepository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	m := toOrderModel(order)
	if err := r.conn(ctx).Create(m).Error; err != nil {
		return err
	}
	order.ID = m.ID
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id uint) (*domain.Order, error) {
	var m OrderModel
	err := r.conn(ctx).Preload("Items").First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return toOrder(&m), nil
}

func (r *orderRepository) List(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	q := r.conn(ctx).Preload("Items")
	if status != "" {
		q = q.Where("status = ?", string(status))
	}
	return r.find(q)
}

func (r *orderRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	return r.find(r.conn(ctx).Preload("Items").Where("owner_id = ?", ownerID))
}

func (r *orderRepository) find(q *gorm.DB) ([]*domain.Order, error) {
	var models []OrderModel
	if err := q.Order("created_at DESC, id DESC").Find(&models).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, toOrder(&models[i]))
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, order *domain.Order) error {
	res := r.conn(ctx).Model(&OrderModel{}).Where("id = ?", order.ID).Updates(map[string]any{
		"status":       string(order.Status),
		"is_delivered": order.IsDelivered,
		"delivered_at": order.DeliveredAt,
		"updated_at":   order.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrOrderNotFound, order.ID)
	}
	return nil
}

func (r *orderRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&OrderItemModel{}).Error; err != nil {
			return err
		}
		res := global.Delete(&OrderModel{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

// Models 返回需要迁移的表模型
func Models() []any {
	return []any{&OrderModel{}, &OrderItemModel{}}
}
