package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/pkg/idgen"
	"github.com/wyfcoding/pkg/logging"
	cart "github.com/wyfcoding/velure/internal/cart/domain"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/internal/order/domain"
	"github.com/wyfcoding/velure/pkg/metrics"
)

// CheckoutCommand 下单命令
type CheckoutCommand struct {
	OwnerID         string
	ShippingAddress domain.ShippingAddress
}

// OrderCommandService 订单命令服务
type OrderCommandService struct {
	repo      domain.OrderRepository
	carts     domain.CartPort
	inventory domain.InventoryPort
	tx        domain.TxManager
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
}

// NewOrderCommandService 创建订单命令服务实例
func NewOrderCommandService(
	repo domain.OrderRepository,
	carts domain.CartPort,
	inventory domain.InventoryPort,
	tx domain.TxManager,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
) *OrderCommandService {
	return &OrderCommandService{
		repo:      repo,
		carts:     carts,
		inventory: inventory,
		tx:        tx,
		publisher: publisher,
		metrics:   m,
	}
}

// Checkout 将购物车转为订单。扣减库存、写入订单与清空购物车在同一事务内完成，
// 购物车在读取后被修改时整体回滚
func (s *OrderCommandService) Checkout(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	if strings.TrimSpace(cmd.OwnerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := cmd.ShippingAddress.Validate(); err != nil {
		return nil, err
	}

	c, err := s.carts.Fetch(ctx, cmd.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load cart: %v", domain.ErrUnavailable, err)
	}
	if len(c.Lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", domain.ErrInvalidArgument)
	}
	currencies := c.Currencies()
	if len(currencies) > 1 {
		return nil, fmt.Errorf("%w: cart mixes currencies %v, checkout requires a single currency", domain.ErrInvalidArgument, currencies)
	}

	items := make([]domain.OrderItem, 0, len(c.Lines))
	for _, l := range c.Lines {
		items = append(items, domain.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			ImageRef:  l.ImageRef,
		})
	}
	order, err := domain.NewOrder(fmt.Sprintf("ORD-%d", idgen.GenID()), cmd.OwnerID, currencies[0], items, cmd.ShippingAddress)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		for _, it := range order.Items {
			if err := s.inventory.DecrementStock(txCtx, it.ProductID, it.Quantity); err != nil {
				return stockError(it, err)
			}
		}
		if err := s.repo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		if err := s.carts.Clear(txCtx, c); err != nil {
			switch {
			case errors.Is(err, cart.ErrVersionConflict):
				return fmt.Errorf("%w, please review your cart and retry", domain.ErrConflict)
			case errors.Is(err, cart.ErrUnavailable):
				return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		logging.Warn(ctx, "checkout aborted", "owner_id", cmd.OwnerID, "error", err)
		return nil, err
	}

	for _, it := range order.Items {
		s.inventory.StockCommitted(ctx, it.ProductID, it.Quantity)
	}
	s.metrics.RecordOrder(string(order.Currency))
	logging.Info(ctx, "order placed", "order_no", order.OrderNo, "owner_id", order.OwnerID, "total", order.TotalPrice.String())
	s.publish(ctx, domain.TopicOrderCreated, order.OrderNo, domain.OrderCreatedEvent{
		OrderID:    order.ID,
		OrderNo:    order.OrderNo,
		OwnerID:    order.OwnerID,
		Currency:   order.Currency,
		TotalPrice: order.TotalPrice,
		ItemCount:  len(order.Items),
		Timestamp:  time.Now(),
	})
	return order, nil
}

func stockError(it domain.OrderItem, err error) error {
	switch {
	case errors.Is(err, catalog.ErrInsufficientStock):
		return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, it.Name)
	case errors.Is(err, catalog.ErrProductNotFound):
		return fmt.Errorf("%w: %s is no longer available", domain.ErrInvalidArgument, it.Name)
	default:
		return fmt.Errorf("failed to reserve stock for product %d: %w", it.ProductID, err)
	}
}

// UpdateStatus 管理员修改订单状态
func (s *OrderCommandService) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Order, error) {
	if strings.TrimSpace(status) == "" {
		return nil, fmt.Errorf("%w: Status is required", domain.ErrInvalidArgument)
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	old := order.Status
	order.SetStatus(st, time.Now())
	if err := s.repo.UpdateStatus(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicOrderStatusChanged, order.OrderNo, domain.OrderStatusChangedEvent{
		OrderID:   order.ID,
		OrderNo:   order.OrderNo,
		OldStatus: old,
		NewStatus: st,
		Timestamp: order.UpdatedAt,
	})
	return order, nil
}

// PurgeAll 删除全部订单
func (s *OrderCommandService) PurgeAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	logging.Warn(ctx, "all orders purged", "deleted", n)
	s.publish(ctx, domain.TopicOrdersPurged, "", domain.OrdersPurgedEvent{Deleted: n, Timestamp: time.Now()})
	return n, nil
}

func (s *OrderCommandService) publish(ctx context.Context, topic, key string, event any) {
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logging.Warn(ctx, "failed to publish order event", "topic", topic, "key", key, "error", err)
	}
}
