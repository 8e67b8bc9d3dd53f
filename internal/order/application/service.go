package application

import (
	"context"

	"github.com/wyfcoding/velure/internal/order/domain"
)

// OrderApplicationService 订单服务门面
type OrderApplicationService struct {
	commandService *OrderCommandService
	queryService   *OrderQueryService
}

// NewOrderApplicationService 创建订单服务门面实例
func NewOrderApplicationService(cmd *OrderCommandService, query *OrderQueryService) *OrderApplicationService {
	return &OrderApplicationService{commandService: cmd, queryService: query}
}

func (s *OrderApplicationService) Checkout(ctx context.Context, cmd CheckoutCommand) (*domain.Order, error) {
	return s.commandService.Checkout(ctx, cmd)
}

func (s *OrderApplicationService) UpdateStatus(ctx context.Context, id uint, status string) (*domain.Order, error) {
	return s.commandService.UpdateStatus(ctx, id, status)
}

func (s *OrderApplicationService) PurgeAll(ctx context.Context) (int64, error) {
	return s.commandService.PurgeAll(ctx)
}

func (s *OrderApplicationService) ListOrders(ctx context.Context, status string) ([]*domain.Order, error) {
	return s.queryService.ListOrders(ctx, status)
}

func (s *OrderApplicationService) ListMyOrders(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	return s.queryService.ListMyOrders(ctx, ownerID)
}
