package application

import (
	"context"
	"strings"

	"github.com/wyfcoding/velure/internal/order/domain"
)

// OrderQueryService 订单查询服务
type OrderQueryService struct {
	repo domain.OrderRepository
}

// NewOrderQueryService 创建订单查询服务实例
func NewOrderQueryService(repo domain.OrderRepository) *OrderQueryService {
	return &OrderQueryService{repo: repo}
}

// ListOrders 列出订单，status 为空或 all 时返回全部
func (s *OrderQueryService) ListOrders(ctx context.Context, status string) ([]*domain.Order, error) {
	var st domain.OrderStatus
	if status != "" && !strings.EqualFold(status, "all") {
		var err error
		if st, err = domain.ParseStatus(status); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, st)
}

// ListMyOrders 列出用户自己的订单
func (s *OrderQueryService) ListMyOrders(ctx context.Context, ownerID string) ([]*domain.Order, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repo.ListByOwner(ctx, ownerID)
}
