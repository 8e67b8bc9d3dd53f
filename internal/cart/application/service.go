package application

import (
	"context"

	"github.com/wyfcoding/velure/internal/cart/domain"
	"github.com/wyfcoding/velure/pkg/metrics"
)

// CartApplicationService 购物车服务门面，整合命令服务和查询服务
type CartApplicationService struct {
	commandService *CartCommandService
	queryService   *CartQueryService
}

// NewCartApplicationService 创建购物车服务门面实例
func NewCartApplicationService(
	repo domain.CartRepository,
	catalog domain.CatalogLookup,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	opts Options,
) *CartApplicationService {
	return &CartApplicationService{
		commandService: NewCartCommandService(repo, catalog, publisher, m, opts),
		queryService:   NewCartQueryService(repo),
	}
}

// Fetch 获取购物车，不存在时创建
func (s *CartApplicationService) Fetch(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.queryService.GetCart(ctx, ownerID)
}

// AddItem 加入商品
func (s *CartApplicationService) AddItem(ctx context.Context, req AddItemRequest) (*domain.Cart, error) {
	return s.commandService.AddItem(ctx, req)
}

// SetQuantity 修改数量
func (s *CartApplicationService) SetQuantity(ctx context.Context, req SetQuantityRequest) (*domain.Cart, error) {
	return s.commandService.SetQuantity(ctx, req)
}

// RemoveItem 移除商品
func (s *CartApplicationService) RemoveItem(ctx context.Context, req RemoveItemRequest) (*domain.Cart, error) {
	return s.commandService.RemoveItem(ctx, req)
}

// PurgeAll 删除所有购物车
func (s *CartApplicationService) PurgeAll(ctx context.Context) (int64, error) {
	return s.commandService.PurgeAll(ctx)
}

// Clear 在下单事务内清空购物车
func (s *CartApplicationService) Clear(ctx context.Context, cart *domain.Cart) error {
	return s.commandService.Clear(ctx, cart)
}
