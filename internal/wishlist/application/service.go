package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/pkg/logging"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/internal/wishlist/domain"
)

// WishlistService 心愿单服务
type WishlistService struct {
	repo        domain.Repository
	catalog     domain.CatalogLookup
	placeholder string
}

// NewWishlistService 创建心愿单服务
func NewWishlistService(repo domain.Repository, lookup domain.CatalogLookup, placeholder string) *WishlistService {
	if placeholder == "" {
		placeholder = "/placeholder-product.jpg"
	}
	return &WishlistService{repo: repo, catalog: lookup, placeholder: placeholder}
}

// Fetch 返回用户心愿单，按加入时间排序
func (s *WishlistService) Fetch(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	items, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.Item{}
	}
	return items, nil
}

// Add 加入心愿单，currency 为空时按 INR 记录价格
func (s *WishlistService) Add(ctx context.Context, ownerID string, productID uint, currency string) ([]*domain.Item, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if productID == 0 {
		return nil, fmt.Errorf("%w: Product ID is required", domain.ErrInvalidArgument)
	}
	cur, err := catalog.ParseCurrency(currency)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	p, err := s.catalog.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	inserted, err := s.repo.Insert(ctx, &domain.Item{
		OwnerID:       ownerID,
		ProductID:     p.ID,
		Name:          p.Name,
		Price:         p.PriceIn(cur),
		Currency:      cur,
		ImageRef:      p.PrimaryImage(s.placeholder),
		StockSnapshot: p.Stock,
		AddedAt:       time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, domain.ErrAlreadyExists
	}
	logging.Debug(ctx, "wishlist item added", "owner_id", ownerID, "product_id", productID)
	return s.Fetch(ctx, ownerID)
}

// Remove 移除条目，不存在时同样成功
func (s *WishlistService) Remove(ctx context.Context, ownerID string, productID uint) ([]*domain.Item, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if productID == 0 {
		return nil, fmt.Errorf("%w: Product ID is required", domain.ErrInvalidArgument)
	}
	if err := s.repo.Delete(ctx, ownerID, productID); err != nil {
		return nil, err
	}
	return s.Fetch(ctx, ownerID)
}
