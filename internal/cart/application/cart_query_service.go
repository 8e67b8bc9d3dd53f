package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/velure/internal/cart/domain"
)

// CartView 购物车对外视图
type CartView struct {
	ID        uint                   `json:"id"`
	OwnerID   string                 `json:"ownerId"`
	Lines     []LineView             `json:"items"`
	Totals    []domain.CurrencyTotal `json:"totals"`
	ItemCount int                    `json:"itemCount"`
	Version   int64                  `json:"version"`
}

// LineView 购物车行视图
type LineView struct {
	ProductID     uint            `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Currency      domain.Currency `json:"currency"`
	Quantity      int             `json:"quantity"`
	ImageRef      string          `json:"imageRef"`
	StockSnapshot int             `json:"stockSnapshot"`
	Subtotal      decimal.Decimal `json:"subtotal"`
}

// NewCartView 构建视图
func NewCartView(c *domain.Cart) CartView {
	lines := make([]LineView, 0, len(c.Lines))
	for _, l := range c.Lines {
		lines = append(lines, LineView{
			ProductID:     l.ProductID,
			Name:          l.Name,
			UnitPrice:     l.UnitPrice,
			Currency:      l.Currency,
			Quantity:      l.Quantity,
			ImageRef:      l.ImageRef,
			StockSnapshot: l.StockSnapshot,
			Subtotal:      l.Subtotal(),
		})
	}
	return CartView{
		ID:        c.ID,
		OwnerID:   c.OwnerID,
		Lines:     lines,
		Totals:    c.Totals(),
		ItemCount: c.ItemCount(),
		Version:   c.Version,
	}
}

// CartQueryService 购物车查询服务
type CartQueryService struct {
	repo domain.CartRepository
}

// NewCartQueryService 创建购物车查询服务实例
func NewCartQueryService(repo domain.CartRepository) *CartQueryService {
	return &CartQueryService{repo: repo}
}

// GetCart 返回用户购物车，不存在时创建空购物车
func (s *CartQueryService) GetCart(ctx context.Context, ownerID string) (*domain.Cart, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: please log in to view your cart", domain.ErrUnauthenticated)
	}
	cart, err := s.repo.GetOrCreate(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch cart: %v", domain.ErrUnavailable, err)
	}
	return cart, nil
}
