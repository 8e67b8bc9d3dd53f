package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/wyfcoding/velure/internal/cart/domain"
	catalogapp "github.com/wyfcoding/velure/internal/catalog/application"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
)

// catalogLookup 通过商品目录查询服务读取实时商品
type catalogLookup struct {
	query *catalogapp.CatalogQueryService
}

// NewCatalogLookup 创建购物车使用的商品目录端口实现
func NewCatalogLookup(query *catalogapp.CatalogQueryService) domain.CatalogLookup {
	return &catalogLookup{query: query}
}

func (a *catalogLookup) Lookup(ctx context.Context, productID uint) (*domain.ProductSnapshot, error) {
	p, err := a.query.GetLiveProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
	}
	if err != nil {
		return nil, err
	}
	images := make([]string, len(p.Images))
	copy(images, p.Images)
	return &domain.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		PriceINR: p.PriceINR,
		PriceUSD: p.PriceUSD,
		Images:   images,
		Stock:    p.Stock,
	}, nil
}
