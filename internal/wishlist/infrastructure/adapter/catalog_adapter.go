package adapter

import (
	"context"
	"errors"
	"fmt"

	catalogapp "github.com/wyfcoding/velure/internal/catalog/application"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/internal/wishlist/domain"
)

type catalogLookup struct {
	query *catalogapp.CatalogQueryService
}

// NewCatalogLookup 心愿单展示数据允许读缓存
func NewCatalogLookup(query *catalogapp.CatalogQueryService) domain.CatalogLookup {
	return &catalogLookup{query: query}
}

func (a *catalogLookup) Lookup(ctx context.Context, productID uint) (*catalog.Product, error) {
	p, err := a.query.GetProduct(ctx, productID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, productID)
	}
	return p, err
}
