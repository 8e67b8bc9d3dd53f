package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/pkg/metrics"
)

// ListProductsQuery 商品列表查询
type ListProductsQuery struct {
	Category    string
	Search      string
	Currency    domain.Currency
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	SortBy      string
	Page        int
	PageSize    int
}

// ProductPage 分页结果
type ProductPage struct {
	Products []*domain.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo    domain.ProductRepository
	cache   domain.ProductCache
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewCatalogQueryService 创建商品目录查询服务实例，cache 与 m 可为 nil
func NewCatalogQueryService(
	repo domain.ProductRepository,
	cache domain.ProductCache,
	ttl time.Duration,
	m *metrics.Metrics,
) *CatalogQueryService {
	return &CatalogQueryService{
		repo:    repo,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

// GetProduct 根据ID获取商品信息，优先读缓存
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*domain.Product, error) {
	if s.cache != nil {
		p, found, err := s.cache.Get(ctx, id)
		if err != nil {
			logging.Warn(ctx, "product cache read failed", "product_id", id, "error", err)
		}
		s.metrics.RecordProductCache(found)
		if found {
			return p, nil
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, p, s.ttl); err != nil {
			logging.Warn(ctx, "product cache write failed", "product_id", id, "error", err)
		}
	}
	return p, nil
}

// GetLiveProduct 绕过缓存读取商品，库存判断必须使用实时数据
func (s *CatalogQueryService) GetLiveProduct(ctx context.Context, id uint) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListProducts 列出商品
func (s *CatalogQueryService) ListProducts(ctx context.Context, q ListProductsQuery) (*ProductPage, error) {
	if q.Currency == "" {
		q.Currency = domain.CurrencyINR
	}
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 0 {
		size = 0
	}
	if size > 100 {
		size = 100
	}

	filter := domain.ProductFilter{
		Category:    q.Category,
		Search:      q.Search,
		Currency:    q.Currency,
		MinPrice:    q.MinPrice,
		MaxPrice:    q.MaxPrice,
		InStockOnly: q.InStockOnly,
		Sort:        parseSort(q.SortBy),
		Limit:       size,
	}
	if size > 0 {
		filter.Offset = (page - 1) * size
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*domain.Product{}
	}
	return &ProductPage{Products: products, Total: total, Page: page, PageSize: size}, nil
}

func parseSort(s string) domain.SortOrder {
	switch domain.SortOrder(s) {
	case domain.SortPriceLow, domain.SortPriceHigh, domain.SortRating, domain.SortNewest:
		return domain.SortOrder(s)
	default:
		return domain.SortFeatured
	}
}
