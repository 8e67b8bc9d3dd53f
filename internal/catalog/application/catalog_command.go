package application

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/velure/internal/catalog/domain"
)

// CreateProductCommand 创建商品命令
type CreateProductCommand struct {
	Name          string
	Description   string
	Category      string
	Metal         string
	PriceINR      decimal.Decimal
	PriceUSD      decimal.Decimal
	Images        []string
	Stock         int
	Featured      bool
	AverageRating float64
	NumReviews    int
}

// UpdateProductCommand 部分更新商品命令，nil 字段保持不变
type UpdateProductCommand struct {
	ID          uint
	Name        *string
	Description *string
	Category    *string
	Metal       *string
	PriceINR    *decimal.Decimal
	PriceUSD    *decimal.Decimal
	Stock       *int
	Images      []string
	Featured    *bool
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo      domain.ProductRepository
	cache     domain.ProductCache
	publisher domain.EventPublisher
}

// NewCatalogCommandService 创建商品目录命令服务实例，cache 可为 nil
func NewCatalogCommandService(
	repo domain.ProductRepository,
	cache domain.ProductCache,
	publisher domain.EventPublisher,
) *CatalogCommandService {
	return &CatalogCommandService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
	}
}

// CreateProduct 处理创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*domain.Product, error) {
	product := &domain.Product{
		Name:          cmd.Name,
		Description:   cmd.Description,
		Category:      cmd.Category,
		Metal:         cmd.Metal,
		PriceINR:      cmd.PriceINR,
		PriceUSD:      cmd.PriceUSD,
		Images:        domain.NormalizeImages(cmd.Images),
		Stock:         cmd.Stock,
		Featured:      cmd.Featured,
		AverageRating: cmd.AverageRating,
		NumReviews:    cmd.NumReviews,
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicProductCreated, product.ID, domain.ProductCreatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		PriceINR:  product.PriceINR,
		PriceUSD:  product.PriceUSD,
		Stock:     product.Stock,
		Category:  product.Category,
		Timestamp: time.Now(),
	})

	return product, nil
}

// UpdateProduct 处理部分更新商品
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, cmd UpdateProductCommand) (*domain.Product, error) {
	images := domain.NormalizeImages(cmd.Images)
	if cmd.Name == nil && cmd.Description == nil && cmd.Category == nil && cmd.Metal == nil &&
		cmd.PriceINR == nil && cmd.PriceUSD == nil && cmd.Stock == nil && len(images) == 0 && cmd.Featured == nil {
		return nil, fmt.Errorf("%w: no valid fields provided for update", domain.ErrInvalidProduct)
	}

	product, err := s.repo.GetByID(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}

	oldStock := product.Stock
	columns := make([]string, 0, 9)

	if cmd.Name != nil {
		product.Name = *cmd.Name
		columns = append(columns, "name")
	}
	if cmd.Description != nil {
		product.Description = *cmd.Description
		columns = append(columns, "description")
	}
	if cmd.Category != nil {
		product.Category = *cmd.Category
		columns = append(columns, "category")
	}
	if cmd.Metal != nil {
		product.Metal = *cmd.Metal
		columns = append(columns, "metal")
	}
	if cmd.PriceINR != nil {
		product.PriceINR = *cmd.PriceINR
		columns = append(columns, "price_inr")
	}
	if cmd.PriceUSD != nil {
		product.PriceUSD = *cmd.PriceUSD
		columns = append(columns, "price_usd")
	}
	if cmd.Stock != nil {
		product.Stock = *cmd.Stock
		columns = append(columns, "stock")
	}
	if len(images) > 0 {
		product.Images = images
		columns = append(columns, "images")
	}
	if cmd.Featured != nil {
		product.Featured = *cmd.Featured
		columns = append(columns, "featured")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}

	// 只写补丁字段，库存未指定时保留结账期间的扣减
	if err := s.repo.Update(ctx, product, columns...); err != nil {
		return nil, err
	}
	s.invalidate(ctx, product.ID)

	s.publish(ctx, domain.TopicProductUpdated, product.ID, domain.ProductUpdatedEvent{
		ProductID: product.ID,
		Name:      product.Name,
		PriceINR:  product.PriceINR,
		PriceUSD:  product.PriceUSD,
		Stock:     product.Stock,
		Category:  product.Category,
		Timestamp: time.Now(),
	})

	// 库存变化时额外发布库存变更事件
	if cmd.Stock != nil && oldStock != product.Stock {
		s.publish(ctx, domain.TopicProductStockChanged, product.ID, domain.ProductStockChangedEvent{
			ProductID: product.ID,
			OldStock:  oldStock,
			NewStock:  product.Stock,
			Timestamp: time.Now(),
		})
	}

	return product, nil
}

// DeleteProduct 删除商品
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	s.publish(ctx, domain.TopicProductDeleted, id, domain.ProductDeletedEvent{
		ProductID: id,
		Timestamp: time.Now(),
	})
	return nil
}

// DecrementStock 扣减库存，供下单事务调用。缓存失效与事件由调用方在提交后触发
func (s *CatalogCommandService) DecrementStock(ctx context.Context, id uint, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidProduct)
	}
	return s.repo.DecrementStock(ctx, id, qty)
}

// StockCommitted 下单提交后失效缓存并发布库存变更事件
func (s *CatalogCommandService) StockCommitted(ctx context.Context, id uint, qty int) {
	s.invalidate(ctx, id)

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		logging.Warn(ctx, "failed to reload product after stock change", "product_id", id, "error", err)
		return
	}
	s.publish(ctx, domain.TopicProductStockChanged, id, domain.ProductStockChangedEvent{
		ProductID: id,
		OldStock:  product.Stock + qty,
		NewStock:  product.Stock,
		Timestamp: time.Now(),
	})
}

// ReplaceAll 用给定商品集合替换整个目录，用于初始化数据
func (s *CatalogCommandService) ReplaceAll(ctx context.Context, cmds []CreateProductCommand) ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(cmds))
	for _, cmd := range cmds {
		p := &domain.Product{
			Name:          cmd.Name,
			Description:   cmd.Description,
			Category:      cmd.Category,
			Metal:         cmd.Metal,
			PriceINR:      cmd.PriceINR,
			PriceUSD:      cmd.PriceUSD,
			Images:        domain.NormalizeImages(cmd.Images),
			Stock:         cmd.Stock,
			Featured:      cmd.Featured,
			AverageRating: cmd.AverageRating,
			NumReviews:    cmd.NumReviews,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("product %q: %w", cmd.Name, err)
		}
		products = append(products, p)
	}

	existing, _, err := s.repo.List(ctx, domain.ProductFilter{})
	if err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceAll(ctx, products); err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(existing))
	for _, p := range existing {
		ids = append(ids, p.ID)
	}
	s.invalidate(ctx, ids...)

	logging.Info(ctx, "catalog replaced", "removed", len(existing), "inserted", len(products))
	return products, nil
}

func (s *CatalogCommandService) invalidate(ctx context.Context, ids ...uint) {
	if s.cache == nil || len(ids) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, ids...); err != nil {
		logging.Warn(ctx, "failed to invalidate product cache", "ids", ids, "error", err)
	}
}

func (s *CatalogCommandService) publish(ctx context.Context, topic string, id uint, event any) {
	if err := s.publisher.Publish(ctx, topic, strconv.FormatUint(uint64(id), 10), event); err != nil {
		logging.Warn(ctx, "failed to publish catalog event", "topic", topic, "product_id", id, "error", err)
	}
}
