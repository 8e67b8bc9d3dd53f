package mysql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/pkg/db"
	"gorm.io/gorm"
)

type productRepository struct{ db *gorm.DB }

// NewProductRepository 创建商品仓储
func NewProductRepository(database *gorm.DB) domain.ProductRepository {
	return &productRepository{db: database}
}

func (r *productRepository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	return r.conn(ctx).Save(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *domain.Product, columns ...string) error {
	cols := append([]string{"updated_at"}, columns...)
	res := r.conn(ctx).Model(product).Select(cols).Updates(product)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, product.ID)
	}
	// 未写入的列（例如被结账扣减过的库存）以库中为准
	return r.conn(ctx).First(product, product.ID).Error
}

func (r *productRepository) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	var p domain.Product
	err := r.conn(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	q := r.conn(ctx).Model(&domain.Product{})

	if f.Category != "" && !strings.EqualFold(f.Category, "All") {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	col := f.Currency.PriceColumn()
	if f.MinPrice != nil {
		q = q.Where(col+" >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where(col+" <= ?", *f.MaxPrice)
	}
	if f.InStockOnly {
		q = q.Where("stock > 0")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch f.Sort {
	case domain.SortPriceLow:
		q = q.Order(col + " ASC")
	case domain.SortPriceHigh:
		q = q.Order(col + " DESC")
	case domain.SortRating:
		q = q.Order("average_rating DESC")
	case domain.SortNewest:
		q = q.Order("created_at DESC")
	default:
		q = q.Order("featured DESC").Order("created_at DESC")
	}
	q = q.Order("id DESC")

	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var products []*domain.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) Delete(ctx context.Context, id uint) error {
	res := r.conn(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	return nil
}

func (r *productRepository) DecrementStock(ctx context.Context, id uint, qty int) error {
	res := r.conn(ctx).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	// 区分商品不存在与库存不足
	var count int64
	if err := r.conn(ctx).Model(&domain.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: id %d", domain.ErrProductNotFound, id)
	}
	return fmt.Errorf("%w: product %d cannot supply %d", domain.ErrInsufficientStock, id, qty)
}

func (r *productRepository) ReplaceAll(ctx context.Context, products []*domain.Product) error {
	return r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(products, 100).Error
	})
}
