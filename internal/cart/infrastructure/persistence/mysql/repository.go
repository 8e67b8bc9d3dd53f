package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wyfcoding/velure/internal/cart/domain"
	"github.com/wyfcoding/velure/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type cartRepository struct{ db *gorm.DB }

// NewCartRepository 创建购物车仓储
func NewCartRepository(database *gorm.DB) domain.CartRepository {
	return &cartRepository{db: database}
}

func (r *cartRepository) conn(ctx context.Context) *gorm.DB {
	return db.Conn(ctx, r.db)
}

func (r *cartRepository) GetOrCreate(ctx context.Context, ownerID string) (*domain.Cart, error) {
	cart, err := r.getByOwner(ctx, ownerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// owner_id 唯一索引保证并发首次访问只插入一行
	fresh := &domain.Cart{OwnerID: ownerID}
	if err := r.conn(ctx).Omit("Lines").Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(fresh).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return r.getByOwner(ctx, ownerID)
}

func (r *cartRepository) getByOwner(ctx context.Context, ownerID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.conn(ctx).
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("id ASC") }).
		Where("owner_id = ?", ownerID).
		First(&cart).Error
	if err != nil {
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []domain.CartLine{}
	}
	return &cart, nil
}

func (r *cartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expected int64) (bool, error) {
	saved := false
	now := time.Now()
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Cart{}).
			Where("id = ? AND version = ?", cart.ID, expected).
			Updates(map[string]any{
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&domain.CartLine{}).Error; err != nil {
			return err
		}
		if len(cart.Lines) > 0 {
			lines := make([]domain.CartLine, len(cart.Lines))
			copy(lines, cart.Lines)
			for i := range lines {
				lines[i].ID = 0
				lines[i].CartID = cart.ID
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
			copy(cart.Lines, lines)
		}
		saved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if saved {
		cart.Version = expected + 1
		cart.UpdatedAt = now
	}
	return saved, nil
}

func (r *cartRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		global := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := global.Delete(&domain.CartLine{}).Error; err != nil {
			return err
		}
		res := global.Delete(&domain.Cart{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}
