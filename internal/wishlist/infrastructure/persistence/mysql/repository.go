package mysql

import (
	"context"

	"github.com/wyfcoding/velure/internal/wishlist/domain"
	"github.com/wyfcoding/velure/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type wishlistRepository struct{ db *gorm.DB }

// NewWishlistRepository 创建心愿单仓储
func NewWishlistRepository(database *gorm.DB) domain.Repository {
	return &wishlistRepository{db: database}
}

func (r *wishlistRepository) List(ctx context.Context, ownerID string) ([]*domain.Item, error) {
	var items []*domain.Item
	err := db.Conn(ctx, r.db).
		Where("owner_id = ?", ownerID).
		Order("added_at ASC, id ASC").
		Find(&items).Error
	return items, err
}

func (r *wishlistRepository) Insert(ctx context.Context, item *domain.Item) (bool, error) {
	res := db.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *wishlistRepository) Delete(ctx context.Context, ownerID string, productID uint) error {
	return db.Conn(ctx, r.db).
		Where("owner_id = ? AND product_id = ?", ownerID, productID).
		Delete(&domain.Item{}).Error
}
