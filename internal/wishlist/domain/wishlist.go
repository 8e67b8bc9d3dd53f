// Package domain 心愿单领域模型
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
)

var (
	ErrUnauthenticated = errors.New("not logged in")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrProductNotFound = errors.New("product not found")
	ErrAlreadyExists   = errors.New("product already in wishlist")
)

// Currency 与商品目录共用货币定义
type Currency = catalog.Currency

// Item 心愿单条目，(owner_id, product_id) 唯一
type Item struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	OwnerID       string          `gorm:"column:owner_id;type:varchar(64);not null;uniqueIndex:idx_wishlist_owner_product" json:"-"`
	ProductID     uint            `gorm:"column:product_id;not null;uniqueIndex:idx_wishlist_owner_product" json:"productId"`
	Name          string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Price         decimal.Decimal `gorm:"column:price;type:decimal(20,2);not null" json:"price"`
	Currency      Currency        `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	ImageRef      string          `gorm:"column:image_ref;type:varchar(512);not null" json:"imageRef"`
	StockSnapshot int             `gorm:"column:stock_snapshot;not null" json:"stockSnapshot"`
	AddedAt       time.Time       `gorm:"column:added_at;not null" json:"addedAt"`
}

// TableName 指定表名
func (Item) TableName() string { return "wishlist_items" }

// Repository 心愿单仓储
type Repository interface {
	List(ctx context.Context, ownerID string) ([]*Item, error)
	// Insert 插入条目，已存在时返回 false
	Insert(ctx context.Context, item *Item) (bool, error)
	Delete(ctx context.Context, ownerID string, productID uint) error
}

// CatalogLookup 商品目录查询端口
type CatalogLookup interface {
	Lookup(ctx context.Context, productID uint) (*catalog.Product, error)
}
