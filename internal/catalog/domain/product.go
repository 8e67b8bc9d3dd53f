package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrInvalidProduct 商品字段不合法
	ErrInvalidProduct = errors.New("invalid product")
	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Currency 定价货币
type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
)

// ParseCurrency 解析货币代码或市场代码（IN→INR，US/CA→USD），空串默认 INR
func ParseCurrency(code string) (Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "", "IN", "INR":
		return CurrencyINR, nil
	case "US", "CA", "USD":
		return CurrencyUSD, nil
	default:
		return "", fmt.Errorf("unsupported currency or market %q", code)
	}
}

// PriceColumn 返回货币对应的价格列
func (c Currency) PriceColumn() string {
	if c == CurrencyUSD {
		return "price_usd"
	}
	return "price_inr"
}

// Product 商品
type Product struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Name          string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"column:description;type:text" json:"description"`
	Category      string          `gorm:"column:category;type:varchar(100);index" json:"category"`
	Metal         string          `gorm:"column:metal;type:varchar(50)" json:"metal"`
	PriceINR      decimal.Decimal `gorm:"column:price_inr;type:decimal(20,2);not null" json:"priceINR"`
	PriceUSD      decimal.Decimal `gorm:"column:price_usd;type:decimal(20,2);not null" json:"priceUSD"`
	Images        []string        `gorm:"column:images;serializer:json;type:text" json:"images"`
	Stock         int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Featured      bool            `gorm:"column:featured;not null;default:false;index" json:"featured"`
	AverageRating float64         `gorm:"column:average_rating;not null;default:0" json:"averageRating"`
	NumReviews    int             `gorm:"column:num_reviews;not null;default:0" json:"numReviews"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }

// PriceIn 返回指定货币下的单价
func (p *Product) PriceIn(c Currency) decimal.Decimal {
	if c == CurrencyUSD {
		return p.PriceUSD
	}
	return p.PriceINR
}

// PrimaryImage 返回第一张图片，没有图片时返回 fallback
func (p *Product) PrimaryImage(fallback string) string {
	for _, img := range p.Images {
		if strings.TrimSpace(img) != "" {
			return img
		}
	}
	return fallback
}

// Validate 校验商品必填字段
func (p *Product) Validate() error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case strings.TrimSpace(p.Category) == "":
		return fmt.Errorf("%w: category is required", ErrInvalidProduct)
	case p.PriceINR.IsNegative() || p.PriceUSD.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case p.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	case p.AverageRating < 0 || p.AverageRating > 5:
		return fmt.Errorf("%w: rating must be between 0 and 5", ErrInvalidProduct)
	}
	return nil
}

// NormalizeImages 去除空白图片并最多保留四张
func NormalizeImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if s := strings.TrimSpace(img); s != "" {
			out = append(out, s)
		}
		if len(out) == 4 {
			break
		}
	}
	return out
}

// SortOrder 列表排序方式
type SortOrder string

const (
	SortFeatured  SortOrder = "featured"
	SortPriceLow  SortOrder = "price-low"
	SortPriceHigh SortOrder = "price-high"
	SortRating    SortOrder = "rating"
	SortNewest    SortOrder = "newest"
)

// ProductFilter 列表查询条件
type ProductFilter struct {
	Category    string
	Search      string
	Currency    Currency
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	InStockOnly bool
	Sort        SortOrder
	Offset      int
	Limit       int
}
