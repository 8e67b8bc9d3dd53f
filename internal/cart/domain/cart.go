package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
)

// Currency 购物车行的计价货币，加入时确定后不再改变
type Currency = catalog.Currency

const (
	CurrencyINR = catalog.CurrencyINR
	CurrencyUSD = catalog.CurrencyUSD
)

// DefaultPlaceholderImage 商品无图片时使用的占位图
const DefaultPlaceholderImage = "/placeholder-product.jpg"

// ProductSnapshot 商品目录返回的实时商品信息
type ProductSnapshot struct {
	ID       uint
	Name     string
	PriceINR decimal.Decimal
	PriceUSD decimal.Decimal
	Images   []string
	Stock    int
}

// PriceIn 返回指定货币的单价
func (p *ProductSnapshot) PriceIn(c Currency) decimal.Decimal {
	if c == CurrencyUSD {
		return p.PriceUSD
	}
	return p.PriceINR
}

// CartLine 购物车行，名称、单价、图片与库存均为加入时的快照
type CartLine struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	CartID        uint            `gorm:"column:cart_id;not null;uniqueIndex:idx_cart_lines_cart_product" json:"-"`
	ProductID     uint            `gorm:"column:product_id;not null;uniqueIndex:idx_cart_lines_cart_product" json:"productId"`
	Name          string          `gorm:"column:name;type:varchar(255);not null" json:"name"`
	UnitPrice     decimal.Decimal `gorm:"column:unit_price;type:decimal(20,2);not null" json:"unitPrice"`
	Currency      Currency        `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Quantity      int             `gorm:"column:quantity;not null" json:"quantity"`
	ImageRef      string          `gorm:"column:image_ref;type:varchar(512);not null" json:"imageRef"`
	StockSnapshot int             `gorm:"column:stock_snapshot;not null" json:"stockSnapshot"`
}

func (CartLine) TableName() string { return "cart_lines" }

// Subtotal 行小计
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart 用户购物车，每个商品最多一行。Version 为乐观锁版本号
type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OwnerID   string     `gorm:"column:owner_id;type:varchar(64);uniqueIndex;not null" json:"ownerId"`
	Lines     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"lines"`
	Version   int64      `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Cart) TableName() string { return "carts" }

// NewCart 创建空购物车
func NewCart(ownerID string) *Cart {
	return &Cart{OwnerID: ownerID, Lines: []CartLine{}}
}

// Clone 深拷贝，变更在副本上进行，保存成功后才替换
func (c *Cart) Clone() *Cart {
	out := *c
	out.Lines = make([]CartLine, len(c.Lines))
	copy(out.Lines, c.Lines)
	return &out
}

// Line 返回商品对应的行
func (c *Cart) Line(productID uint) (*CartLine, bool) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

// AddItem 按合并规则加入商品：已有行时数量累加并按实时库存校验累加后的数量，单价与货币保持不变
func (c *Cart) AddItem(p *ProductSnapshot, qty int, currency Currency, placeholder string) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
	}

	if line, ok := c.Line(p.ID); ok {
		total := line.Quantity + qty
		if total > p.Stock {
			return fmt.Errorf("%w: cannot add more than available stock (%d in cart, %d requested, %d available)",
				ErrInsufficientStock, line.Quantity, qty, p.Stock)
		}
		line.Quantity = total
		line.StockSnapshot = p.Stock
		return nil
	}

	if qty > p.Stock {
		return fmt.Errorf("%w: only %d available", ErrInsufficientStock, p.Stock)
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	image := placeholder
	if len(p.Images) > 0 && p.Images[0] != "" {
		image = p.Images[0]
	}
	c.Lines = append(c.Lines, CartLine{
		CartID:        c.ID,
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.PriceIn(currency),
		Currency:      currency,
		Quantity:      qty,
		ImageRef:      image,
		StockSnapshot: p.Stock,
	})
	return nil
}

// SetQuantity 覆盖行数量，按行内库存快照校验
func (c *Cart) SetQuantity(productID uint, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidArgument)
	}
	line, ok := c.Line(productID)
	if !ok {
		return fmt.Errorf("%w: product %d", ErrLineNotFound, productID)
	}
	if qty > line.StockSnapshot {
		return fmt.Errorf("%w: quantity exceeds available stock (%d available)", ErrInsufficientStock, line.StockSnapshot)
	}
	line.Quantity = qty
	return nil
}

// RemoveItem 移除行，行不存在时返回 false
func (c *Cart) RemoveItem(productID uint) bool {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}

// Clear 清空所有行
func (c *Cart) Clear() {
	c.Lines = []CartLine{}
}

// ItemCount 商品总件数
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

// CurrencyTotal 单一货币下的合计
type CurrencyTotal struct {
	Currency Currency        `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Totals 按行货币分组的合计，按货币代码排序
func (c *Cart) Totals() []CurrencyTotal {
	sums := make(map[Currency]decimal.Decimal)
	for _, l := range c.Lines {
		sums[l.Currency] = sums[l.Currency].Add(l.Subtotal())
	}
	out := make([]CurrencyTotal, 0, len(sums))
	for cur, amt := range sums {
		out = append(out, CurrencyTotal{Currency: cur, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out
}

// Currencies 购物车中出现的货币，按代码排序
func (c *Cart) Currencies() []Currency {
	totals := c.Totals()
	out := make([]Currency, 0, len(totals))
	for _, t := range totals {
		out = append(out, t.Currency)
	}
	return out
}
