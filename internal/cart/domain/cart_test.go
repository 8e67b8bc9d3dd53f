package domain

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ring(stock int) *ProductSnapshot {
	return &ProductSnapshot{
		ID:       1,
		Name:     "Lotus Ring",
		PriceINR: decimal.NewFromInt(45000),
		PriceUSD: decimal.RequireFromString("540.50"),
		Images:   []string{"/img/lotus.jpg", "/img/lotus-2.jpg"},
		Stock:    stock,
	}
}

func TestCart_AddItem_NewLineSnapshot(t *testing.T) {
	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(ring(5), 2, CurrencyUSD, ""))

	require.Len(t, c.Lines, 1)
	l := c.Lines[0]
	assert.Equal(t, "Lotus Ring", l.Name)
	assert.True(t, l.UnitPrice.Equal(decimal.RequireFromString("540.50")))
	assert.Equal(t, CurrencyUSD, l.Currency)
	assert.Equal(t, "/img/lotus.jpg", l.ImageRef)
	assert.Equal(t, 5, l.StockSnapshot)
	assert.Equal(t, 2, l.Quantity)
}

func TestCart_AddItem_Placeholder(t *testing.T) {
	p := ring(3)
	p.Images = nil

	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(p, 1, CurrencyINR, ""))
	assert.Equal(t, DefaultPlaceholderImage, c.Lines[0].ImageRef)

	c2 := NewCart("owner-2")
	require.NoError(t, c2.AddItem(p, 1, CurrencyINR, "/custom.png"))
	assert.Equal(t, "/custom.png", c2.Lines[0].ImageRef)
}

func TestCart_AddItem_MergeKeepsPriceAndRefreshesStock(t *testing.T) {
	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(ring(5), 2, CurrencyINR, ""))

	// 商品改价、补货后再次加入，单价与货币保持加入时的快照
	p := ring(8)
	p.PriceINR = decimal.NewFromInt(50000)
	require.NoError(t, c.AddItem(p, 3, CurrencyUSD, ""))

	require.Len(t, c.Lines, 1)
	l := c.Lines[0]
	assert.Equal(t, 5, l.Quantity)
	assert.True(t, l.UnitPrice.Equal(decimal.NewFromInt(45000)))
	assert.Equal(t, CurrencyINR, l.Currency)
	assert.Equal(t, 8, l.StockSnapshot)
}

func TestCart_AddItem_StockBound(t *testing.T) {
	c := NewCart("owner-1")
	assert.ErrorIs(t, c.AddItem(ring(1), 2, CurrencyINR, ""), ErrInsufficientStock)
	assert.Empty(t, c.Lines)

	require.NoError(t, c.AddItem(ring(5), 4, CurrencyINR, ""))
	err := c.AddItem(ring(5), 2, CurrencyINR, "")
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 4, c.Lines[0].Quantity)

	assert.ErrorIs(t, c.AddItem(ring(5), 0, CurrencyINR, ""), ErrInvalidArgument)
}

func TestCart_SetQuantity(t *testing.T) {
	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(ring(5), 1, CurrencyINR, ""))

	assert.ErrorIs(t, c.SetQuantity(1, 0), ErrInvalidArgument)
	assert.ErrorIs(t, c.SetQuantity(2, 1), ErrLineNotFound)
	assert.ErrorIs(t, c.SetQuantity(1, 6), ErrInsufficientStock)
	require.NoError(t, c.SetQuantity(1, 5))
	assert.Equal(t, 5, c.Lines[0].Quantity)
}

func TestCart_RemoveItemAndClone(t *testing.T) {
	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(ring(5), 1, CurrencyINR, ""))

	clone := c.Clone()
	assert.True(t, clone.RemoveItem(1))
	assert.False(t, clone.RemoveItem(1))
	assert.Empty(t, clone.Lines)
	assert.Len(t, c.Lines, 1, "mutating a clone must not touch the original")
}

func TestCart_TotalsByCurrency(t *testing.T) {
	c := NewCart("owner-1")
	require.NoError(t, c.AddItem(ring(5), 2, CurrencyINR, ""))

	hoops := &ProductSnapshot{ID: 2, Name: "Hoops", PriceINR: decimal.NewFromInt(20000), PriceUSD: decimal.RequireFromString("240.25"), Stock: 9}
	require.NoError(t, c.AddItem(hoops, 2, CurrencyUSD, ""))

	totals := c.Totals()
	require.Len(t, totals, 2)
	assert.Equal(t, CurrencyINR, totals[0].Currency)
	assert.True(t, totals[0].Amount.Equal(decimal.NewFromInt(90000)))
	assert.Equal(t, CurrencyUSD, totals[1].Currency)
	assert.True(t, totals[1].Amount.Equal(decimal.RequireFromString("480.50")))
	assert.Equal(t, 4, c.ItemCount())
	assert.Equal(t, []Currency{CurrencyINR, CurrencyUSD}, c.Currencies())
}

func TestKind(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{fmt.Errorf("%w: no owner", ErrUnauthenticated), KindUnauthenticated},
		{fmt.Errorf("%w: bad", ErrInvalidArgument), KindInvalidArgument},
		{ErrProductNotFound, KindNotFound},
		{ErrLineNotFound, KindNotFound},
		{fmt.Errorf("wrap: %w", ErrInsufficientStock), KindInsufficientStock},
		{ErrUnavailable, KindUnavailable},
		{fmt.Errorf("boom"), KindInternal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Kind(tc.err), tc.err.Error())
	}
	assert.Equal(t, "insufficient_stock", KindInsufficientStock.String())
}
