package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/catalog/domain"
)

func ptr[T any](v T) *T { return &v }

func TestCreateProduct(t *testing.T) {
	repo, pub := new(mockRepo), new(mockPublisher)
	svc := NewCatalogCommandService(repo, nil, pub)
	ctx := context.Background()

	repo.On("Save", ctx, mock.AnythingOfType("*domain.Product")).Return(nil)
	pub.On("Publish", ctx, domain.TopicProductCreated, "1", mock.Anything).Return(errors.New("kafka down"))

	p, err := svc.CreateProduct(ctx, CreateProductCommand{
		Name:     "Lotus Ring",
		Category: "Rings",
		PriceINR: decimal.NewFromInt(45000),
		PriceUSD: decimal.NewFromInt(540),
		Images:   []string{" ", "/a.jpg", "/b.jpg", "/c.jpg", "/d.jpg", "/e.jpg"},
		Stock:    5,
	})
	require.NoError(t, err, "publish failure must not fail the command")
	assert.Equal(t, []string{"/a.jpg", "/b.jpg", "/c.jpg", "/d.jpg"}, p.Images)
	repo.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestCreateProduct_Invalid(t *testing.T) {
	svc := NewCatalogCommandService(new(mockRepo), nil, new(mockPublisher))
	_, err := svc.CreateProduct(context.Background(), CreateProductCommand{Category: "Rings"})
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("no fields", func(t *testing.T) {
		svc := NewCatalogCommandService(new(mockRepo), nil, new(mockPublisher))
		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{ID: 1, Images: []string{"", "  "}})
		require.ErrorIs(t, err, domain.ErrInvalidProduct)
		assert.Contains(t, err.Error(), "no valid fields")
	})

	t.Run("partial patch with stock change", func(t *testing.T) {
		repo, cache, pub := new(mockRepo), new(mockCache), new(mockPublisher)
		svc := NewCatalogCommandService(repo, cache, pub)

		existing := &domain.Product{ID: 7, Name: "Old", Category: "Rings", Stock: 2, PriceINR: decimal.NewFromInt(10)}
		repo.On("GetByID", ctx, uint(7)).Return(existing, nil)
		repo.On("Update", ctx, existing, []string{"name", "stock"}).Return(nil)
		cache.On("Invalidate", ctx, []uint{7}).Return(nil)
		pub.On("Publish", ctx, domain.TopicProductUpdated, "7", mock.Anything).Return(nil)
		pub.On("Publish", ctx, domain.TopicProductStockChanged, "7", mock.MatchedBy(func(e domain.ProductStockChangedEvent) bool {
			return e.OldStock == 2 && e.NewStock == 9
		})).Return(nil)

		p, err := svc.UpdateProduct(ctx, UpdateProductCommand{ID: 7, Name: ptr("New"), Stock: ptr(9)})
		require.NoError(t, err)
		assert.Equal(t, "New", p.Name)
		assert.Equal(t, "Rings", p.Category)
		assert.True(t, p.PriceINR.Equal(decimal.NewFromInt(10)))
		repo.AssertExpectations(t)
		cache.AssertExpectations(t)
		pub.AssertExpectations(t)
	})

	t.Run("missing product", func(t *testing.T) {
		repo := new(mockRepo)
		svc := NewCatalogCommandService(repo, nil, new(mockPublisher))
		repo.On("GetByID", ctx, uint(3)).Return(nil, domain.ErrProductNotFound)

		_, err := svc.UpdateProduct(ctx, UpdateProductCommand{ID: 3, Featured: ptr(true)})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	repo, cache, pub := new(mockRepo), new(mockCache), new(mockPublisher)
	svc := NewCatalogCommandService(repo, cache, pub)

	repo.On("Delete", ctx, uint(4)).Return(nil)
	cache.On("Invalidate", ctx, []uint{4}).Return(nil)
	pub.On("Publish", ctx, domain.TopicProductDeleted, "4", mock.Anything).Return(nil)

	require.NoError(t, svc.DeleteProduct(ctx, 4))
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetProduct_ReadThrough(t *testing.T) {
	ctx := context.Background()
	repo, cache := new(mockRepo), new(mockCache)
	svc := NewCatalogQueryService(repo, cache, time.Minute, nil)

	p := &domain.Product{ID: 5, Name: "Hoops"}
	cache.On("Get", ctx, uint(5)).Return(nil, false, nil).Once()
	repo.On("GetByID", ctx, uint(5)).Return(p, nil).Once()
	cache.On("Set", ctx, p, time.Minute).Return(nil).Once()

	got, err := svc.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Hoops", got.Name)

	cache.On("Get", ctx, uint(5)).Return(p, true, nil).Once()
	got, err = svc.GetProduct(ctx, 5)
	require.NoError(t, err)
	assert.Same(t, p, got)

	repo.AssertNumberOfCalls(t, "GetByID", 1)
	cache.AssertExpectations(t)
}

func TestListProducts_Defaults(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	svc := NewCatalogQueryService(repo, nil, time.Minute, nil)

	repo.On("List", ctx, domain.ProductFilter{
		Category: "Rings",
		Currency: domain.CurrencyINR,
		Sort:     domain.SortFeatured,
		Offset:   20,
		Limit:    10,
	}).Return(nil, int64(0), nil)

	page, err := svc.ListProducts(ctx, ListProductsQuery{Category: "Rings", SortBy: "bogus", Page: 3, PageSize: 10})
	require.NoError(t, err)
	assert.NotNil(t, page.Products)
	assert.Equal(t, 3, page.Page)
	repo.AssertExpectations(t)
}

func TestParseCurrency(t *testing.T) {
	cases := map[string]domain.Currency{"": domain.CurrencyINR, "in": domain.CurrencyINR, "US": domain.CurrencyUSD, "CA": domain.CurrencyUSD, "usd": domain.CurrencyUSD}
	for in, want := range cases {
		got, err := domain.ParseCurrency(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := domain.ParseCurrency("EUR")
	assert.Error(t, err)
}
