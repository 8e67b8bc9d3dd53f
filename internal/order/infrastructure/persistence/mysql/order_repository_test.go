package mysql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/order/domain"
	"github.com/wyfcoding/velure/pkg/db"
)

func setupRepo(t *testing.T) domain.OrderRepository {
	t.Helper()
	database, err := db.Init(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(Models()...))
	t.Cleanup(func() { _ = database.Close() })
	return NewOrderRepository(database.DB)
}

func newOrder(t *testing.T, no, owner string) *domain.Order {
	t.Helper()
	o, err := domain.NewOrder(no, owner, "INR", []domain.OrderItem{
		{ProductID: 1, Name: "Ring", Quantity: 2, UnitPrice: decimal.NewFromInt(500), ImageRef: "/ring.jpg"},
		{ProductID: 2, Name: "Chain", Quantity: 1, UnitPrice: decimal.NewFromInt(250)},
	}, domain.ShippingAddress{FullName: "A", Address: "1 St", City: "Pune", PostalCode: "411001", Country: "IN"})
	require.NoError(t, err)
	return o
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	o := newOrder(t, "ORD-1", "user-1")
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)

	got, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", got.OrderNo)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.True(t, decimal.NewFromInt(1250).Equal(got.TotalPrice))
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Pune", got.ShippingAddress.City)

	_, err = repo.Get(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderRepository_ListAndUpdate(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	a := newOrder(t, "ORD-A", "user-1")
	b := newOrder(t, "ORD-B", "user-2")
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	mine, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "ORD-A", mine[0].OrderNo)

	b.SetStatus(domain.StatusDelivered, time.Now())
	require.NoError(t, repo.UpdateStatus(ctx, b))

	delivered, err := repo.List(ctx, domain.StatusDelivered)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.True(t, delivered[0].IsDelivered)
	assert.NotNil(t, delivered[0].DeliveredAt)

	all, err := repo.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	missing := newOrder(t, "ORD-X", "user-3")
	missing.ID = 404
	assert.ErrorIs(t, repo.UpdateStatus(ctx, missing), domain.ErrOrderNotFound)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	all, err = repo.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
