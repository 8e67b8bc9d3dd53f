package mysql

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/wishlist/domain"
	"github.com/wyfcoding/velure/pkg/db"
)

func TestWishlistRepository(t *testing.T) {
	database, err := db.Init(db.Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db"), MaxOpenConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(&domain.Item{}))
	t.Cleanup(func() { _ = database.Close() })

	repo := NewWishlistRepository(database.DB)
	ctx := context.Background()
	item := func(owner string, pid uint) *domain.Item {
		return &domain.Item{
			OwnerID:   owner,
			ProductID: pid,
			Name:      "Item",
			Price:     decimal.NewFromInt(100),
			Currency:  "INR",
			ImageRef:  "/a.jpg",
			AddedAt:   time.Now(),
		}
	}

	ok, err := repo.Insert(ctx, item("u1", 1))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Insert(ctx, item("u1", 2))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Insert(ctx, item("u1", 1))
	require.NoError(t, err)
	assert.False(t, ok, "duplicate (owner, product) must be rejected")

	ok, err = repo.Insert(ctx, item("u2", 1))
	require.NoError(t, err)
	assert.True(t, ok)

	items, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.EqualValues(t, 1, items[0].ProductID)

	require.NoError(t, repo.Delete(ctx, "u1", 1))
	require.NoError(t, repo.Delete(ctx, "u1", 1))
	items, err = repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].ProductID)

	others, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
