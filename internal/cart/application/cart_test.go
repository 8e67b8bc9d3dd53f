package application

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/velure/internal/cart/domain"
	"golang.org/x/sync/errgroup"
)

const owner = "owner-a"

type fixture struct {
	repo    *memoryRepo
	catalog *fakeCatalog
	pub     *recordingPublisher
	svc     *CartApplicationService
}

func newFixture(opts Options, ps ...*domain.ProductSnapshot) *fixture {
	f := &fixture{
		repo:    newMemoryRepo(),
		catalog: newFakeCatalog(ps...),
		pub:     &recordingPublisher{},
	}
	f.svc = NewCartApplicationService(f.repo, f.catalog, f.pub, nil, opts)
	return f
}

func add(t *testing.T, f *fixture, pid uint, qty int) (*domain.Cart, error) {
	t.Helper()
	return f.svc.AddItem(context.Background(), AddItemRequest{OwnerID: owner, ProductID: pid, Quantity: qty, Currency: "INR"})
}

// 示例场景 1–6 顺序执行
func TestCartScenarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 5))

	// 1. 空购物车加入 2 件
	cart, err := add(t, f, 1, 2)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 2, cart.Lines[0].Quantity)

	// 2. 再次加入 2 件，数量累加为 4
	cart, err = add(t, f, 1, 2)
	require.NoError(t, err)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 4, cart.Lines[0].Quantity)

	// 3. 累加后 7 超过库存 5
	_, err = add(t, f, 1, 3)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, domain.KindInsufficientStock, domain.Kind(err))
	assert.Equal(t, 4, f.repo.snapshot(owner).Lines[0].Quantity)

	// 4. 数量 0 不合法
	_, err = f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 1, Quantity: 0})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, 4, f.repo.snapshot(owner).Lines[0].Quantity)

	// 5. 移除两次均成功
	cart, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner, ProductID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	cart, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner, ProductID: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	// 6. 不存在的商品
	before := f.repo.snapshot(owner)
	_, err = add(t, f, 2, 1)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	assert.Equal(t, domain.KindNotFound, domain.Kind(err))
	assert.Equal(t, before, f.repo.snapshot(owner))
}

func TestAddItem_Uniqueness(t *testing.T) {
	f := newFixture(Options{}, product(1, 100))
	qtys := []int{1, 3, 2, 5, 1}
	sum := 0
	for _, q := range qtys {
		_, err := add(t, f, 1, q)
		require.NoError(t, err)
		sum += q
	}
	cart := f.repo.snapshot(owner)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, sum, cart.Lines[0].Quantity)
}

func TestAddItem_DefaultQuantityAndCurrency(t *testing.T) {
	f := newFixture(Options{PlaceholderImage: "/ph.jpg"}, product(1, 3))
	cart, err := f.svc.AddItem(context.Background(), AddItemRequest{OwnerID: owner, ProductID: 1, Quantity: QuantityOrDefault(nil), Currency: "US"})
	require.NoError(t, err)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, domain.CurrencyUSD, cart.Lines[0].Currency)
	assert.Equal(t, "12", cart.Lines[0].UnitPrice.String())
}

func TestAddItem_StockBoundUsesLiveStock(t *testing.T) {
	f := newFixture(Options{}, product(1, 5))
	_, err := add(t, f, 1, 2)
	require.NoError(t, err)

	// 实时库存下降后，累加数量按实时值校验
	f.catalog.setStock(1, 3)
	_, err = add(t, f, 1, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	cart, err := add(t, f, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cart.Lines[0].Quantity)
	assert.Equal(t, 3, cart.Lines[0].StockSnapshot)
}

func TestSetQuantity_UsesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 5))
	_, err := add(t, f, 1, 1)
	require.NoError(t, err)

	// 快照为 5，实时库存已降为 1，仍按快照放行
	f.catalog.setStock(1, 1)
	cart, err := f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 1, Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Lines[0].Quantity)

	_, err = f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 1, Quantity: 6})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 9, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrLineNotFound)
}

func TestNoPartialWriteOnInsufficientStock(t *testing.T) {
	f := newFixture(Options{}, product(1, 5), product(2, 1))
	_, err := add(t, f, 1, 2)
	require.NoError(t, err)
	before := f.repo.snapshot(owner)
	saves := f.repo.saves

	_, err = add(t, f, 2, 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Equal(t, before, f.repo.snapshot(owner))
	assert.Equal(t, saves, f.repo.saves)
}

func TestOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 10))

	_, err := f.svc.AddItem(ctx, AddItemRequest{OwnerID: "owner-b", ProductID: 1, Quantity: 3})
	require.NoError(t, err)
	before := f.repo.snapshot("owner-b")

	_, err = add(t, f, 1, 2)
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 1, Quantity: 1})
	require.NoError(t, err)
	_, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner, ProductID: 1})
	require.NoError(t, err)

	assert.Equal(t, before, f.repo.snapshot("owner-b"))
}

func TestValidationBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 10))

	_, err := f.svc.Fetch(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	_, err = f.svc.AddItem(ctx, AddItemRequest{ProductID: 1})
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	_, err = f.svc.AddItem(ctx, AddItemRequest{OwnerID: owner})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.AddItem(ctx, AddItemRequest{OwnerID: owner, ProductID: 1, Quantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.AddItem(ctx, AddItemRequest{OwnerID: owner, ProductID: 1, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.AddItem(ctx, AddItemRequest{OwnerID: owner, ProductID: 1, Quantity: 1, Currency: "EUR"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	assert.Zero(t, f.catalog.calls, "invalid requests must not reach the catalog")
	assert.Nil(t, f.repo.snapshot(owner), "invalid requests must not touch storage")
}

func TestFetch_CreatesEmptyCart(t *testing.T) {
	f := newFixture(Options{})
	cart, err := f.svc.Fetch(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)
	assert.Equal(t, owner, cart.OwnerID)

	again, err := f.svc.Fetch(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCatalogTimeout_Unavailable(t *testing.T) {
	f := newFixture(Options{CatalogTimeout: 20 * time.Millisecond}, product(1, 5))
	f.catalog.delay = 500 * time.Millisecond

	start := time.Now()
	_, err := add(t, f, 1, 1)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
	assert.Contains(t, err.Error(), "timed out")
	assert.Empty(t, f.repo.snapshot(owner).Lines)
	assert.Zero(t, f.repo.saves)
}

func TestCatalogFailure_Unavailable(t *testing.T) {
	f := newFixture(Options{}, product(1, 5))
	f.catalog.err = errCatalogDown

	_, err := add(t, f, 1, 1)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Zero(t, f.repo.saves)
}

func TestPersistenceFailure_Unavailable(t *testing.T) {
	f := newFixture(Options{}, product(1, 5))
	f.repo.saveErr = fmt.Errorf("disk full")

	_, err := add(t, f, 1, 1)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Empty(t, f.repo.snapshot(owner).Lines)
}

func TestVersionConflict_ReappliesOnFreshState(t *testing.T) {
	f := newFixture(Options{}, product(1, 5))
	f.repo.conflictsLeft = 2

	cart, err := add(t, f, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Lines[0].Quantity)
	assert.Equal(t, 3, f.catalog.calls, "each re-application re-reads the catalog")
}

func TestVersionConflict_Exhausted(t *testing.T) {
	f := newFixture(Options{MaxAttempts: 3}, product(1, 5))
	f.repo.alwaysConflict = true

	_, err := add(t, f, 1, 1)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.Contains(t, err.Error(), "busy")
	assert.Equal(t, 3, f.catalog.calls)
}

func TestConcurrentAdds_NoLostUpdate(t *testing.T) {
	f := newFixture(Options{MaxAttempts: 1000}, product(1, 1000))

	var g errgroup.Group
	for i := 0; i < 100; i++ {
		g.Go(func() error {
			_, err := add(t, f, 1, 1)
			return err
		})
	}
	require.NoError(t, g.Wait())

	cart := f.repo.snapshot(owner)
	require.Len(t, cart.Lines, 1)
	assert.Equal(t, 100, cart.Lines[0].Quantity)
	assert.EqualValues(t, 100, cart.Version)
}

func TestConcurrentAdds_StockNeverOversold(t *testing.T) {
	f := newFixture(Options{MaxAttempts: 1000}, product(1, 10))

	var g errgroup.Group
	results := make(chan error, 50)
	for i := 0; i < 50; i++ {
		g.Go(func() error {
			_, err := add(t, f, 1, 1)
			results <- err
			return nil
		})
	}
	require.NoError(t, g.Wait())
	close(results)

	ok, short := 0, 0
	for err := range results {
		switch {
		case err == nil:
			ok++
		case domain.Kind(err) == domain.KindInsufficientStock:
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 10, ok)
	assert.Equal(t, 40, short)
	assert.Equal(t, 10, f.repo.snapshot(owner).Lines[0].Quantity)
}

func TestEvents_BestEffort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 5))
	f.pub.err = fmt.Errorf("broker unreachable")

	_, err := add(t, f, 1, 1)
	require.NoError(t, err)
	_, err = f.svc.SetQuantity(ctx, SetQuantityRequest{OwnerID: owner, ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner, ProductID: 1})
	require.NoError(t, err)
	// 行已不存在，不再发布移除事件
	_, err = f.svc.RemoveItem(ctx, RemoveItemRequest{OwnerID: owner, ProductID: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{domain.TopicItemAdded, domain.TopicItemQuantitySet, domain.TopicItemRemoved}, f.pub.topics)
}

func TestPurgeAll(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 5))
	for _, o := range []string{"a", "b", "c"} {
		_, err := f.svc.Fetch(ctx, o)
		require.NoError(t, err)
	}

	n, err := f.svc.PurgeAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.Nil(t, f.repo.snapshot("a"))
}

func TestClear_VersionChecked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(Options{}, product(1, 5))
	cart, err := add(t, f, 1, 2)
	require.NoError(t, err)

	stale := cart.Clone()
	_, err = add(t, f, 1, 1)
	require.NoError(t, err)

	err = f.svc.Clear(ctx, stale)
	require.ErrorIs(t, err, domain.ErrVersionConflict)
	assert.Equal(t, domain.KindUnavailable, domain.Kind(err))
	assert.Equal(t, 3, f.repo.snapshot(owner).Lines[0].Quantity)

	f.repo.saveErr = errors.New("disk full")
	fresh, err := f.svc.Fetch(ctx, owner)
	require.NoError(t, err)
	err = f.svc.Clear(ctx, fresh)
	require.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrVersionConflict, "storage failures are not reported as conflicts")
	f.repo.saveErr = nil

	fresh, err = f.svc.Fetch(ctx, owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.Clear(ctx, fresh))
	assert.Empty(t, f.repo.snapshot(owner).Lines)
}

func TestNewCartView(t *testing.T) {
	f := newFixture(Options{}, product(1, 5))
	cart, err := add(t, f, 1, 3)
	require.NoError(t, err)

	view := NewCartView(cart)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "3000", view.Lines[0].Subtotal.String())
	assert.Equal(t, 3, view.ItemCount)
	require.Len(t, view.Totals, 1)
	assert.Equal(t, domain.CurrencyINR, view.Totals[0].Currency)
}
