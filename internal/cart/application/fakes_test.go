package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/velure/internal/cart/domain"
)

// memoryRepo 内存仓储，SaveIfVersion 语义与数据库实现一致
type memoryRepo struct {
	mu     sync.Mutex
	carts  map[string]*domain.Cart
	nextID uint
	saves  int

	// conflictsLeft 大于 0 时保存前模拟一次其他请求的并发写入
	conflictsLeft  int
	alwaysConflict bool
	saveErr        error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: make(map[string]*domain.Cart)}
}

func (r *memoryRepo) GetOrCreate(_ context.Context, ownerID string) (*domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[ownerID]
	if !ok {
		r.nextID++
		c = domain.NewCart(ownerID)
		c.ID = r.nextID
		r.carts[ownerID] = c
	}
	return c.Clone(), nil
}

func (r *memoryRepo) SaveIfVersion(_ context.Context, cart *domain.Cart, expected int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return false, r.saveErr
	}
	stored := r.carts[cart.OwnerID]
	if r.alwaysConflict {
		stored.Version++
		return false, nil
	}
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		stored.Version++
	}
	if stored.Version != expected {
		return false, nil
	}
	cart.Version = expected + 1
	r.carts[cart.OwnerID] = cart.Clone()
	r.saves++
	return true, nil
}

func (r *memoryRepo) DeleteAll(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.carts))
	r.carts = make(map[string]*domain.Cart)
	return n, nil
}

func (r *memoryRepo) snapshot(ownerID string) *domain.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.carts[ownerID]; ok {
		return c.Clone()
	}
	return nil
}

// fakeCatalog 可配置延迟与错误的商品目录
type fakeCatalog struct {
	mu       sync.Mutex
	products map[uint]*domain.ProductSnapshot
	delay    time.Duration
	err      error
	calls    int
}

func newFakeCatalog(ps ...*domain.ProductSnapshot) *fakeCatalog {
	f := &fakeCatalog{products: make(map[uint]*domain.ProductSnapshot)}
	for _, p := range ps {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) setStock(id uint, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *f.products[id]
	cp.Stock = stock
	f.products[id] = &cp
}

func (f *fakeCatalog) Lookup(ctx context.Context, id uint) (*domain.ProductSnapshot, error) {
	f.mu.Lock()
	f.calls++
	delay, err := f.delay, f.err
	p, ok := f.products[id]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return p.err
}

var errCatalogDown = errors.New("catalog connection refused")

func product(id uint, stock int) *domain.ProductSnapshot {
	return &domain.ProductSnapshot{
		ID:       id,
		Name:     "Product",
		PriceINR: decimal.NewFromInt(1000),
		PriceUSD: decimal.NewFromInt(12),
		Images:   []string{"/img/p.jpg"},
		Stock:    stock,
	}
}
