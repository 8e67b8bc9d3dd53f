package application

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/wyfcoding/velure/internal/catalog/domain"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) Save(ctx context.Context, p *domain.Product) error {
	args := m.Called(ctx, p)
	if p.ID == 0 {
		p.ID = 1
	}
	return args.Error(0)
}

func (m *mockRepo) Update(ctx context.Context, p *domain.Product, columns ...string) error {
	return m.Called(ctx, p, columns).Error(0)
}

func (m *mockRepo) GetByID(ctx context.Context, id uint) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockRepo) List(ctx context.Context, f domain.ProductFilter) ([]*domain.Product, int64, error) {
	args := m.Called(ctx, f)
	ps, _ := args.Get(0).([]*domain.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) DecrementStock(ctx context.Context, id uint, qty int) error {
	return m.Called(ctx, id, qty).Error(0)
}

func (m *mockRepo) ReplaceAll(ctx context.Context, ps []*domain.Product) error {
	return m.Called(ctx, ps).Error(0)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, id uint) (*domain.Product, bool, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, p *domain.Product, ttl time.Duration) error {
	return m.Called(ctx, p, ttl).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, ids ...uint) error {
	return m.Called(ctx, ids).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, event any) error {
	return m.Called(ctx, topic, key, event).Error(0)
}
