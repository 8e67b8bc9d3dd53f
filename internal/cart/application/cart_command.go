package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/velure/internal/cart/domain"
	catalog "github.com/wyfcoding/velure/internal/catalog/domain"
	"github.com/wyfcoding/velure/pkg/metrics"
)

// AddItemRequest 加入购物车请求
type AddItemRequest struct {
	OwnerID   string
	ProductID uint
	// Quantity 必须 >= 1，请求未携带数量时由传输层填入 1
	Quantity int
	// Currency 货币代码或市场代码（IN/US/CA），为空时使用 INR
	Currency string
}

// Validate 校验请求，返回解析后的货币
func (r *AddItemRequest) Validate() (domain.Currency, error) {
	if strings.TrimSpace(r.OwnerID) == "" {
		return "", fmt.Errorf("%w: please log in to add items to your cart", domain.ErrUnauthenticated)
	}
	if r.ProductID == 0 {
		return "", fmt.Errorf("%w: product ID is required", domain.ErrInvalidArgument)
	}
	if r.Quantity < 1 {
		return "", fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)
	}
	currency, err := catalog.ParseCurrency(r.Currency)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	return currency, nil
}

// QuantityOrDefault 未携带数量时默认加入 1 件，显式的 0 原样保留交由校验拒绝
func QuantityOrDefault(q *int) int {
	if q == nil {
		return 1
	}
	return *q
}

// SetQuantityRequest 修改数量请求
type SetQuantityRequest struct {
	OwnerID   string
	ProductID uint
	Quantity  int
}

// Validate 校验请求
func (r *SetQuantityRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: please log in to update your cart", domain.ErrUnauthenticated)
	}
	if r.ProductID == 0 {
		return fmt.Errorf("%w: product ID is required", domain.ErrInvalidArgument)
	}
	if r.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", domain.ErrInvalidArgument)
	}
	return nil
}

// RemoveItemRequest 移除商品请求
type RemoveItemRequest struct {
	OwnerID   string
	ProductID uint
}

// Validate 校验请求
func (r *RemoveItemRequest) Validate() error {
	if strings.TrimSpace(r.OwnerID) == "" {
		return fmt.Errorf("%w: please log in to update your cart", domain.ErrUnauthenticated)
	}
	if r.ProductID == 0 {
		return fmt.Errorf("%w: product ID is required", domain.ErrInvalidArgument)
	}
	return nil
}

// Options 购物车服务参数
type Options struct {
	// CatalogTimeout 单次商品查询超时
	CatalogTimeout time.Duration
	// MaxAttempts 版本冲突时的最大重放次数
	MaxAttempts int
	// PlaceholderImage 商品无图片时的占位图
	PlaceholderImage string
}

func (o Options) withDefaults() Options {
	if o.CatalogTimeout <= 0 {
		o.CatalogTimeout = 2 * time.Second
	}
	if o.MaxAttempts < 1 {
		o.MaxAttempts = 5
	}
	if o.PlaceholderImage == "" {
		o.PlaceholderImage = domain.DefaultPlaceholderImage
	}
	return o
}

// CartCommandService 购物车命令服务。每次变更读取带版本的购物车，在副本上修改后做条件保存，
// 版本冲突时基于最新状态重放，保证同一用户的并发变更不丢失
type CartCommandService struct {
	repo      domain.CartRepository
	catalog   domain.CatalogLookup
	publisher domain.EventPublisher
	metrics   *metrics.Metrics
	opts      Options
}

// NewCartCommandService 创建购物车命令服务实例
func NewCartCommandService(
	repo domain.CartRepository,
	catalog domain.CatalogLookup,
	publisher domain.EventPublisher,
	m *metrics.Metrics,
	opts Options,
) *CartCommandService {
	return &CartCommandService{
		repo:      repo,
		catalog:   catalog,
		publisher: publisher,
		metrics:   m,
		opts:      opts.withDefaults(),
	}
}

// mutation 在副本上应用变更，changed 为 false 时跳过保存
type mutation func(ctx context.Context, cart *domain.Cart) (changed bool, err error)

func (s *CartCommandService) mutate(ctx context.Context, ownerID string, apply mutation) (*domain.Cart, bool, error) {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		current, err := s.repo.GetOrCreate(ctx, ownerID)
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to load cart: %v", domain.ErrUnavailable, err)
		}

		next := current.Clone()
		changed, err := apply(ctx, next)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return current, false, nil
		}

		ok, err := s.repo.SaveIfVersion(ctx, next, current.Version)
		if err != nil {
			return nil, false, fmt.Errorf("%w: failed to save cart: %v", domain.ErrUnavailable, err)
		}
		if ok {
			return next, true, nil
		}

		s.metrics.RecordCartConflict()
		logging.Debug(ctx, "cart version conflict, reapplying", "owner_id", ownerID, "attempt", attempt)
	}
	return nil, false, fmt.Errorf("%w: cart is busy, please retry", domain.ErrUnavailable)
}

// lookup 在超时内查询商品，不持有任何锁
func (s *CartCommandService) lookup(ctx context.Context, productID uint) (*domain.ProductSnapshot, error) {
	lctx, cancel := context.WithTimeout(ctx, s.opts.CatalogTimeout)
	defer cancel()

	p, err := s.catalog.Lookup(lctx, productID)
	switch {
	case err == nil:
		return p, nil
	case errors.Is(err, domain.ErrProductNotFound):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded) || lctx.Err() != nil:
		return nil, fmt.Errorf("%w: catalog lookup timed out for product %d", domain.ErrUnavailable, productID)
	default:
		return nil, fmt.Errorf("%w: catalog lookup failed for product %d: %v", domain.ErrUnavailable, productID, err)
	}
}

// AddItem 加入商品，已有行时数量累加
func (s *CartCommandService) AddItem(ctx context.Context, req AddItemRequest) (*domain.Cart, error) {
	currency, err := req.Validate()
	if err != nil {
		s.record("add_item", err)
		return nil, err
	}

	cart, _, err := s.mutate(ctx, req.OwnerID, func(ctx context.Context, c *domain.Cart) (bool, error) {
		product, err := s.lookup(ctx, req.ProductID)
		if err != nil {
			return false, err
		}
		return true, c.AddItem(product, req.Quantity, currency, s.opts.PlaceholderImage)
	})
	s.record("add_item", err)
	if err != nil {
		return nil, err
	}

	line, _ := cart.Line(req.ProductID)
	s.publish(ctx, domain.TopicItemAdded, req.OwnerID, domain.CartItemAddedEvent{
		CartID:    cart.ID,
		OwnerID:   cart.OwnerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		LineQty:   line.Quantity,
		UnitPrice: line.UnitPrice,
		Currency:  line.Currency,
		Timestamp: time.Now(),
	})
	return cart, nil
}

// SetQuantity 覆盖行数量
func (s *CartCommandService) SetQuantity(ctx context.Context, req SetQuantityRequest) (*domain.Cart, error) {
	if err := req.Validate(); err != nil {
		s.record("set_quantity", err)
		return nil, err
	}

	cart, _, err := s.mutate(ctx, req.OwnerID, func(_ context.Context, c *domain.Cart) (bool, error) {
		return true, c.SetQuantity(req.ProductID, req.Quantity)
	})
	s.record("set_quantity", err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicItemQuantitySet, req.OwnerID, domain.CartItemQuantitySetEvent{
		CartID:    cart.ID,
		OwnerID:   cart.OwnerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Timestamp: time.Now(),
	})
	return cart, nil
}

// RemoveItem 移除商品，行不存在时直接返回当前购物车
func (s *CartCommandService) RemoveItem(ctx context.Context, req RemoveItemRequest) (*domain.Cart, error) {
	if err := req.Validate(); err != nil {
		s.record("remove_item", err)
		return nil, err
	}

	cart, changed, err := s.mutate(ctx, req.OwnerID, func(_ context.Context, c *domain.Cart) (bool, error) {
		return c.RemoveItem(req.ProductID), nil
	})
	s.record("remove_item", err)
	if err != nil {
		return nil, err
	}

	if changed {
		s.publish(ctx, domain.TopicItemRemoved, req.OwnerID, domain.CartItemRemovedEvent{
			CartID:    cart.ID,
			OwnerID:   cart.OwnerID,
			ProductID: req.ProductID,
			Timestamp: time.Now(),
		})
	}
	return cart, nil
}

// Clear 清空购物车，cart.Version 与存储不一致时返回 ErrVersionConflict，存储失败时返回 ErrUnavailable。由下单事务调用
func (s *CartCommandService) Clear(ctx context.Context, cart *domain.Cart) error {
	next := cart.Clone()
	next.Clear()
	ok, err := s.repo.SaveIfVersion(ctx, next, cart.Version)
	if err != nil {
		return fmt.Errorf("%w: failed to clear cart: %v", domain.ErrUnavailable, err)
	}
	if !ok {
		s.metrics.RecordCartConflict()
		return fmt.Errorf("%w: cart changed during checkout, please review and retry", domain.ErrVersionConflict)
	}
	return nil
}

// PurgeAll 删除所有用户的购物车
func (s *CartCommandService) PurgeAll(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteAll(ctx)
	if err != nil {
		err = fmt.Errorf("%w: failed to purge carts: %v", domain.ErrUnavailable, err)
		s.record("purge", err)
		return 0, err
	}
	s.record("purge", nil)
	logging.Warn(ctx, "all carts purged", "deleted", n)

	s.publish(ctx, domain.TopicPurged, "", domain.CartsPurgedEvent{Deleted: n, Timestamp: time.Now()})
	return n, nil
}

func (s *CartCommandService) record(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = domain.Kind(err).String()
	}
	s.metrics.RecordCartMutation(op, outcome)
}

// publish 尽力发布事件，失败只记录日志
func (s *CartCommandService) publish(ctx context.Context, topic, key string, event any) {
	if err := s.publisher.Publish(ctx, topic, key, event); err != nil {
		logging.Warn(ctx, "failed to publish cart event", "topic", topic, "owner_id", key, "error", err)
	}
}
