// Package ratelimit 基于 redis_rate（GCRA）的店铺接口限流
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "velure:rl"

// Scope 计数维度，读写分开计数
type Scope string

const (
	ScopeRead  Scope = "read"
	ScopeWrite Scope = "write"
)

// Limit 单个维度的配额
type Limit struct {
	Rate   int
	Period time.Duration
	Burst  int
}

// PerSecond 每秒 rate 次，突发不低于 rate
func PerSecond(rate, burst int) Limit {
	if burst < rate {
		burst = rate
	}
	return Limit{Rate: rate, Period: time.Second, Burst: burst}
}

// Policy 读请求与写请求（购物车、收藏夹、下单）的配额
type Policy struct {
	Read  Limit
	Write Limit
}

// NewPolicy 写配额为读配额的一半，至少 1
func NewPolicy(qps, burst int) Policy {
	write := qps / 2
	if write < 1 {
		write = 1
	}
	writeBurst := burst / 2
	if writeBurst < write {
		writeBurst = write
	}
	return Policy{Read: PerSecond(qps, burst), Write: PerSecond(write, writeBurst)}
}

// ScopeOf GET/HEAD/OPTIONS 计入读配额，其余计入写配额
func ScopeOf(method string) Scope {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ScopeRead
	default:
		return ScopeWrite
	}
}

func (p Policy) limit(s Scope) Limit {
	if s == ScopeWrite {
		return p.Write
	}
	return p.Read
}

// Subject 被限流的调用方
type Subject struct {
	OwnerID  string
	ClientIP string
}

// Key 已登录用户按 owner 计数，匿名请求按 IP
func (s Subject) Key(scope Scope) string {
	if s.OwnerID != "" {
		return fmt.Sprintf("%s:%s:owner:%s", keyPrefix, scope, s.OwnerID)
	}
	return fmt.Sprintf("%s:%s:ip:%s", keyPrefix, scope, s.ClientIP)
}

// Result 单次检查结果
type Result struct {
	Allowed    bool
	Remaining  int
	ResetAfter time.Duration
	RetryAfter time.Duration
}

// Backend 计数后端
type Backend interface {
	Allow(ctx context.Context, key string, limit Limit) (*Result, error)
}

// RedisBackend redis_rate 计数后端
type RedisBackend struct {
	limiter *redis_rate.Limiter
}

// NewRedisBackend 创建 Redis 计数后端
func NewRedisBackend(rdb *redis.Client) *RedisBackend {
	return &RedisBackend{limiter: redis_rate.NewLimiter(rdb)}
}

func (b *RedisBackend) Allow(ctx context.Context, key string, limit Limit) (*Result, error) {
	res, err := b.limiter.Allow(ctx, key, redis_rate.Limit{Rate: limit.Rate, Period: limit.Period, Burst: limit.Burst})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}
	return &Result{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		ResetAfter: res.ResetAfter,
		RetryAfter: res.RetryAfter,
	}, nil
}

// Decision 一次请求的限流结论，Limit 为命中的配额
type Decision struct {
	*Result
	Scope Scope
	Limit Limit
}

// Limiter 按 Policy 为调用方选择配额并计数
type Limiter struct {
	backend Backend
	policy  Policy
}

// NewLimiter 创建限流器
func NewLimiter(backend Backend, policy Policy) *Limiter {
	return &Limiter{backend: backend, policy: policy}
}

// Check 检查 subject 的一次 method 请求
func (l *Limiter) Check(ctx context.Context, subject Subject, method string) (*Decision, error) {
	scope := ScopeOf(method)
	limit := l.policy.limit(scope)
	res, err := l.backend.Allow(ctx, subject.Key(scope), limit)
	if err != nil {
		return nil, err
	}
	return &Decision{Result: res, Scope: scope, Limit: limit}, nil
}
