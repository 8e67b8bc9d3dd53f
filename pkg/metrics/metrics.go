// Package metrics 提供 Prometheus 指标集合，所有记录方法对 nil 接收者安全
package metrics

import (
	"context"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wyfcoding/pkg/logging"
)

const namespace = "velure"

// Metrics 指标集合
type Metrics struct {
	registry *prometheus.Registry

	// HTTP 请求计数
	HTTPRequestsTotal *prometheus.CounterVec
	// HTTP 请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// gRPC 请求计数
	GRPCRequestsTotal *prometheus.CounterVec
	// gRPC 请求耗时
	GRPCRequestDuration *prometheus.HistogramVec

	// 购物车变更，按操作与结果分类
	CartMutationsTotal *prometheus.CounterVec
	// 购物车乐观锁冲突次数
	CartVersionConflicts prometheus.Counter
	// 商品缓存命中/未命中
	ProductCacheTotal *prometheus.CounterVec
	// 下单数
	OrdersTotal *prometheus.CounterVec
}

// New 创建指标实例并注册到独立的 registry
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}, []string{"method", "code"}),
		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		CartMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations by operation and outcome",
		}, []string{"op", "outcome"}),
		CartVersionConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "cart_version_conflicts_total",
			Help:      "Optimistic concurrency conflicts while saving carts",
		}),
		ProductCacheTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "product_cache_total",
			Help:      "Product cache lookups by result",
		}, []string{"result"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "orders_total",
			Help:      "Orders placed by currency",
		}, []string{"currency"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.CartMutationsTotal,
		m.CartVersionConflicts,
		m.ProductCacheTotal,
		m.OrdersTotal,
	)

	logging.Info(context.Background(), "Metrics registered successfully", "service", serviceName)
	return m
}

// Handler 返回 /metrics 处理器
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 返回底层 registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, path string, statusCode int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordGRPCRequest 记录 gRPC 请求
func (m *Metrics) RecordGRPCRequest(method, code string, seconds float64) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(seconds)
}

// RecordCartMutation 记录购物车变更结果
func (m *Metrics) RecordCartMutation(op, outcome string) {
	if m == nil {
		return
	}
	m.CartMutationsTotal.WithLabelValues(op, outcome).Inc()
}

// RecordCartConflict 记录一次版本冲突
func (m *Metrics) RecordCartConflict() {
	if m == nil {
		return
	}
	m.CartVersionConflicts.Inc()
}

// RecordProductCache 记录商品缓存命中情况
func (m *Metrics) RecordProductCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ProductCacheTotal.WithLabelValues(result).Inc()
}

// RecordOrder 记录下单
func (m *Metrics) RecordOrder(currency string) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(currency).Inc()
}
