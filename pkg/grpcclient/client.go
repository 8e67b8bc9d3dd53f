// Package grpcclient 提供内部 gRPC 客户端工厂，带请求超时、重试与日志拦截器
package grpcclient

import (
	"context"
	"time"

	"github.com/wyfcoding/pkg/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/status"
)

// ClientConfig gRPC 客户端配置
type ClientConfig struct {
	// 目标地址
	Target string
	// 消息编码子类型，例如 "json"，为空时使用 proto
	ContentSubtype string
	// 连接超时（秒）
	ConnTimeout int
	// 请求超时（毫秒）
	RequestTimeoutMS int
	// 最大重试次数
	MaxRetries int
	// 重试延迟（毫秒）
	RetryDelayMS int
	// Keepalive 间隔（秒），0 表示不启用
	KeepaliveInterval int
}

// NewClient 创建 gRPC 客户端连接，extra 追加在默认选项之后
func NewClient(cfg ClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(unaryClientInterceptor(cfg)),
	}
	if cfg.ContentSubtype != "" {
		opts = append(opts, grpc.WithDefaultCallOptions(grpc.CallContentSubtype(cfg.ContentSubtype)))
	}

	if cfg.ConnTimeout > 0 {
		opts = append(opts, grpc.WithConnectParams(grpc.ConnectParams{
			Backoff: backoff.Config{
				BaseDelay:  100 * time.Millisecond,
				MaxDelay:   time.Duration(cfg.ConnTimeout) * time.Second,
				Multiplier: 1.6,
				Jitter:     0.2,
			},
			MinConnectTimeout: time.Duration(cfg.ConnTimeout) * time.Second,
		}))
	}

	if cfg.KeepaliveInterval > 0 {
		opts = append(opts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                time.Duration(cfg.KeepaliveInterval) * time.Second,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}))
	}

	conn, err := grpc.NewClient(cfg.Target, append(opts, extra...)...)
	if err != nil {
		logging.Error(context.Background(), "Failed to create gRPC client", "target", cfg.Target, "error", err)
		return nil, err
	}
	logging.Info(context.Background(), "gRPC client created", "target", cfg.Target)
	return conn, nil
}

// noRetryOption 标记非幂等调用，拦截器遇到后只发起一次请求
type noRetryOption struct {
	grpc.EmptyCallOption
}

// NoRetry 关闭本次调用的重试。服务端可能已提交而响应丢失时，重放非幂等请求会重复生效
func NoRetry() grpc.CallOption {
	return noRetryOption{}
}

func retryDisabled(opts []grpc.CallOption) bool {
	for _, o := range opts {
		if _, ok := o.(noRetryOption); ok {
			return true
		}
	}
	return false
}

// unaryClientInterceptor 一元 RPC 拦截器
func unaryClientInterceptor(cfg ClientConfig) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if cfg.RequestTimeoutMS > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.RequestTimeoutMS)*time.Millisecond)
			defer cancel()
		}

		maxRetries := cfg.MaxRetries
		if retryDisabled(opts) {
			maxRetries = 0
		}

		start := time.Now()
		var lastErr error
		for attempt := 0; attempt <= maxRetries; attempt++ {
			err := invoker(ctx, method, req, reply, cc, opts...)
			if err == nil {
				logging.Debug(ctx, "gRPC request succeeded", "method", method, "duration", time.Since(start))
				return nil
			}

			lastErr = err
			if !shouldRetry(status.Code(err)) || attempt >= maxRetries {
				break
			}

			select {
			case <-time.After(time.Duration(cfg.RetryDelayMS) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		logging.Warn(ctx, "gRPC request failed", "method", method, "duration", time.Since(start), "error", lastErr)
		return lastErr
	}
}

// shouldRetry 仅对暂时性错误重试，调用方须对非幂等方法传入 NoRetry
func shouldRetry(code codes.Code) bool {
	switch code {
	case codes.Unavailable, codes.ResourceExhausted:
		return true
	default:
		return false
	}
}
