package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/velure/pkg/metrics"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// GRPCLoggingInterceptor gRPC 日志与指标拦截器
func GRPCLoggingInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := firstMetadata(ctx, "x-request-id")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)

		st, _ := status.FromError(err)
		m.RecordGRPCRequest(info.FullMethod, st.Code().String(), duration.Seconds())
		if err != nil {
			logging.Warn(ctx, "gRPC request failed",
				"request_id", requestID,
				"method", info.FullMethod,
				"error_code", st.Code().String(),
				"error_message", st.Message(),
				"duration", duration,
			)
		} else {
			logging.Info(ctx, "gRPC request completed",
				"request_id", requestID,
				"method", info.FullMethod,
				"duration", duration,
			)
		}
		return resp, err
	}
}

// GRPCRecoveryInterceptor gRPC panic 恢复拦截器
func GRPCRecoveryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.Error(ctx, "gRPC request panicked",
					"request_id", RequestIDFromContext(ctx),
					"method", info.FullMethod,
					"panic", r,
				)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// GRPCAuthInterceptor 从 authorization metadata 解析身份，缺少时按匿名处理
func GRPCAuthInterceptor(auth *Authenticator) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		header := firstMetadata(ctx, "authorization")
		if header == "" {
			return handler(ctx, req)
		}
		token := bearerToken(header)
		if token == "" {
			return nil, status.Error(codes.Unauthenticated, "Not authorized, token missing")
		}
		id, err := auth.Parse(token)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "Not authorized, token failed")
		}
		return handler(WithIdentity(ctx, id), req)
	}
}

func firstMetadata(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if vals := md.Get(key); len(vals) > 0 {
		return vals[0]
	}
	return ""
}
