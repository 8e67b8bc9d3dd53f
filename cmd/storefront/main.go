package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	cartapp "github.com/wyfcoding/velure/internal/cart/application"
	cartdomain "github.com/wyfcoding/velure/internal/cart/domain"
	cartadapter "github.com/wyfcoding/velure/internal/cart/infrastructure/adapter"
	cartmysql "github.com/wyfcoding/velure/internal/cart/infrastructure/persistence/mysql"
	cartgrpc "github.com/wyfcoding/velure/internal/cart/interfaces/grpc"
	carthttp "github.com/wyfcoding/velure/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/velure/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/velure/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/velure/internal/catalog/infrastructure/persistence/mysql"
	catalogredis "github.com/wyfcoding/velure/internal/catalog/infrastructure/persistence/redis"
	cataloghttp "github.com/wyfcoding/velure/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/velure/internal/order/application"
	ordermysql "github.com/wyfcoding/velure/internal/order/infrastructure/persistence/mysql"
	orderhttp "github.com/wyfcoding/velure/internal/order/interfaces/http"
	wishlistapp "github.com/wyfcoding/velure/internal/wishlist/application"
	wishlistdomain "github.com/wyfcoding/velure/internal/wishlist/domain"
	wishlistadapter "github.com/wyfcoding/velure/internal/wishlist/infrastructure/adapter"
	wishlistmysql "github.com/wyfcoding/velure/internal/wishlist/infrastructure/persistence/mysql"
	wishlisthttp "github.com/wyfcoding/velure/internal/wishlist/interfaces/http"
	"github.com/wyfcoding/velure/pkg/cache"
	"github.com/wyfcoding/velure/pkg/config"
	"github.com/wyfcoding/velure/pkg/db"
	"github.com/wyfcoding/velure/pkg/metrics"
	"github.com/wyfcoding/velure/pkg/middleware"
	"github.com/wyfcoding/velure/pkg/mq"
	"github.com/wyfcoding/velure/pkg/ratelimit"
)

// publisher 领域事件发布器
type publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
	Close() error
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "configs/storefront/config.toml", "path to config file")
	flag.Parse()

	// 1. 配置
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}

	// 2. 日志
	logger := logging.NewFromConfig(&logging.Config{
		Service:    cfg.ServiceName,
		Module:     "storefront",
		Level:      cfg.Logger.Level,
		File:       cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
	})
	slog.SetDefault(logger.Logger)

	if err := run(cfg); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	// 3. 指标
	m := metrics.New(cfg.ServiceName)

	// 4. 数据库
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.Database.AutoMigrate {
		models := append([]any{
			&catalogdomain.Product{},
			&cartdomain.Cart{},
			&cartdomain.CartLine{},
			&wishlistdomain.Item{},
		}, ordermysql.Models()...)
		if err := database.AutoMigrate(models...); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 5. Redis（可选）
	var (
		productCache catalogdomain.ProductCache
		limiter      *ratelimit.Limiter
	)
	if cfg.Redis.Enabled {
		rc, err := cache.New(cache.Config{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			MaxPoolSize:  cfg.Redis.MaxPoolSize,
			ConnTimeout:  cfg.Redis.ConnTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			return fmt.Errorf("failed to init redis: %w", err)
		}
		defer rc.Close()
		productCache = catalogredis.NewProductCache(rc)
		limiter = ratelimit.NewLimiter(
			ratelimit.NewRedisBackend(rc.GetClient()),
			ratelimit.NewPolicy(cfg.RateLimit.QPS, cfg.RateLimit.Burst),
		)
	}

	// 6. Kafka（可选）
	var events publisher = mq.NoopPublisher{}
	if cfg.Kafka.Enabled {
		producer, err := mq.NewProducer(mq.KafkaConfig{
			Brokers:      cfg.Kafka.Brokers,
			TopicPrefix:  cfg.Kafka.TopicPrefix,
			MaxRetries:   cfg.Kafka.MaxRetries,
			RetryBackoff: cfg.Kafka.RetryBackoff,
		})
		if err != nil {
			return fmt.Errorf("failed to init kafka producer: %w", err)
		}
		events = producer
	}
	defer events.Close()

	// 7. 应用服务
	productRepo := catalogmysql.NewProductRepository(database.DB)
	catalogCmd := catalogapp.NewCatalogCommandService(productRepo, productCache, events)
	catalogQuery := catalogapp.NewCatalogQueryService(productRepo, productCache, time.Duration(cfg.Redis.ProductTTL)*time.Second, m)
	catalogApp := catalogapp.NewCatalogApplicationService(catalogCmd, catalogQuery)

	cartApp := cartapp.NewCartApplicationService(
		cartmysql.NewCartRepository(database.DB),
		cartadapter.NewCatalogLookup(catalogQuery),
		events,
		m,
		cartapp.Options{
			CatalogTimeout:   cfg.Cart.CatalogTimeout(),
			MaxAttempts:      cfg.Cart.MaxCASAttempts,
			PlaceholderImage: cfg.Cart.PlaceholderImage,
		},
	)

	wishlistSvc := wishlistapp.NewWishlistService(
		wishlistmysql.NewWishlistRepository(database.DB),
		wishlistadapter.NewCatalogLookup(catalogQuery),
		cfg.Cart.PlaceholderImage,
	)

	orderRepo := ordermysql.NewOrderRepository(database.DB)
	orderApp := orderapp.NewOrderApplicationService(
		orderapp.NewOrderCommandService(orderRepo, cartApp, catalogCmd, db.NewTxManager(database.DB), events, m),
		orderapp.NewOrderQueryService(orderRepo),
	)

	// 8. 接口层
	auth := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL())

	if cfg.Environment == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(cfg.HTTP.AllowOrigins),
		middleware.GinMetricsMiddleware(m),
		middleware.GinAuthMiddleware(auth),
	)
	if cfg.RateLimit.Enabled && limiter != nil {
		r.Use(middleware.GinRateLimitMiddleware(limiter))
	}
	r.GET("/healthz", func(c *gin.Context) { response.Success(c, gin.H{"status": "ok"}) })
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	api := r.Group("/api/v1")
	admin := middleware.RequireAdmin()
	cataloghttp.NewCatalogHandler(catalogApp).RegisterRoutes(api, admin)
	carthttp.NewCartHandler(cartApp).RegisterRoutes(api)
	wishlisthttp.NewWishlistHandler(wishlistSvc).RegisterRoutes(api)
	orderhttp.NewOrderHandler(orderApp).RegisterRoutes(api, admin)

	grpcSrv := grpc.NewServer(grpc.ChainUnaryInterceptor(
		middleware.GRPCRecoveryInterceptor(),
		middleware.GRPCLoggingInterceptor(m),
		middleware.GRPCAuthInterceptor(auth),
	))
	cartgrpc.NewServer(grpcSrv, cartApp)
	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(grpcSrv, healthSrv)
	healthSrv.SetServingStatus(cartgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcSrv)

	// 9. 启动
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}
	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.GRPC.Enabled {
		g.Go(func() error {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr())
			if err != nil {
				return err
			}
			slog.Info("gRPC server starting", "addr", cfg.GRPC.Addr())
			return grpcSrv.Serve(lis)
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down servers...")
		healthSrv.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		grpcSrv.GracefulStop()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
