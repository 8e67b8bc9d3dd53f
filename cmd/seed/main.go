// seed 用内置商品集合替换商品目录，并签发一个本地使用的管理员 token
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/logging"
	catalogapp "github.com/wyfcoding/velure/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/velure/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/velure/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/velure/pkg/config"
	"github.com/wyfcoding/velure/pkg/db"
	"github.com/wyfcoding/velure/pkg/middleware"
	"github.com/wyfcoding/velure/pkg/mq"
)

func main() {
	var (
		configPath string
		tokenOnly  bool
	)
	flag.StringVar(&configPath, "config", "configs/storefront/config.toml", "path to config file")
	flag.BoolVar(&tokenOnly, "token-only", false, "only mint an admin token, keep the catalog")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config failed: %v", err))
	}
	slog.SetDefault(logging.NewFromConfig(&logging.Config{Service: cfg.ServiceName, Module: "seed", Level: cfg.Logger.Level}).Logger)

	if !tokenOnly {
		if err := seedCatalog(cfg); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	adminEmail := config.GetEnv("ADMIN_EMAIL", "admin@velure.com")
	token, err := middleware.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL()).
		IssueToken(adminEmail, middleware.RoleAdmin)
	if err != nil {
		slog.Error("failed to issue admin token", "error", err)
		os.Exit(1)
	}
	fmt.Printf("admin token for %s:\n%s\n", adminEmail, token)
}

func seedCatalog(cfg *config.Config) error {
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                cfg.Database.DSN,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.AutoMigrate(&catalogdomain.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products: %w", err)
	}

	repo := catalogmysql.NewProductRepository(database.DB)
	svc := catalogapp.NewCatalogCommandService(repo, nil, mq.NoopPublisher{})
	products, err := svc.ReplaceAll(context.Background(), seedProducts())
	if err != nil {
		return err
	}
	for _, p := range products {
		slog.Info("seeded product", "id", p.ID, "name", p.Name)
	}
	slog.Info("Database seeded successfully", "count", len(products))
	return nil
}

func seedProducts() []catalogapp.CreateProductCommand {
	p := func(name, category, metal string, inr, usd int64, stock int, featured bool, rating float64, reviews int) catalogapp.CreateProductCommand {
		return catalogapp.CreateProductCommand{
			Name:          name,
			Description:   fmt.Sprintf("%s, handcrafted in %s.", name, metal),
			Category:      category,
			Metal:         metal,
			PriceINR:      decimal.NewFromInt(inr),
			PriceUSD:      decimal.NewFromInt(usd),
			Stock:         stock,
			Featured:      featured,
			AverageRating: rating,
			NumReviews:    reviews,
		}
	}
	return []catalogapp.CreateProductCommand{
		p("Lotus Solitaire Ring", "Rings", "18k gold", 45000, 540, 12, true, 4.8, 36),
		p("Eternity Band", "Rings", "platinum", 78000, 940, 6, false, 4.6, 21),
		p("Pearl Drop Necklace", "Necklaces", "sterling silver", 32000, 385, 9, true, 4.7, 18),
		p("Emerald Pendant", "Necklaces", "18k gold", 60000, 720, 4, false, 4.5, 12),
		p("Classic Gold Hoops", "Earrings", "22k gold", 20000, 240, 25, true, 4.9, 54),
		p("Diamond Studs", "Earrings", "white gold", 55000, 660, 8, false, 4.8, 40),
		p("Ruby Bangle", "Bracelets", "22k gold", 30000, 360, 5, false, 4.4, 9),
		p("Tennis Bracelet", "Bracelets", "white gold", 95000, 1140, 3, true, 5.0, 7),
	}
}
