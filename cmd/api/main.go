package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oryclothing/ory-backend/api/routes"
	"github.com/oryclothing/ory-backend/internal/cart"
	"github.com/oryclothing/ory-backend/internal/catalog"
	"github.com/oryclothing/ory-backend/internal/checkout"
	"github.com/oryclothing/ory-backend/internal/customers"
	"github.com/oryclothing/ory-backend/internal/fulfillment"
	"github.com/oryclothing/ory-backend/internal/inventory"
	"github.com/oryclothing/ory-backend/internal/newsletter"
	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/internal/payments"
	"github.com/oryclothing/ory-backend/internal/promos"
	"github.com/oryclothing/ory-backend/internal/recent"
	"github.com/oryclothing/ory-backend/internal/stats"
	"github.com/oryclothing/ory-backend/pkg/config"
	"github.com/oryclothing/ory-backend/pkg/db"
	"github.com/oryclothing/ory-backend/pkg/logger"
	"github.com/oryclothing/ory-backend/pkg/metrics"
	"github.com/oryclothing/ory-backend/pkg/migrate"
	"github.com/oryclothing/ory-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	cat := catalog.New()
	rules := promos.NewRuleSet()

	inventoryRepo := inventory.NewRepository(dbClient.DB())
	inventorySvc, err := inventory.NewService(inventoryRepo, cat, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}
	if cfg.FeatureFlags.SeedCatalog {
		if err := inventorySvc.SeedIfEmpty(context.Background()); err != nil {
			logg.Error(context.Background(), "failed to seed inventory", err)
			os.Exit(1)
		}
	}

	cartSvc, err := cart.NewService(cart.NewRedisStorage(redisClient, cfg.Cart.TTL), cat, rules, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	gateway := payments.NewGateway(cfg.Payments, logg)

	mailer, err := notifications.NewMailer(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())
	customersRepo := customers.NewRepository(dbClient.DB())
	orderSvc, err := orders.NewService(
		ordersRepo,
		inventoryRepo,
		customersRepo,
		cat,
		rules,
		mailer,
		fulfillment.NewRepository(dbClient.DB()),
		dbClient,
		cfg.Fulfillment,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	checkoutSvc, err := checkout.NewService(cartSvc, gateway, orderSvc, redisClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	newsletterSvc, err := newsletter.NewService(newsletter.NewRepository(dbClient.DB()), mailer, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create newsletter service", err)
		os.Exit(1)
	}

	statsSvc, err := stats.NewService(ordersRepo, customersRepo, inventoryRepo, cat)
	if err != nil {
		logg.Error(context.Background(), "failed to create stats service", err)
		os.Exit(1)
	}

	recentSvc, err := recent.NewService(redisClient, cat, cfg.Cart.TTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create recently viewed service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:      cfg,
			Logger:      logg,
			Redis:       redisClient,
			DBPinger:    dbClient,
			HTTPMetrics: metrics.NewHTTPMetrics(prometheus.DefaultRegisterer),
			Inventory:   inventorySvc,
			Cart:        cartSvc,
			Gateway:     gateway,
			Orders:      orderSvc,
			Checkout:    checkoutSvc,
			Newsletter:  newsletterSvc,
			Mailer:      mailer,
			Stats:       statsSvc,
			Recent:      recentSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
