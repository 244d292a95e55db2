package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/oryclothing/ory-backend/internal/fulfillment"
	"github.com/oryclothing/ory-backend/internal/notifications"
	"github.com/oryclothing/ory-backend/internal/orders"
	"github.com/oryclothing/ory-backend/pkg/config"
	"github.com/oryclothing/ory-backend/pkg/db"
	"github.com/oryclothing/ory-backend/pkg/logger"
	"github.com/oryclothing/ory-backend/pkg/metrics"
	"github.com/oryclothing/ory-backend/pkg/migrate"
	"github.com/oryclothing/ory-backend/pkg/redis"
)

const lockNameFormat = "fulfillment:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "worker",
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

	mailer, err := notifications.NewMailer(notifications.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	shipJob, err := fulfillment.NewShipJob(fulfillment.ShipJobParams{
		Logger: logg,
		DB:     dbClient,
		Tasks:  fulfillment.NewRepository(dbClient.DB()),
		Orders: orders.NewRepository(dbClient.DB()),
		Mailer: mailer,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ship job", err)
		os.Exit(1)
	}

	lock, err := fulfillment.NewRedisLock(redisClient, redisClient.LockKey(lockName(cfg.App.Env)), cfg.Fulfillment.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment lock", err)
		os.Exit(1)
	}

	service, err := fulfillment.NewService(fulfillment.ServiceParams{
		Logger:   logg,
		Registry: fulfillment.NewRegistry(shipJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Fulfillment.PollInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})
	logg.Info(ctx, "starting fulfillment worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "fulfillment worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "fulfillment worker shutting down gracefully")
}

func lockName(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockNameFormat, env)
}
