package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zahabi-gold/zahabi-backend/internal/cron"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/pricing"
	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	"github.com/zahabi-gold/zahabi-backend/pkg/db"
	"github.com/zahabi-gold/zahabi-backend/pkg/goldfeed"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/metrics"
	"github.com/zahabi-gold/zahabi-backend/pkg/migrate"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/redis"
)

const lockKeyFormat = "zh:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	// The snapshot job is the only consumer of the gold feed, so the worker
	// refuses to start without an API key rather than ticking uselessly.
	feedClient, err := goldfeed.NewClient(cfg.PriceFeed.APIKey,
		goldfeed.WithBaseURL(cfg.PriceFeed.BaseURL),
		goldfeed.WithTimeout(cfg.PriceFeed.Timeout),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create gold feed client", err)
		os.Exit(1)
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(dbClient.DB()), feedClient, cfg.PriceFeed, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	journalRepo := journal.NewRepository(dbClient.DB())

	snapshotJob, err := cron.NewPriceSnapshotJob(cron.PriceSnapshotJobParams{
		Logger:  logg,
		Pricing: pricingService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create price snapshot job", err)
		os.Exit(1)
	}

	staleJob, err := cron.NewStalePendingJob(cron.StalePendingJobParams{
		Logger:        logg,
		DB:            dbClient,
		PendingReader: journalRepo,
		Outbox:        outboxService,
		MaxAge:        cfg.Cron.StalePendingAge,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stale pending job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(snapshotJob, staleJob),
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
