package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zahabi-gold/zahabi-backend/api/routes"
	"github.com/zahabi-gold/zahabi-backend/internal/accounts"
	"github.com/zahabi-gold/zahabi-backend/internal/admin"
	"github.com/zahabi-gold/zahabi-backend/internal/auth"
	"github.com/zahabi-gold/zahabi-backend/internal/journal"
	"github.com/zahabi-gold/zahabi-backend/internal/ledger"
	"github.com/zahabi-gold/zahabi-backend/internal/notifications"
	"github.com/zahabi-gold/zahabi-backend/internal/pricing"
	"github.com/zahabi-gold/zahabi-backend/internal/settlement"
	"github.com/zahabi-gold/zahabi-backend/internal/users"
	"github.com/zahabi-gold/zahabi-backend/pkg/auth/session"
	"github.com/zahabi-gold/zahabi-backend/pkg/config"
	"github.com/zahabi-gold/zahabi-backend/pkg/db"
	"github.com/zahabi-gold/zahabi-backend/pkg/goldfeed"
	"github.com/zahabi-gold/zahabi-backend/pkg/logger"
	"github.com/zahabi-gold/zahabi-backend/pkg/metrics"
	"github.com/zahabi-gold/zahabi-backend/pkg/migrate"
	"github.com/zahabi-gold/zahabi-backend/pkg/outbox"
	"github.com/zahabi-gold/zahabi-backend/pkg/redis"
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	engine, err := ledger.NewEngine(logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger engine", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	journalRepo := journal.NewRepository(dbClient.DB())

	accountsService, err := accounts.NewService(dbClient, accounts.NewRepository(dbClient.DB()), engine, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	// The API only reads stored snapshots; the feed is wired when configured
	// so local setups without an API key still boot.
	var feed pricing.QuoteFeed
	if cfg.PriceFeed.APIKey != "" {
		feedClient, err := goldfeed.NewClient(cfg.PriceFeed.APIKey,
			goldfeed.WithBaseURL(cfg.PriceFeed.BaseURL),
			goldfeed.WithTimeout(cfg.PriceFeed.Timeout),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create gold feed client", err)
			os.Exit(1)
		}
		feed = feedClient
	}

	pricingService, err := pricing.NewService(pricing.NewRepository(dbClient.DB()), feed, cfg.PriceFeed, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}

	settlementService, err := settlement.NewService(dbClient, journalRepo, engine,
		settlement.NewFeeSchedule(cfg.Fees), pricingService, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create settlement service", err)
		os.Exit(1)
	}
	settlementService = settlement.NewInstrumentedService(settlementService,
		metrics.NewSettlementMetrics(prometheus.DefaultRegisterer))

	journalService, err := journal.NewService(journalRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create journal service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(dbClient, journalRepo, settlementService, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		Accounts:       accountsService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		Accounts:       accountsService,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
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
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Sessions:      sessionManager,
			Auth:          authService,
			Register:      registerService,
			Accounts:      accountsService,
			Settlement:    settlementService,
			Journal:       journalService,
			Admin:         adminService,
			Pricing:       pricingService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
