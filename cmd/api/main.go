package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/itbpos/restaurant-backend/api/routes"
	internalauth "github.com/itbpos/restaurant-backend/internal/auth"
	"github.com/itbpos/restaurant-backend/internal/exports"
	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/internal/printing"
	"github.com/itbpos/restaurant-backend/internal/tables"
	"github.com/itbpos/restaurant-backend/internal/variants"
	"github.com/itbpos/restaurant-backend/pkg/auth/session"
	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/db"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/migrate"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
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

	authService, err := internalauth.NewService(cfg.JWT, cfg.Auth, sessionManager, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(gormDB), logg)

	variantsService, err := variants.NewService(variants.NewRepository(gormDB), logg, cfg.Pricing.DefaultPriceList)
	if err != nil {
		logg.Error(context.Background(), "failed to create variants service", err)
		os.Exit(1)
	}

	tablesService, err := tables.NewService(tables.NewRepository(gormDB), redisClient, logg, cfg.Refresh.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create tables service", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(gormDB)
	ordersService, err := orders.NewService(ordersRepo, dbClient, outboxService, variantsService, tablesService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	kitchenService, err := kitchen.NewService(kitchen.NewRepository(gormDB), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen service", err)
		os.Exit(1)
	}

	printingService, err := printing.NewService(kitchenService, ordersService, ordersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create printing service", err)
		os.Exit(1)
	}

	exportsService, err := exports.NewService(ordersService, cfg.Exports, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create exports service", err)
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
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Sessions: sessionManager,
			Auth:     authService,
			Orders:   ordersService,
			Kitchen:  kitchenService,
			Tables:   tablesService,
			Variants: variantsService,
			Printing: printingService,
			Exports:  exportsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
