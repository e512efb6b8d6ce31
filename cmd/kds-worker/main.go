package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/itbpos/restaurant-backend/internal/kitchen"
	"github.com/itbpos/restaurant-backend/internal/orders"
	"github.com/itbpos/restaurant-backend/internal/refresh"
	"github.com/itbpos/restaurant-backend/internal/tables"
	"github.com/itbpos/restaurant-backend/internal/variants"
	"github.com/itbpos/restaurant-backend/pkg/config"
	"github.com/itbpos/restaurant-backend/pkg/db"
	"github.com/itbpos/restaurant-backend/pkg/logger"
	"github.com/itbpos/restaurant-backend/pkg/metrics"
	"github.com/itbpos/restaurant-backend/pkg/migrate"
	pkgnats "github.com/itbpos/restaurant-backend/pkg/nats"
	"github.com/itbpos/restaurant-backend/pkg/outbox"
	"github.com/itbpos/restaurant-backend/pkg/outbox/idempotency"
	"github.com/itbpos/restaurant-backend/pkg/redis"
)

const (
	lockTTL        = 30 * time.Second
	dedupeTTL      = 10 * time.Minute
	retentionEvery = time.Hour
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "kds-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "kds-worker"

	logg = logger.New(logger.Options{
		ServiceName: "kds-worker",
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

	natsClient, err := pkgnats.New(cfg.NATS)
	if err != nil {
		logg.Error(context.Background(), "failed to connect to nats", err)
		os.Exit(1)
	}
	defer func() {
		if err := natsClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing nats connection", err)
		}
	}()

	gormDB := dbClient.DB()
	outboxRepo := outbox.NewRepository(gormDB)
	outboxService := outbox.NewService(outboxRepo, logg)

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
	ordersService, err := orders.NewService(orders.NewRepository(gormDB), dbClient, outboxService, variantsService, tablesService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	kitchenService, err := kitchen.NewService(kitchen.NewRepository(gormDB), dbClient, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen service", err)
		os.Exit(1)
	}

	branches := refresh.NewBranchSource(gormDB)
	jobMetrics := metrics.NewJobMetrics(prometheus.DefaultRegisterer)

	kitchenJob, err := refresh.NewKitchenSnapshotJob(refresh.KitchenSnapshotJobParams{
		Logger:   logg,
		Branches: branches,
		Kitchen:  kitchenService,
		Store:    redisClient,
		TTL:      cfg.Refresh.SnapshotTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen snapshot job", err)
		os.Exit(1)
	}
	ordersJob, err := refresh.NewOrdersSnapshotJob(refresh.OrdersSnapshotJobParams{
		Logger:   logg,
		Branches: branches,
		Orders:   ordersService,
		Store:    redisClient,
		TTL:      cfg.Refresh.SnapshotTTL,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders snapshot job", err)
		os.Exit(1)
	}
	tablesJob, err := refresh.NewTablesWarmJob(refresh.TablesWarmJobParams{
		Logger:   logg,
		Branches: branches,
		Tables:   tablesService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create tables warm job", err)
		os.Exit(1)
	}
	retentionJob, err := refresh.NewOutboxRetentionJob(refresh.OutboxRetentionJobParams{
		Logger:     logg,
		DB:         dbClient,
		Repository: outboxRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create outbox retention job", err)
		os.Exit(1)
	}

	kitchenLoop, err := newRefreshLoop(logg, redisClient, jobMetrics, "kds-kitchen", cfg.Refresh.KitchenInterval, kitchenJob, tablesJob)
	if err != nil {
		logg.Error(context.Background(), "failed to create kitchen refresh loop", err)
		os.Exit(1)
	}
	ordersLoop, err := newRefreshLoop(logg, redisClient, jobMetrics, "kds-orders", cfg.Refresh.OrdersInterval, ordersJob)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders refresh loop", err)
		os.Exit(1)
	}

	guard, err := idempotency.NewManager(redisClient, dedupeTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create idempotency guard", err)
		os.Exit(1)
	}

	service, err := NewService(ServiceParams{
		Config:      cfg,
		Logger:      logg,
		Kitchen:     kitchenJob,
		Orders:      ordersJob,
		Loops:       []refreshRunner{kitchenLoop, ordersLoop},
		Subscriber:  natsSubscriber{client: natsClient},
		Idempotency: guard,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create kds worker", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "kds-worker",
	})
	logg.Info(ctx, "starting kds worker")

	retentionTicker, err := refresh.NewTicker(logg, retentionEvery, func(ctx context.Context) {
		if err := retentionJob.Run(ctx); err != nil {
			logg.Error(ctx, "outbox retention run failed", err)
		}
	})
	if err != nil {
		logg.Error(ctx, "failed to create retention ticker", err)
		os.Exit(1)
	}
	retentionTicker.Start(ctx)
	defer retentionTicker.Stop()

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "kds worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "kds worker shutting down gracefully")
}

func newRefreshLoop(logg *logger.Logger, redisClient *redis.Client, jobMetrics *metrics.JobMetrics, lockName string, interval time.Duration, jobs ...refresh.Job) (*refresh.Service, error) {
	lock, err := refresh.NewRedisLock(redisClient, redisClient.LockKey(lockName), lockTTL)
	if err != nil {
		return nil, err
	}
	return refresh.NewService(refresh.ServiceParams{
		Logger:   logg,
		Registry: refresh.NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  jobMetrics,
		Interval: interval,
	})
}
