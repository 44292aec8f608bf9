// Package main is the entry point of the reward engine worker.
//
// The engine consumes developer activities, scores them with pluggable
// strategies, settles rewards through the append-only ledger into user
// wallets, and runs the downstream observers (badges, Redis wallet
// projection) plus the periodic reconciliation job.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/forgeline/reward-engine/config"
	"github.com/forgeline/reward-engine/internal/application/command"
	"github.com/forgeline/reward-engine/internal/application/eventhandler"
	"github.com/forgeline/reward-engine/internal/domain/ledger"
	"github.com/forgeline/reward-engine/internal/domain/scoring"
	"github.com/forgeline/reward-engine/internal/domain/user"
	"github.com/forgeline/reward-engine/internal/infrastructure/messaging"
	"github.com/forgeline/reward-engine/internal/infrastructure/persistence/memory"
	"github.com/forgeline/reward-engine/internal/infrastructure/persistence/postgres"
	"github.com/forgeline/reward-engine/internal/infrastructure/persistence/redis"
	"github.com/forgeline/reward-engine/internal/infrastructure/scheduler"
	"github.com/forgeline/reward-engine/internal/infrastructure/scheduler/jobs"
	"github.com/forgeline/reward-engine/internal/interface/stream"
	"github.com/forgeline/reward-engine/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting reward engine",
		"env", string(cfg.App.Environment),
		"version", cfg.App.Version,
		"debug", cfg.App.Debug,
	)

	appLog := logger.New(logger.Options{
		Output: os.Stdout,
		Level:  logger.ParseLevel(cfg.Observability.LogLevel),
	})

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORES (Postgres, or in-memory when disabled)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		userStore   user.Store
		ledgerStore ledger.Store
	)

	if cfg.Database.Disabled {
		log.Info("database disabled, using in-memory stores")
		userStore = memory.NewUserStore()
		ledgerStore = memory.NewLedgerStore()
	} else {
		log.Info("connecting to database...")
		dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		log.Info("checking database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Info("database schema is up to date")

		userStore = postgres.NewUserRepository(dbConn)
		ledgerStore = postgres.NewLedgerRepository(dbConn)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	busConfig := messaging.DefaultInMemoryEventBusConfig()
	busConfig.Logger = log
	bus := messaging.NewInMemoryEventBus(busConfig)
	defer func() {
		log.Info("closing event bus...")
		_ = bus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. OBSERVERS
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Features.IsEnabled(config.FeatureBadgeAwards, nil) {
		observer := eventhandler.NewGamificationObserver(bus, log, eventhandler.GamificationConfig{
			CoinBadgeThreshold: cfg.Engine.CoinBadgeThreshold,
		})
		if err := observer.Register(bus); err != nil {
			return fmt.Errorf("failed to register gamification observer: %w", err)
		}
		log.Info("gamification observer registered")
	}

	if cfg.Features.IsEnabled(config.FeatureWalletProjection, nil) && !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

		client, err := redis.NewClient(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, wallet projection disabled", "error", err)
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = client.Close()
			}()

			cache := redis.NewWalletCache(client, redis.WalletCacheConfig{TTL: cfg.Engine.WalletCacheTTL})
			projection := eventhandler.NewWalletProjection(cache, log)
			if err := projection.Register(bus); err != nil {
				return fmt.Errorf("failed to register wallet projection: %w", err)
			}
			log.Info("wallet projection registered")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. SCORING AND THE ACTIVITY PIPELINE
	// ─────────────────────────────────────────────────────────────────────────
	registry := scoring.DefaultRegistry()

	var modifiers []scoring.Modifier
	if cfg.Features.IsEnabled(config.FeatureWeekendBonus, nil) {
		modifiers = append(modifiers, scoring.NewWeekendBonus(cfg.Engine.WeekendMultiplier, nil))
	}
	pipeline := scoring.NewPipeline(modifiers...)

	handler := command.NewProcessActivityHandler(
		userStore,
		ledgerStore,
		registry,
		pipeline,
		bus,
		appLog,
		command.ProcessActivityHandlerConfig{LevelUpBonus: cfg.Engine.LevelUpBonus},
	)

	// Activities arrive as newline-delimited JSON on stdin. The consumer
	// drains the stream until EOF or shutdown.
	consumerConfig := stream.DefaultConsumerConfig()
	consumerConfig.Logger = log
	consumer := stream.NewConsumer(handler, consumerConfig)
	go func() {
		processed, err := consumer.Run(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("activity consumer stopped", "processed", processed, "error", err)
			return
		}
		log.Info("activity consumer stopped", "processed", processed)
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 7. SCHEDULER
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled && cfg.Features.IsEnabled(config.FeatureReconciliation, nil) {
		schedConfig := scheduler.DefaultSchedulerConfig()
		schedConfig.Logger = log
		sched := scheduler.NewScheduler(schedConfig)

		reconcile := jobs.NewReconcileWalletsJob(userStore, ledgerStore, bus, log,
			jobs.DefaultReconcileWalletsConfig())
		if err := sched.Register(reconcile, scheduler.NewIntervalSchedule(cfg.Scheduler.ReconcileInterval)); err != nil {
			return fmt.Errorf("failed to register reconciliation job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("reward engine is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	sig := <-sigCh
	log.Info("received shutdown signal", "signal", sig.String())
	log.Info("starting graceful shutdown...", "timeout", cfg.App.ShutdownTimeout.String())

	log.Info("shutdown completed successfully")
	return nil
}

// setupLogger configures structured logging for the process.
func setupLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.App.Debug {
		opts.Level = slog.LevelDebug
	}

	var handler slog.Handler
	if cfg.Observability.LogFormat == "json" || cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}
