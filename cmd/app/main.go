package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/bootstrap"
	"github.com/cardtycoon/cardtycoon/internal/config"
	"github.com/cardtycoon/cardtycoon/internal/daily"
	"github.com/cardtycoon/cardtycoon/internal/database"
	"github.com/cardtycoon/cardtycoon/internal/database/postgres"
	"github.com/cardtycoon/cardtycoon/internal/economy"
	"github.com/cardtycoon/cardtycoon/internal/market"
	"github.com/cardtycoon/cardtycoon/internal/pack"
	"github.com/cardtycoon/cardtycoon/internal/scheduler"
	"github.com/cardtycoon/cardtycoon/internal/server"
	"github.com/cardtycoon/cardtycoon/internal/shop"
	"github.com/cardtycoon/cardtycoon/internal/trade"
	"github.com/cardtycoon/cardtycoon/internal/worker"
)

const (
	workerCount     = 4
	workerQueueSize = 64

	// tradeSweepInterval paces the background sweep of idle sessions
	// and orphaned card locks.
	tradeSweepInterval = time.Minute

	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrap.SetupLogger(cfg)
	slog.Info("Starting card tycoon", "port", cfg.Port, "seasonalActive", cfg.SeasonalActive)

	dbPool, err := database.NewPool(cfg.GetDBConnString(),
		database.DefaultMaxConnections, database.DefaultMaxIdleTime, database.DefaultMaxLifetime)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := bootstrap.RunMigrations(cfg.GetDBConnString()); err != nil {
		dbPool.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cat, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		dbPool.Close()
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	repo := postgres.NewLedgerRepository(dbPool)

	ctx := context.Background()
	if err := bootstrap.SyncCatalog(ctx, repo, cat); err != nil {
		dbPool.Close()
		return fmt.Errorf("failed to sync catalog: %w", err)
	}

	engine := pack.NewEngine(cat)
	tradeTimeout := time.Duration(cfg.TradeTimeoutSeconds) * time.Second

	shopService := shop.NewService(repo, cat, cfg.SeasonalActive)
	economyService := economy.NewService(repo, cat, engine, cfg.SeasonalActive)
	tradeService := trade.NewService(repo, tradeTimeout)
	marketService := market.NewService(repo, cat)
	dailyService := daily.NewService(repo, cat)

	// Locks tagged by sessions that died with a previous process have no
	// owner anymore; release them before serving traffic.
	if swept, err := tradeService.ReconcileOrphanedLocks(ctx, time.Now()); err != nil {
		slog.Warn("Startup lock reconciliation failed", "error", err)
	} else if swept > 0 {
		slog.Info("Released orphaned trade locks", "count", swept)
	}

	workerPool := worker.NewPool(workerCount, workerQueueSize)
	workerPool.Start()

	sched := scheduler.New(workerPool)
	sched.Schedule(tradeSweepInterval, &worker.TradeSweepJob{
		Trades:     tradeService,
		MaxLockAge: 2 * tradeTimeout,
	})

	srv := server.NewServer(cfg.Port, dbPool, server.Services{
		Shop:    shopService,
		Economy: economyService,
		Trade:   tradeService,
		Market:  marketService,
		Daily:   dailyService,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:    srv,
		Trades:    tradeService,
		Scheduler: sched,
		Workers:   workerPool,
		DB:        dbPool,
	})
	return nil
}
