package bootstrap

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtycoon/cardtycoon/internal/scheduler"
	"github.com/cardtycoon/cardtycoon/internal/server"
	"github.com/cardtycoon/cardtycoon/internal/trade"
	"github.com/cardtycoon/cardtycoon/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server    *server.Server
	Trades    trade.Service
	Scheduler *scheduler.Scheduler
	Workers   *worker.Pool
	DB        *pgxpool.Pool
}

// GracefulShutdown stops application components in order:
//  1. HTTP server (stop accepting new requests)
//  2. Trade service (cancel open sessions so no card locks survive)
//  3. Scheduler and worker pool (drain queued jobs)
//  4. Database pool
//
// Errors during shutdown are logged but do not stop the sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info("Shutting down server...")

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	if components.Trades != nil {
		if err := components.Trades.Shutdown(ctx); err != nil {
			slog.Error("Trade service shutdown failed", "error", err)
		}
	}

	if components.Scheduler != nil {
		components.Scheduler.Stop()
	}
	if components.Workers != nil {
		components.Workers.Stop()
	}

	if components.DB != nil {
		components.DB.Close()
	}

	slog.Info("Server stopped")
}
