package worker

import (
	"context"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/logger"
)

// TradeSweeper is the slice of the trade service the sweep job needs.
type TradeSweeper interface {
	ExpireStale(ctx context.Context) int
	ReconcileOrphanedLocks(ctx context.Context, cutoff time.Time) (int, error)
}

// TradeSweepJob times out idle trade sessions and releases locks whose
// session died without resolving, e.g. across a restart.
type TradeSweepJob struct {
	Trades TradeSweeper
	// MaxLockAge bounds how fresh a lock may be before the sweep will
	// consider it orphaned. Should comfortably exceed the session timeout.
	MaxLockAge time.Duration
}

func (j *TradeSweepJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)

	expired := j.Trades.ExpireStale(ctx)
	swept, err := j.Trades.ReconcileOrphanedLocks(ctx, time.Now().Add(-j.MaxLockAge))
	if err != nil {
		return err
	}
	if expired > 0 || swept > 0 {
		log.Info("Trade sweep completed", "expiredSessions", expired, "sweptLocks", swept)
	}
	return nil
}
