package trade

import (
	"context"
	"strings"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// ExpireStale times out open sessions idle past the timeout, releasing
// their locks. Returns how many sessions were closed.
func (s *service) ExpireStale(ctx context.Context) int {
	log := logger.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.timeout)
	expired := 0
	for id, sess := range s.sessions {
		if sess.state != StateOpen || sess.lastActivity.After(cutoff) {
			continue
		}
		if err := s.release(ctx, sess); err != nil {
			log.Error("Failed to release timed-out session", "sessionID", id, "error", err)
			continue
		}
		sess.state = StateTimedOut
		metrics.TradesResolved.WithLabelValues(metrics.OutcomeTimedOut).Inc()
		expired++
		log.Info("Trade session timed out", "sessionID", id)
	}

	// Closed sessions are kept briefly for status queries, then dropped.
	for id, sess := range s.sessions {
		if sess.state != StateOpen && sess.lastActivity.Before(cutoff.Add(-s.timeout)) {
			delete(s.sessions, id)
		}
	}
	return expired
}

// ReconcileOrphanedLocks unlocks cards whose trade lock predates cutoff and
// whose session is not live in this process. Covers locks left behind by a
// crash between locking and session resolution.
func (s *service) ReconcileOrphanedLocks(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx)

	stale, err := s.repo.ListLockedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	orphaned := make([]string, 0, len(stale))
	for _, card := range stale {
		sessionID, ok := strings.CutPrefix(card.LockedBy, lockOwnerPrefix)
		if !ok {
			// Not a trade lock; listings release their own locks.
			continue
		}
		if sess, live := s.sessions[sessionID]; live && sess.state == StateOpen {
			continue
		}
		orphaned = append(orphaned, card.InstanceID)
	}
	s.mu.Unlock()

	if len(orphaned) == 0 {
		return 0, nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.UnlockCards(ctx, orphaned); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	metrics.TradesResolved.WithLabelValues(metrics.OutcomeSwept).Inc()
	log.Info("Orphaned trade locks released", "count", len(orphaned))
	return len(orphaned), nil
}
