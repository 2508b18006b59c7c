// Package trade implements the two-party trade session protocol: offers
// lock cards in the ledger, mutual confirmation swaps them atomically,
// cancel or timeout releases every lock.
package trade

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// DefaultTimeout closes sessions with no activity for this long.
const DefaultTimeout = 5 * time.Minute

// lockOwnerPrefix tags ledger locks held by trade sessions.
const lockOwnerPrefix = "trade:"

// State is a session's lifecycle state. Open is the only state that accepts
// offers or confirmations.
type State string

const (
	StateOpen      State = "open"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateTimedOut  State = "timed_out"
)

// Session is a snapshot of one trade session.
type Session struct {
	ID           string              `json:"id"`
	Participants [2]string           `json:"participants"`
	Offers       map[string][]string `json:"offers"`
	Confirmed    map[string]bool     `json:"confirmed"`
	State        State               `json:"state"`
	CreatedAt    time.Time           `json:"created_at"`
	LastActivity time.Time           `json:"last_activity"`
}

// Service defines the interface for trade operations
type Service interface {
	Start(ctx context.Context, initiatorID, partnerID string) (*Session, error)
	AddOffer(ctx context.Context, sessionID, who string, instanceIDs []string) ([]string, error)
	Confirm(ctx context.Context, sessionID, who string) (*Session, error)
	Cancel(ctx context.Context, sessionID, who string) error
	GetSession(ctx context.Context, sessionID, who string) (*Session, error)

	// ExpireStale times out idle sessions; run periodically.
	ExpireStale(ctx context.Context) int
	// ReconcileOrphanedLocks releases trade locks with no live session,
	// e.g. after a restart. cutoff bounds how fresh a lock may be swept.
	ReconcileOrphanedLocks(ctx context.Context, cutoff time.Time) (int, error)
	Shutdown(ctx context.Context) error
}

// session is the live, mutable form behind a Session snapshot.
type session struct {
	id           string
	participants [2]string
	offers       map[string][]string
	confirmed    map[string]bool
	state        State
	createdAt    time.Time
	lastActivity time.Time
}

func (s *session) isParticipant(who string) bool {
	return who == s.participants[0] || who == s.participants[1]
}

func (s *session) other(who string) string {
	if who == s.participants[0] {
		return s.participants[1]
	}
	return s.participants[0]
}

func (s *session) allOffered() []string {
	out := make([]string, 0, len(s.offers[s.participants[0]])+len(s.offers[s.participants[1]]))
	out = append(out, s.offers[s.participants[0]]...)
	out = append(out, s.offers[s.participants[1]]...)
	return out
}

func (s *session) snapshot() *Session {
	offers := make(map[string][]string, len(s.offers))
	for who, ids := range s.offers {
		offers[who] = append([]string(nil), ids...)
	}
	confirmed := make(map[string]bool, len(s.confirmed))
	for who, c := range s.confirmed {
		confirmed[who] = c
	}
	return &Session{
		ID:           s.id,
		Participants: s.participants,
		Offers:       offers,
		Confirmed:    confirmed,
		State:        s.state,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}
}

type service struct {
	repo    repository.Ledger
	timeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewService creates a trade service. timeout <= 0 uses DefaultTimeout.
func NewService(repo repository.Ledger, timeout time.Duration) Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &service{
		repo:     repo,
		timeout:  timeout,
		sessions: make(map[string]*session),
	}
}

// Start opens a session between two distinct registered accounts.
func (s *service) Start(ctx context.Context, initiatorID, partnerID string) (*Session, error) {
	log := logger.FromContext(ctx)
	log.Info("Trade start called", "initiator", initiatorID, "partner", partnerID)

	if initiatorID == partnerID {
		return nil, domain.ErrSelfTrade
	}
	if _, err := s.repo.GetAccount(ctx, initiatorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetAccount(ctx, partnerID); err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &session{
		id:           uuid.New().String(),
		participants: [2]string{initiatorID, partnerID},
		offers:       map[string][]string{initiatorID: {}, partnerID: {}},
		confirmed:    map[string]bool{initiatorID: false, partnerID: false},
		state:        StateOpen,
		createdAt:    now,
		lastActivity: now,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Info("Trade session opened", "sessionID", sess.id)
	return sess.snapshot(), nil
}

// AddOffer locks the caller's valid, unlocked instances and appends them to
// the caller's offer list. Changing an offer resets the caller's
// confirmation: the other side must re-confirm what it now sees.
// Returns the subset that was actually locked.
func (s *service) AddOffer(ctx context.Context, sessionID, who string, instanceIDs []string) ([]string, error) {
	log := logger.FromContext(ctx)
	log.Info("Trade offer called", "sessionID", sessionID, "who", who, "count", len(instanceIDs))

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession(sessionID, who)
	if err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	locked, err := tx.LockCards(ctx, who, instanceIDs, lockOwnerPrefix+sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cards: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.offers[who] = append(sess.offers[who], locked...)
	sess.confirmed[who] = false
	sess.lastActivity = time.Now()

	log.Info("Trade offer added", "sessionID", sessionID, "who", who, "locked", len(locked))
	return locked, nil
}

// Confirm records the caller's agreement. When both sides have confirmed the
// current offers, all offered cards swap owners in one transaction and the
// session completes.
func (s *service) Confirm(ctx context.Context, sessionID, who string) (*Session, error) {
	log := logger.FromContext(ctx)
	log.Info("Trade confirm called", "sessionID", sessionID, "who", who)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession(sessionID, who)
	if err != nil {
		return nil, err
	}

	sess.confirmed[who] = true
	sess.lastActivity = time.Now()

	other := sess.other(who)
	if !sess.confirmed[other] {
		return sess.snapshot(), nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.TransferCards(ctx, sess.offers[who], other); err != nil {
		return nil, fmt.Errorf("failed to transfer cards: %w", err)
	}
	if err := tx.TransferCards(ctx, sess.offers[other], who); err != nil {
		return nil, fmt.Errorf("failed to transfer cards: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	sess.state = StateCompleted
	metrics.TradesResolved.WithLabelValues(metrics.OutcomeCompleted).Inc()

	log.Info("Trade completed", "sessionID", sessionID,
		"fromA", len(sess.offers[sess.participants[0]]), "fromB", len(sess.offers[sess.participants[1]]))
	return sess.snapshot(), nil
}

// Cancel closes the session and releases every offered card.
func (s *service) Cancel(ctx context.Context, sessionID, who string) error {
	log := logger.FromContext(ctx)
	log.Info("Trade cancel called", "sessionID", sessionID, "who", who)

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.openSession(sessionID, who)
	if err != nil {
		return err
	}

	if err := s.release(ctx, sess); err != nil {
		return err
	}
	sess.state = StateCancelled
	metrics.TradesResolved.WithLabelValues(metrics.OutcomeCancelled).Inc()

	log.Info("Trade cancelled", "sessionID", sessionID)
	return nil
}

// GetSession returns a snapshot, participants only.
func (s *service) GetSession(ctx context.Context, sessionID, who string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if !sess.isParticipant(who) {
		return nil, domain.ErrUnauthorized
	}
	return sess.snapshot(), nil
}

// openSession fetches a session and validates the caller may mutate it.
// Caller holds s.mu.
func (s *service) openSession(sessionID, who string) (*session, error) {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrNotFound)
	}
	if !sess.isParticipant(who) {
		return nil, domain.ErrUnauthorized
	}
	if sess.state != StateOpen {
		return nil, fmt.Errorf("session %s is %s: %w", sessionID, sess.state, domain.ErrSessionClosed)
	}
	return sess, nil
}

// release unlocks every offered card. Caller holds s.mu.
func (s *service) release(ctx context.Context, sess *session) error {
	offered := sess.allOffered()
	if len(offered) == 0 {
		return nil
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.UnlockCards(ctx, offered); err != nil {
		return fmt.Errorf("failed to unlock cards: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Shutdown cancels every open session so no locks outlive the process.
func (s *service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sess := range s.sessions {
		if sess.state != StateOpen {
			continue
		}
		if err := s.release(ctx, sess); err != nil {
			return err
		}
		sess.state = StateCancelled
	}
	return nil
}
