package economy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

func newInstanceID() string {
	return uuid.New().String()
}

// OpenPack dequeues the account's oldest pack, rolls it and appends the
// drawn cards to the inventory, all in one transaction. If the projected
// inventory would exceed capacity the transaction rolls back, leaving the
// pack at the head of the queue and no other state changed.
func (s *service) OpenPack(ctx context.Context, accountID string) (*OpenResult, error) {
	log := logger.FromContext(ctx)
	log.Info("OpenPack called", "accountID", accountID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	queued, err := tx.DequeueOldestPack(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("no packs to open: %w", err)
	}
	def, ok := s.catalog.Pack(queued.PackType)
	if !ok {
		return nil, fmt.Errorf("pack type %q: %w", queued.PackType, domain.ErrNotFound)
	}

	count, err := tx.InventoryCount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}
	if count+def.MinCards > account.Capacity {
		return nil, fmt.Errorf("inventory %d/%d cannot fit %d more cards: %w",
			count, account.Capacity, def.MinCards, domain.ErrCapacityExceeded)
	}

	opening, err := s.engine.Open(ctx, queued.PackType, s.seasonalActive)
	if err != nil {
		return nil, fmt.Errorf("failed to roll pack: %w", err)
	}
	drawn, err := opening.Rest()
	if err != nil {
		return nil, fmt.Errorf("failed to roll pack: %w", err)
	}

	now := time.Now()
	result := &OpenResult{
		PackType: queued.PackType,
		Cards:    make([]domain.InventoryCard, 0, len(drawn)),
	}
	for _, card := range drawn {
		owned := domain.OwnedCard{
			InstanceID: s.newInstanceID(),
			OwnerID:    accountID,
			CardID:     card.ID,
			CreatedAt:  now,
		}
		if err := tx.AddCard(ctx, owned); err != nil {
			return nil, fmt.Errorf("failed to add card: %w", err)
		}
		result.Cards = append(result.Cards, domain.InventoryCard{OwnedCard: owned, Card: card})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.PacksOpened.WithLabelValues(queued.PackType).Inc()
	for _, card := range drawn {
		metrics.CardsDrawn.WithLabelValues(string(card.Rarity)).Inc()
	}

	log.Info("Pack opened", "accountID", accountID, "packType", queued.PackType, "cards", len(drawn))
	return result, nil
}
