package economy

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// SellCard destroys an owned card instance and credits the wallet with its
// rarity-adjusted sell price. Locked instances are rejected; the price also
// counts toward lifetime profit.
func (s *service) SellCard(ctx context.Context, accountID, instanceID string) (int, error) {
	log := logger.FromContext(ctx)
	log.Info("SellCard called", "accountID", accountID, "instanceID", instanceID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	owned, err := tx.GetCardForUpdate(ctx, instanceID)
	if err != nil {
		return 0, err
	}
	if owned.OwnerID != accountID {
		return 0, domain.ErrNotOwned
	}
	if owned.Locked {
		return 0, fmt.Errorf("card %s is held by %s: %w", instanceID, owned.LockedBy, domain.ErrLocked)
	}

	card, ok := s.catalog.Card(owned.CardID)
	if !ok {
		return 0, fmt.Errorf("card definition %d: %w", owned.CardID, domain.ErrNotFound)
	}
	price := s.catalog.SellPrice(card)

	if err := tx.RemoveCard(ctx, accountID, instanceID); err != nil {
		return 0, err
	}
	if err := tx.AdjustBalance(ctx, accountID, price); err != nil {
		return 0, fmt.Errorf("failed to credit sale: %w", err)
	}
	if err := tx.AddProfit(ctx, accountID, price); err != nil {
		return 0, fmt.Errorf("failed to record profit: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.CardsSold.WithLabelValues(string(card.Rarity)).Inc()
	metrics.MoneyEarned.WithLabelValues("sell").Add(float64(price))

	log.Info("Card sold", "accountID", accountID, "card", card.Name, "price", price)
	return price, nil
}
