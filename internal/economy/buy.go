package economy

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// BuyPacks debits price x quantity and enqueues that many unopened packs.
// Event-only packs are purchasable only while the seasonal event is active.
func (s *service) BuyPacks(ctx context.Context, accountID, packType string, quantity int) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("BuyPacks called", "accountID", accountID, "packType", packType, "quantity", quantity)

	def, err := s.purchasablePack(packType)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	cost := def.Price * quantity

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.AdjustBalance(ctx, accountID, -cost); err != nil {
		return nil, err
	}
	if err := tx.EnqueuePacks(ctx, accountID, packType, quantity); err != nil {
		return nil, fmt.Errorf("failed to enqueue packs: %w", err)
	}
	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.PacksBought.WithLabelValues(packType, "shop").Add(float64(quantity))
	metrics.MoneySpent.WithLabelValues("packs").Add(float64(cost))

	log.Info("Packs purchased", "accountID", accountID, "packType", packType, "quantity", quantity, "cost", cost)
	return account, nil
}

// BuyStock debits price x quantity and credits the account's store stock,
// for later automated daily sales or pack-lot listings.
func (s *service) BuyStock(ctx context.Context, accountID, packType string, quantity int) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("BuyStock called", "accountID", accountID, "packType", packType, "quantity", quantity)

	def, err := s.purchasablePack(packType)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	cost := def.Price * quantity

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.AdjustBalance(ctx, accountID, -cost); err != nil {
		return nil, err
	}
	if err := tx.AdjustStock(ctx, accountID, packType, quantity); err != nil {
		return nil, fmt.Errorf("failed to credit stock: %w", err)
	}
	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.MoneySpent.WithLabelValues("stock").Add(float64(cost))

	log.Info("Stock purchased", "accountID", accountID, "packType", packType, "quantity", quantity, "cost", cost)
	return account, nil
}

func (s *service) purchasablePack(packType string) (domain.PackDefinition, error) {
	def, ok := s.catalog.Pack(packType)
	if !ok {
		return domain.PackDefinition{}, fmt.Errorf("pack type %q: %w", packType, domain.ErrNotFound)
	}
	if def.EventOnly && !s.seasonalActive {
		return domain.PackDefinition{}, fmt.Errorf("pack type %q is event-only: %w", packType, domain.ErrNotFound)
	}
	return def, nil
}
