package economy

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// GiftCard transfers a single unlocked card instance to another account.
func (s *service) GiftCard(ctx context.Context, fromID, toID, instanceID string) error {
	log := logger.FromContext(ctx)
	log.Info("GiftCard called", "from", fromID, "to", toID, "instanceID", instanceID)

	if fromID == toID {
		return domain.ErrSelfTrade
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	receiver, err := tx.GetAccountForUpdate(ctx, toID)
	if err != nil {
		return err
	}

	owned, err := tx.GetCardForUpdate(ctx, instanceID)
	if err != nil {
		return err
	}
	if owned.OwnerID != fromID {
		return domain.ErrNotOwned
	}
	if owned.Locked {
		return fmt.Errorf("card %s is held by %s: %w", instanceID, owned.LockedBy, domain.ErrLocked)
	}

	count, err := tx.InventoryCount(ctx, toID)
	if err != nil {
		return fmt.Errorf("failed to count inventory: %w", err)
	}
	if count+1 > receiver.Capacity {
		return fmt.Errorf("receiver inventory %d/%d: %w", count, receiver.Capacity, domain.ErrCapacityExceeded)
	}

	if err := tx.TransferCards(ctx, []string{instanceID}, toID); err != nil {
		return fmt.Errorf("failed to transfer card: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Card gifted", "from", fromID, "to", toID, "instanceID", instanceID)
	return nil
}

// GiftPacks moves up to quantity unopened packs of the given type to another
// account, oldest first. Returns how many packs moved; zero owned packs of
// that type is reported as ErrNotFound.
func (s *service) GiftPacks(ctx context.Context, fromID, toID, packType string, quantity int) (int, error) {
	log := logger.FromContext(ctx)
	log.Info("GiftPacks called", "from", fromID, "to", toID, "packType", packType, "quantity", quantity)

	if fromID == toID {
		return 0, domain.ErrSelfTrade
	}
	if quantity < 1 {
		return 0, domain.ErrInvalidQuantity
	}
	if _, ok := s.catalog.Pack(packType); !ok {
		return 0, fmt.Errorf("pack type %q: %w", packType, domain.ErrNotFound)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if _, err := tx.GetAccountForUpdate(ctx, toID); err != nil {
		return 0, err
	}

	moved, err := tx.RemoveOldestPacks(ctx, fromID, packType, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to take packs: %w", err)
	}
	if moved == 0 {
		return 0, fmt.Errorf("no %q packs owned: %w", packType, domain.ErrNotFound)
	}
	if err := tx.EnqueuePacks(ctx, toID, packType, moved); err != nil {
		return 0, fmt.Errorf("failed to grant packs: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Packs gifted", "from", fromID, "to", toID, "packType", packType, "moved", moved)
	return moved, nil
}
