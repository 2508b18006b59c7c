package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func getOwnedCard(ctx context.Context, q querier, instanceID, lockClause string) (*domain.OwnedCard, error) {
	query := `
		SELECT instance_id, owner_id, card_id, created_at, locked, COALESCE(locked_by, '')
		FROM owned_cards
		WHERE instance_id = $1` + lockClause

	var c domain.OwnedCard
	err := q.QueryRow(ctx, query, instanceID).Scan(
		&c.InstanceID, &c.OwnerID, &c.CardID, &c.CreatedAt, &c.Locked, &c.LockedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get owned card: %w", err)
	}
	return &c, nil
}

func queryCards(ctx context.Context, q querier, query string, args ...any) ([]domain.OwnedCard, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.OwnedCard
	for rows.Next() {
		var c domain.OwnedCard
		if err := rows.Scan(&c.InstanceID, &c.OwnerID, &c.CardID, &c.CreatedAt, &c.Locked, &c.LockedBy); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

func inventoryCount(ctx context.Context, q querier, accountID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM owned_cards WHERE owner_id = $1`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count inventory: %w", err)
	}
	return n, nil
}

// AddCard inserts a new owned card instance
func (t *LedgerTx) AddCard(ctx context.Context, card domain.OwnedCard) error {
	query := `
		INSERT INTO owned_cards (instance_id, owner_id, card_id, created_at, locked)
		VALUES ($1, $2, $3, $4, FALSE)
	`
	_, err := t.tx.Exec(ctx, query, card.InstanceID, card.OwnerID, card.CardID, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add card: %w", err)
	}
	return nil
}

// GetCardForUpdate retrieves a card instance with a row lock held for the transaction
func (t *LedgerTx) GetCardForUpdate(ctx context.Context, instanceID string) (*domain.OwnedCard, error) {
	return getOwnedCard(ctx, t.tx, instanceID, ` FOR UPDATE`)
}

// RemoveCard deletes an unlocked card instance owned by ownerID.
// The ownership and lock checks are part of the DELETE itself so two
// concurrent removals resolve to one success and one domain error.
func (t *LedgerTx) RemoveCard(ctx context.Context, ownerID, instanceID string) error {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM owned_cards WHERE instance_id = $1 AND owner_id = $2 AND NOT locked`,
		instanceID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		card, err := getOwnedCard(ctx, t.tx, instanceID, "")
		if err != nil {
			return err // domain.ErrNotFound or query failure
		}
		if card.OwnerID != ownerID {
			return domain.ErrNotOwned
		}
		return domain.ErrLocked
	}
	return nil
}

// TransferCards reassigns the listed instances to toID and unlocks them
func (t *LedgerTx) TransferCards(ctx context.Context, instanceIDs []string, toID string) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE owned_cards SET owner_id = $2, locked = FALSE, locked_by = NULL, locked_at = NULL WHERE instance_id = ANY($1)`,
		instanceIDs, toID,
	)
	if err != nil {
		return fmt.Errorf("failed to transfer cards: %w", err)
	}
	return nil
}

// LockCards locks the owned, unlocked subset of instanceIDs in one statement
func (t *LedgerTx) LockCards(ctx context.Context, ownerID string, instanceIDs []string, lockedBy string) ([]string, error) {
	if len(instanceIDs) == 0 {
		return nil, nil
	}
	query := `
		UPDATE owned_cards
		SET locked = TRUE, locked_by = $3, locked_at = NOW()
		WHERE owner_id = $1 AND instance_id = ANY($2) AND NOT locked
		RETURNING instance_id
	`
	rows, err := t.tx.Query(ctx, query, ownerID, instanceIDs, lockedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to lock cards: %w", err)
	}
	defer rows.Close()

	var locked []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan locked id: %w", err)
		}
		locked = append(locked, id)
	}
	return locked, rows.Err()
}

// UnlockCards clears the lock on every listed instance
func (t *LedgerTx) UnlockCards(ctx context.Context, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}
	_, err := t.tx.Exec(ctx,
		`UPDATE owned_cards SET locked = FALSE, locked_by = NULL, locked_at = NULL WHERE instance_id = ANY($1)`,
		instanceIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to unlock cards: %w", err)
	}
	return nil
}

// InventoryCount counts the account's cards inside the transaction
func (t *LedgerTx) InventoryCount(ctx context.Context, accountID string) (int, error) {
	return inventoryCount(ctx, t.tx, accountID)
}
