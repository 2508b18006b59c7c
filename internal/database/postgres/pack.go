package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func packCount(ctx context.Context, q querier, accountID string) (int, error) {
	var n int
	err := q.QueryRow(ctx, `SELECT COUNT(*) FROM owned_packs WHERE owner_id = $1`, accountID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count packs: %w", err)
	}
	return n, nil
}

// EnqueuePacks appends quantity packs of the given type to the account's queue
func (t *LedgerTx) EnqueuePacks(ctx context.Context, ownerID, packType string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	_, err := t.tx.Exec(ctx,
		`INSERT INTO owned_packs (owner_id, pack_type, created_at)
		 SELECT $1, $2, NOW() FROM generate_series(1, $3)`,
		ownerID, packType, quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue packs: %w", err)
	}
	return nil
}

// DequeueOldestPack removes and returns the oldest queued pack
func (t *LedgerTx) DequeueOldestPack(ctx context.Context, ownerID string) (*domain.OwnedPack, error) {
	query := `
		DELETE FROM owned_packs
		WHERE id = (
			SELECT id FROM owned_packs WHERE owner_id = $1 ORDER BY id ASC LIMIT 1 FOR UPDATE
		)
		RETURNING id, owner_id, pack_type, created_at
	`
	var p domain.OwnedPack
	err := t.tx.QueryRow(ctx, query, ownerID).Scan(&p.ID, &p.OwnerID, &p.PackType, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to dequeue pack: %w", err)
	}
	return &p, nil
}

// RemoveOldestPacks removes up to quantity packs of one type, oldest first
func (t *LedgerTx) RemoveOldestPacks(ctx context.Context, ownerID, packType string, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	query := `
		DELETE FROM owned_packs
		WHERE id IN (
			SELECT id FROM owned_packs
			WHERE owner_id = $1 AND pack_type = $2
			ORDER BY id ASC LIMIT $3
			FOR UPDATE
		)
	`
	tag, err := t.tx.Exec(ctx, query, ownerID, packType, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to remove packs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// PackCount counts the account's queued packs inside the transaction
func (t *LedgerTx) PackCount(ctx context.Context, accountID string) (int, error) {
	return packCount(ctx, t.tx, accountID)
}
