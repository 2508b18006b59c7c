package postgres

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// SyncCards upserts catalog card definitions into the cards table so owned
// instances have a referential anchor. The in-memory catalog stays the read
// path; this table exists for integrity and offline inspection.
func (r *LedgerRepository) SyncCards(ctx context.Context, cards []domain.Card) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO cards (card_id, name, rarity, collection, base_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (card_id) DO UPDATE
		SET name = EXCLUDED.name, rarity = EXCLUDED.rarity,
		    collection = EXCLUDED.collection, base_value = EXCLUDED.base_value
	`
	for _, c := range cards {
		if _, err := tx.Exec(ctx, query, c.ID, c.Name, c.Rarity, c.Collection, c.BaseValue); err != nil {
			return fmt.Errorf("failed to sync card %q: %w", c.Name, err)
		}
	}

	return tx.Commit(ctx)
}
