package postgres

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func getStock(ctx context.Context, q querier, accountID string) (map[string]int, error) {
	rows, err := q.Query(ctx,
		`SELECT pack_type, quantity FROM store_stock WHERE account_id = $1 AND quantity > 0`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var packType string
		var qty int
		if err := rows.Scan(&packType, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock[packType] = qty
	}
	return stock, rows.Err()
}

// GetStockForUpdate reads the account's stock with row locks held
func (t *LedgerTx) GetStockForUpdate(ctx context.Context, accountID string) (map[string]int, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT pack_type, quantity FROM store_stock WHERE account_id = $1 AND quantity > 0 FOR UPDATE`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}
	defer rows.Close()

	stock := make(map[string]int)
	for rows.Next() {
		var packType string
		var qty int
		if err := rows.Scan(&packType, &qty); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		stock[packType] = qty
	}
	return stock, rows.Err()
}

// AdjustStock applies a delta to one (account, pack type) stock entry.
// Debits are guarded so the quantity never goes negative.
func (t *LedgerTx) AdjustStock(ctx context.Context, accountID, packType string, delta int) error {
	if delta >= 0 {
		_, err := t.tx.Exec(ctx,
			`INSERT INTO store_stock (account_id, pack_type, quantity)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (account_id, pack_type) DO UPDATE
			 SET quantity = store_stock.quantity + EXCLUDED.quantity`,
			accountID, packType, delta,
		)
		if err != nil {
			return fmt.Errorf("failed to credit stock: %w", err)
		}
		return nil
	}

	tag, err := t.tx.Exec(ctx,
		`UPDATE store_stock
		 SET quantity = quantity + $3
		 WHERE account_id = $1 AND pack_type = $2 AND quantity + $3 >= 0`,
		accountID, packType, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to debit stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInsufficientStock
	}
	return nil
}
