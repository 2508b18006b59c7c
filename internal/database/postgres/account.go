package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

const pgUniqueViolation = "23505"

const accountColumns = `account_id, balance, shop_level, shelves, capacity, lifetime_profit, created_at, last_daily`

func getAccount(ctx context.Context, q querier, accountID, lockClause string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1` + lockClause

	var a domain.Account
	err := q.QueryRow(ctx, query, accountID).Scan(
		&a.ID, &a.Balance, &a.ShopLevel, &a.Shelves, &a.Capacity, &a.LifetimeProfit, &a.CreatedAt, &a.LastDaily,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotRegistered
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// CreateAccount inserts a new account row
func (t *LedgerTx) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, balance, shop_level, shelves, capacity, lifetime_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := t.tx.Exec(ctx, query,
		account.ID, account.Balance, account.ShopLevel, account.Shelves,
		account.Capacity, account.LifetimeProfit, account.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrAlreadyRegistered
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountForUpdate retrieves an account with a row lock held for the transaction
func (t *LedgerTx) GetAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return getAccount(ctx, t.tx, accountID, ` FOR UPDATE`)
}

// UpdateAccount writes account fields back
func (t *LedgerTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET balance = $2, shop_level = $3, shelves = $4, capacity = $5, lifetime_profit = $6, last_daily = $7
		WHERE account_id = $1
	`
	tag, err := t.tx.Exec(ctx, query,
		account.ID, account.Balance, account.ShopLevel, account.Shelves,
		account.Capacity, account.LifetimeProfit, account.LastDaily,
	)
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}

// AdjustBalance applies a delta to the account balance. The non-negative
// check and the write are a single guarded UPDATE.
func (t *LedgerTx) AdjustBalance(ctx context.Context, accountID string, delta int) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2
		WHERE account_id = $1 AND balance + $2 >= 0
	`
	tag, err := t.tx.Exec(ctx, query, accountID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing account from an overdraft
		var exists bool
		if err := t.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM accounts WHERE account_id = $1)`, accountID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check account: %w", err)
		}
		if !exists {
			return domain.ErrNotRegistered
		}
		return domain.ErrInsufficientFunds
	}
	return nil
}

// AddProfit increments the lifetime profit counter
func (t *LedgerTx) AddProfit(ctx context.Context, accountID string, delta int) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE accounts SET lifetime_profit = lifetime_profit + $2 WHERE account_id = $1`,
		accountID, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to add profit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotRegistered
	}
	return nil
}
