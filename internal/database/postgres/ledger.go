package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// LedgerRepository implements repository.Ledger for PostgreSQL
type LedgerRepository struct {
	db *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// LedgerTx implements repository.LedgerTx
type LedgerTx struct {
	tx pgx.Tx
}

// BeginTx starts a new transaction
func (r *LedgerRepository) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &LedgerTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *LedgerTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *LedgerTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// querier abstracts pool vs transaction so read queries are written once.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// GetAccount retrieves an account by its ID
func (r *LedgerRepository) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	return getAccount(ctx, r.db, accountID, "")
}

// ListAccountIDs returns every registered account ID
func (r *LedgerRepository) ListAccountIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT account_id FROM accounts ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan account id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetOwnedCard retrieves a single card instance by ID
func (r *LedgerRepository) GetOwnedCard(ctx context.Context, instanceID string) (*domain.OwnedCard, error) {
	return getOwnedCard(ctx, r.db, instanceID, "")
}

// ListOwnedCards returns every card instance owned by the account
func (r *LedgerRepository) ListOwnedCards(ctx context.Context, accountID string) ([]domain.OwnedCard, error) {
	query := `
		SELECT instance_id, owner_id, card_id, created_at, locked, COALESCE(locked_by, '')
		FROM owned_cards
		WHERE owner_id = $1
		ORDER BY created_at DESC, instance_id
	`
	return queryCards(ctx, r.db, query, accountID)
}

// InventoryPage returns a newest-first page of the account's cards
func (r *LedgerRepository) InventoryPage(ctx context.Context, accountID string, limit, offset int) ([]domain.OwnedCard, error) {
	query := `
		SELECT instance_id, owner_id, card_id, created_at, locked, COALESCE(locked_by, '')
		FROM owned_cards
		WHERE owner_id = $1
		ORDER BY created_at DESC, instance_id
		LIMIT $2 OFFSET $3
	`
	return queryCards(ctx, r.db, query, accountID, limit, offset)
}

// InventoryCount returns the number of card instances the account owns
func (r *LedgerRepository) InventoryCount(ctx context.Context, accountID string) (int, error) {
	return inventoryCount(ctx, r.db, accountID)
}

// PackCount returns the number of unopened packs the account owns
func (r *LedgerRepository) PackCount(ctx context.Context, accountID string) (int, error) {
	return packCount(ctx, r.db, accountID)
}

// GetStock returns the account's store stock by pack type
func (r *LedgerRepository) GetStock(ctx context.Context, accountID string) (map[string]int, error) {
	return getStock(ctx, r.db, accountID)
}

// GetListing retrieves a listing by ID
func (r *LedgerRepository) GetListing(ctx context.Context, listingID int64) (*domain.Listing, error) {
	return getListing(ctx, r.db, listingID, "")
}

// BrowseListings returns active listings, newest first
func (r *LedgerRepository) BrowseListings(ctx context.Context, limit int) ([]domain.Listing, error) {
	query := `
		SELECT listing_id, seller_id, kind, COALESCE(card_instance_id, ''), COALESCE(pack_type, ''),
		       COALESCE(quantity, 0), unit_price, status, created_at
		FROM listings
		WHERE status = 'active'
		ORDER BY listing_id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to browse listings: %w", err)
	}
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}
	return listings, rows.Err()
}

// ListLockedBefore returns card instances whose lock predates cutoff
func (r *LedgerRepository) ListLockedBefore(ctx context.Context, cutoff time.Time) ([]domain.OwnedCard, error) {
	query := `
		SELECT instance_id, owner_id, card_id, created_at, locked, COALESCE(locked_by, '')
		FROM owned_cards
		WHERE locked AND locked_at < $1
	`
	return queryCards(ctx, r.db, query, cutoff)
}
