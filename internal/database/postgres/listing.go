package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (*domain.Listing, error) {
	var l domain.Listing
	err := row.Scan(
		&l.ID, &l.SellerID, &l.Kind, &l.CardInstanceID, &l.PackType,
		&l.Quantity, &l.UnitPrice, &l.Status, &l.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}
	return &l, nil
}

func getListing(ctx context.Context, q querier, listingID int64, lockClause string) (*domain.Listing, error) {
	query := `
		SELECT listing_id, seller_id, kind, COALESCE(card_instance_id, ''), COALESCE(pack_type, ''),
		       COALESCE(quantity, 0), unit_price, status, created_at
		FROM listings
		WHERE listing_id = $1` + lockClause

	l, err := scanListing(q.QueryRow(ctx, query, listingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// CreateListing inserts a listing and fills in its assigned ID and timestamp
func (t *LedgerTx) CreateListing(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (seller_id, kind, card_instance_id, pack_type, quantity, unit_price, status, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, NOW())
		RETURNING listing_id, created_at
	`
	err := t.tx.QueryRow(ctx, query,
		listing.SellerID, listing.Kind, listing.CardInstanceID, listing.PackType,
		listing.Quantity, listing.UnitPrice, listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetListingForUpdate retrieves a listing with a row lock held for the transaction
func (t *LedgerTx) GetListingForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error) {
	l, err := getListing(ctx, t.tx, listingID, ` FOR UPDATE`)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

// UpdateListing writes a listing's status and quantity back
func (t *LedgerTx) UpdateListing(ctx context.Context, listing domain.Listing) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE listings SET status = $2, quantity = $3 WHERE listing_id = $1`,
		listing.ID, listing.Status, listing.Quantity,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
