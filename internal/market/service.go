// Package market implements the listing-based marketplace: card listings
// lock their instance, pack-lot listings escrow store stock, purchases
// settle funds and goods in one transaction.
package market

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// lockOwnerPrefix tags ledger locks held by active card listings.
const lockOwnerPrefix = "listing:"

// Service defines the interface for marketplace operations
type Service interface {
	ListCard(ctx context.Context, sellerID, instanceID string, price int) (*domain.Listing, error)
	ListPackLot(ctx context.Context, sellerID, packType string, quantity, unitPrice int) (*domain.Listing, error)
	Buy(ctx context.Context, buyerID string, listingID int64, requestedQuantity int) (*domain.Receipt, error)
	Remove(ctx context.Context, sellerID string, listingID int64) error
	Browse(ctx context.Context) ([]domain.Listing, error)
}

type service struct {
	repo    repository.Ledger
	catalog *catalog.Catalog
}

// NewService creates a marketplace service.
func NewService(repo repository.Ledger, cat *catalog.Catalog) Service {
	return &service{repo: repo, catalog: cat}
}

// ListCard puts one owned, unlocked card up for sale at a fixed price.
// The instance stays locked for the listing's lifetime.
func (s *service) ListCard(ctx context.Context, sellerID, instanceID string, price int) (*domain.Listing, error) {
	log := logger.FromContext(ctx)
	log.Info("ListCard called", "sellerID", sellerID, "instanceID", instanceID, "price", price)

	if price < 1 {
		return nil, domain.ErrInvalidPrice
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	owned, err := tx.GetCardForUpdate(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if owned.OwnerID != sellerID {
		return nil, domain.ErrNotOwned
	}
	if owned.Locked {
		return nil, fmt.Errorf("card %s is held by %s: %w", instanceID, owned.LockedBy, domain.ErrLocked)
	}

	listing := &domain.Listing{
		SellerID:       sellerID,
		Kind:           domain.ListingCard,
		CardInstanceID: instanceID,
		Quantity:       1,
		UnitPrice:      price,
		Status:         domain.ListingActive,
	}
	if err := tx.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	lockedBy := lockOwnerPrefix + strconv.FormatInt(listing.ID, 10)
	locked, err := tx.LockCards(ctx, sellerID, []string{instanceID}, lockedBy)
	if err != nil {
		return nil, fmt.Errorf("failed to lock card: %w", err)
	}
	if len(locked) != 1 {
		return nil, fmt.Errorf("card %s: %w", instanceID, domain.ErrLocked)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.ListingsCreated.WithLabelValues(string(domain.ListingCard)).Inc()
	log.Info("Card listed", "listingID", listing.ID, "sellerID", sellerID, "price", price)
	return listing, nil
}

// ListPackLot puts quantity packs from the seller's store stock up for sale
// at a fixed unit price. The quantity is debited from stock immediately:
// escrowed, so it cannot be double-sold by the daily cycle.
func (s *service) ListPackLot(ctx context.Context, sellerID, packType string, quantity, unitPrice int) (*domain.Listing, error) {
	log := logger.FromContext(ctx)
	log.Info("ListPackLot called", "sellerID", sellerID, "packType", packType, "quantity", quantity, "unitPrice", unitPrice)

	if quantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	if unitPrice < 1 {
		return nil, domain.ErrInvalidPrice
	}
	if _, ok := s.catalog.Pack(packType); !ok {
		return nil, fmt.Errorf("pack type %q: %w", packType, domain.ErrNotFound)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	if err := tx.AdjustStock(ctx, sellerID, packType, -quantity); err != nil {
		return nil, err
	}

	listing := &domain.Listing{
		SellerID:  sellerID,
		Kind:      domain.ListingPackLot,
		PackType:  packType,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Status:    domain.ListingActive,
	}
	if err := tx.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.ListingsCreated.WithLabelValues(string(domain.ListingPackLot)).Inc()
	log.Info("Pack lot listed", "listingID", listing.ID, "sellerID", sellerID, "quantity", quantity)
	return listing, nil
}

// Browse returns active listings, newest first, bounded to one page.
func (s *service) Browse(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.BrowseListings(ctx, domain.MarketBrowsePageSize)
}
