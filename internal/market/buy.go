package market

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// Buy purchases from an active listing. Card listings ignore the requested
// quantity and settle at the exact price; pack-lot purchases are clamped to
// the remaining quantity. Funds, goods and listing status move in one
// transaction; a second concurrent buy of the same card listing loses the
// row lock race and sees the listing closed.
func (s *service) Buy(ctx context.Context, buyerID string, listingID int64, requestedQuantity int) (*domain.Receipt, error) {
	log := logger.FromContext(ctx)
	log.Info("Buy called", "buyerID", buyerID, "listingID", listingID, "requestedQuantity", requestedQuantity)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	listing, err := tx.GetListingForUpdate(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != domain.ListingActive {
		return nil, fmt.Errorf("listing %d is %s: %w", listingID, listing.Status, domain.ErrNotFound)
	}
	if listing.SellerID == buyerID {
		return nil, domain.ErrSelfTrade
	}

	var receipt *domain.Receipt
	switch listing.Kind {
	case domain.ListingCard:
		receipt, err = s.buyCard(ctx, tx, buyerID, listing)
	case domain.ListingPackLot:
		receipt, err = s.buyPackLot(ctx, tx, buyerID, listing, requestedQuantity)
	default:
		err = fmt.Errorf("listing %d has unknown kind %q: %w", listingID, listing.Kind, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.MoneySpent.WithLabelValues("market").Add(float64(receipt.TotalPaid))
	metrics.MoneyEarned.WithLabelValues("market").Add(float64(receipt.TotalPaid))
	if receipt.Kind == domain.ListingPackLot {
		metrics.PacksBought.WithLabelValues(listing.PackType, "market").Add(float64(receipt.Quantity))
	}

	log.Info("Listing purchased", "listingID", listingID, "buyerID", buyerID,
		"quantity", receipt.Quantity, "totalPaid", receipt.TotalPaid)
	return receipt, nil
}

func (s *service) buyCard(ctx context.Context, tx repository.LedgerTx, buyerID string, listing *domain.Listing) (*domain.Receipt, error) {
	buyer, err := tx.GetAccountForUpdate(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	count, err := tx.InventoryCount(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}
	if count+1 > buyer.Capacity {
		return nil, fmt.Errorf("buyer inventory %d/%d: %w", count, buyer.Capacity, domain.ErrCapacityExceeded)
	}

	if err := s.settle(ctx, tx, buyerID, listing.SellerID, listing.UnitPrice); err != nil {
		return nil, err
	}
	if err := tx.TransferCards(ctx, []string{listing.CardInstanceID}, buyerID); err != nil {
		return nil, fmt.Errorf("failed to transfer card: %w", err)
	}

	listing.Status = domain.ListingSold
	if err := tx.UpdateListing(ctx, *listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	metrics.ListingsResolved.WithLabelValues(string(domain.ListingCard), "sold").Inc()
	return &domain.Receipt{
		ListingID: listing.ID,
		Kind:      domain.ListingCard,
		Quantity:  1,
		TotalPaid: listing.UnitPrice,
	}, nil
}

func (s *service) buyPackLot(ctx context.Context, tx repository.LedgerTx, buyerID string, listing *domain.Listing, requestedQuantity int) (*domain.Receipt, error) {
	if requestedQuantity < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	quantity := requestedQuantity
	if quantity > listing.Quantity {
		quantity = listing.Quantity
	}
	total := listing.UnitPrice * quantity

	if err := s.settle(ctx, tx, buyerID, listing.SellerID, total); err != nil {
		return nil, err
	}
	if err := tx.EnqueuePacks(ctx, buyerID, listing.PackType, quantity); err != nil {
		return nil, fmt.Errorf("failed to grant packs: %w", err)
	}

	listing.Quantity -= quantity
	if listing.Quantity == 0 {
		listing.Status = domain.ListingSold
		metrics.ListingsResolved.WithLabelValues(string(domain.ListingPackLot), "sold").Inc()
	}
	if err := tx.UpdateListing(ctx, *listing); err != nil {
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}

	return &domain.Receipt{
		ListingID: listing.ID,
		Kind:      domain.ListingPackLot,
		Quantity:  quantity,
		TotalPaid: total,
	}, nil
}

// settle moves amount from buyer to seller and records seller profit.
func (s *service) settle(ctx context.Context, tx repository.LedgerTx, buyerID, sellerID string, amount int) error {
	if err := tx.AdjustBalance(ctx, buyerID, -amount); err != nil {
		return err
	}
	if err := tx.AdjustBalance(ctx, sellerID, amount); err != nil {
		return fmt.Errorf("failed to credit seller: %w", err)
	}
	if err := tx.AddProfit(ctx, sellerID, amount); err != nil {
		return fmt.Errorf("failed to record profit: %w", err)
	}
	return nil
}

// Remove withdraws the seller's own active listing, reversing its escrow:
// a card listing unlocks the instance, a pack-lot listing restores stock.
func (s *service) Remove(ctx context.Context, sellerID string, listingID int64) error {
	log := logger.FromContext(ctx)
	log.Info("Remove called", "sellerID", sellerID, "listingID", listingID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	listing, err := tx.GetListingForUpdate(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.SellerID != sellerID {
		return domain.ErrNotOwned
	}
	if listing.Status != domain.ListingActive {
		return fmt.Errorf("listing %d is %s: %w", listingID, listing.Status, domain.ErrNotFound)
	}

	switch listing.Kind {
	case domain.ListingCard:
		if err := tx.UnlockCards(ctx, []string{listing.CardInstanceID}); err != nil {
			return fmt.Errorf("failed to unlock card: %w", err)
		}
	case domain.ListingPackLot:
		if err := tx.AdjustStock(ctx, sellerID, listing.PackType, listing.Quantity); err != nil {
			return fmt.Errorf("failed to restore stock: %w", err)
		}
	}

	listing.Status = domain.ListingRemoved
	if err := tx.UpdateListing(ctx, *listing); err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.ListingsResolved.WithLabelValues(string(listing.Kind), "removed").Inc()
	log.Info("Listing removed", "listingID", listingID, "sellerID", sellerID)
	return nil
}
