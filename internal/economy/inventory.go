package economy

import (
	"context"
	"fmt"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// InventoryPage is one page of an account's cards, newest first.
type InventoryPage struct {
	Cards  []domain.InventoryCard `json:"cards"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// GetInventory lists an account's cards newest-first, paginated.
func (s *service) GetInventory(ctx context.Context, accountID string, limit, offset int) (*InventoryPage, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = domain.InventoryDefaultPageSize
	}
	if limit > domain.InventoryMaxPageSize {
		limit = domain.InventoryMaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.repo.InventoryCount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to count inventory: %w", err)
	}

	owned, err := s.repo.InventoryPage(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	page := &InventoryPage{
		Cards:  make([]domain.InventoryCard, 0, len(owned)),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
	for _, oc := range owned {
		card, ok := s.catalog.Card(oc.CardID)
		if !ok {
			continue
		}
		page.Cards = append(page.Cards, domain.InventoryCard{OwnedCard: oc, Card: card})
	}
	return page, nil
}

// GetCard looks up a single owned instance, joined with its definition.
func (s *service) GetCard(ctx context.Context, accountID, instanceID string) (*domain.InventoryCard, error) {
	owned, err := s.repo.GetOwnedCard(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if owned.OwnerID != accountID {
		return nil, domain.ErrNotOwned
	}
	card, ok := s.catalog.Card(owned.CardID)
	if !ok {
		return nil, fmt.Errorf("card definition %d: %w", owned.CardID, domain.ErrNotFound)
	}
	return &domain.InventoryCard{OwnedCard: *owned, Card: card}, nil
}
