// Package economy implements pack purchase and opening, selling, gifting
// and store stock against the ledger.
package economy

import (
	"context"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/pack"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// Service defines the interface for economy operations
type Service interface {
	// Pack lifecycle
	BuyPacks(ctx context.Context, accountID, packType string, quantity int) (*domain.Account, error)
	OpenPack(ctx context.Context, accountID string) (*OpenResult, error)

	// Inventory
	GetInventory(ctx context.Context, accountID string, limit, offset int) (*InventoryPage, error)
	GetCard(ctx context.Context, accountID, instanceID string) (*domain.InventoryCard, error)
	SellCard(ctx context.Context, accountID, instanceID string) (int, error)

	// Gifts
	GiftCard(ctx context.Context, fromID, toID, instanceID string) error
	GiftPacks(ctx context.Context, fromID, toID, packType string, quantity int) (int, error)

	// Store stock
	BuyStock(ctx context.Context, accountID, packType string, quantity int) (*domain.Account, error)
}

// OpenResult is one resolved pack opening. Cards are in draw order so the
// caller can reveal them one at a time.
type OpenResult struct {
	PackType string                 `json:"pack_type"`
	Cards    []domain.InventoryCard `json:"cards"`
}

type service struct {
	repo           repository.Ledger
	catalog        *catalog.Catalog
	engine         *pack.Engine
	seasonalActive bool
	newInstanceID  func() string
}

// NewService creates an economy service.
func NewService(repo repository.Ledger, cat *catalog.Catalog, engine *pack.Engine, seasonalActive bool) Service {
	return &service{
		repo:           repo,
		catalog:        cat,
		engine:         engine,
		seasonalActive: seasonalActive,
		newInstanceID:  newInstanceID,
	}
}
