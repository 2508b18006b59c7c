package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

// Service defines the interface for account and shop operations
type Service interface {
	Register(ctx context.Context, accountID string) (*domain.Account, error)
	GetProfile(ctx context.Context, accountID string) (*domain.Profile, error)
	UpgradeShop(ctx context.Context, accountID string) (*domain.Account, error)
	BuyShelves(ctx context.Context, accountID string, count int) (*domain.Account, error)
	GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error)
	GetCollectionProgress(ctx context.Context, accountID string) ([]CollectionProgress, error)
	GetPackInfo(ctx context.Context, packType string) (*PackInfo, error)
}

// CollectionProgress reports how much of one collection an account owns.
type CollectionProgress struct {
	Collection string `json:"collection"`
	Owned      int    `json:"owned"`
	Total      int    `json:"total"`
}

// PackInfo is a read-only view of a pack definition with derived odds.
type PackInfo struct {
	Definition  domain.PackDefinition      `json:"definition"`
	Odds        map[domain.Rarity]float64  `json:"odds"`
	SampleCards map[domain.Rarity][]string `json:"sample_cards"`
}

type service struct {
	repo           repository.Ledger
	catalog        *catalog.Catalog
	seasonalActive bool
	lbCache        *leaderboardCache
}

// NewService creates a shop service. seasonalActive gates event-only packs
// and seasonal card pools; it is injected, not computed from the calendar.
func NewService(repo repository.Ledger, cat *catalog.Catalog, seasonalActive bool) Service {
	return &service{
		repo:           repo,
		catalog:        cat,
		seasonalActive: seasonalActive,
		lbCache:        newLeaderboardCache(leaderboardCacheTTL),
	}
}

// Register creates the account and grants the starting balance plus one
// queued starter pack. Fails with ErrAlreadyRegistered on a second call.
func (s *service) Register(ctx context.Context, accountID string) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("Register called", "accountID", accountID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account := &domain.Account{
		ID:        accountID,
		Balance:   domain.StartingCoins,
		ShopLevel: domain.BaseShopLevel,
		Shelves:   0,
		Capacity:  domain.BaseInventoryCapacity,
		CreatedAt: time.Now(),
	}
	if err := tx.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	if err := tx.EnqueuePacks(ctx, accountID, domain.StartingPackType, 1); err != nil {
		return nil, fmt.Errorf("failed to grant starter pack: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Info("Account registered", "accountID", accountID, "balance", account.Balance)
	return account, nil
}

// GetProfile returns the account snapshot used by profile displays.
func (s *service) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	log := logger.FromContext(ctx)
	log.Info("GetProfile called", "accountID", accountID)

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cards, err := s.repo.ListOwnedCards(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	packCount, err := s.repo.PackCount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to count packs: %w", err)
	}
	stock, err := s.repo.GetStock(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	rarePlus := 0
	inventoryValue := 0
	for _, owned := range cards {
		card, ok := s.catalog.Card(owned.CardID)
		if !ok {
			continue
		}
		inventoryValue += card.BaseValue
		if card.Rarity.AtLeast(domain.RarityRare) {
			rarePlus++
		}
	}

	return &domain.Profile{
		Account:       *account,
		PackCount:     packCount,
		CardCount:     len(cards),
		RarePlusCount: rarePlus,
		StoreStock:    stock,
		ShopValue:     shopValue(account, inventoryValue),
	}, nil
}

// UpgradeShop raises the shop level by one, charging the level-scaled cost
// and growing inventory capacity.
func (s *service) UpgradeShop(ctx context.Context, accountID string) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("UpgradeShop called", "accountID", accountID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cost := account.UpgradeCost()
	if account.Balance < cost {
		return nil, fmt.Errorf("upgrade costs %d: %w", cost, domain.ErrInsufficientFunds)
	}

	account.Balance -= cost
	account.Capacity += account.UpgradeCapacityGain()
	account.ShopLevel++
	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.lbCache.Invalidate()
	log.Info("Shop upgraded", "accountID", accountID, "level", account.ShopLevel, "cost", cost)
	return account, nil
}

// BuyShelves purchases count additional shelves. Each shelf is priced off
// the running shelf total, so buying in bulk costs the same as one at a time.
func (s *service) BuyShelves(ctx context.Context, accountID string, count int) (*domain.Account, error) {
	log := logger.FromContext(ctx)
	log.Info("BuyShelves called", "accountID", accountID, "count", count)

	if count < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	cost := account.ShelfCost(count)
	if account.Balance < cost {
		return nil, fmt.Errorf("%d shelves cost %d: %w", count, cost, domain.ErrInsufficientFunds)
	}

	account.Balance -= cost
	account.Shelves += count
	account.Capacity += domain.ShelfCapacityIncrease * count
	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.lbCache.Invalidate()
	log.Info("Shelves purchased", "accountID", accountID, "count", count, "cost", cost)
	return account, nil
}

// GetCollectionProgress reports distinct owned cards per collection.
func (s *service) GetCollectionProgress(ctx context.Context, accountID string) ([]CollectionProgress, error) {
	if _, err := s.repo.GetAccount(ctx, accountID); err != nil {
		return nil, err
	}

	cards, err := s.repo.ListOwnedCards(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}

	distinct := make(map[string]map[int]struct{})
	for _, owned := range cards {
		card, ok := s.catalog.Card(owned.CardID)
		if !ok {
			continue
		}
		if distinct[card.Collection] == nil {
			distinct[card.Collection] = make(map[int]struct{})
		}
		distinct[card.Collection][card.ID] = struct{}{}
	}

	collections := s.catalog.Collections()
	progress := make([]CollectionProgress, 0, len(collections))
	for _, name := range collections {
		progress = append(progress, CollectionProgress{
			Collection: name,
			Owned:      len(distinct[name]),
			Total:      s.catalog.CollectionSize(name),
		})
	}
	return progress, nil
}

// GetPackInfo returns a pack definition with normalized drop odds and the
// card names each rarity can currently yield.
func (s *service) GetPackInfo(ctx context.Context, packType string) (*PackInfo, error) {
	def, ok := s.catalog.Pack(packType)
	if !ok {
		return nil, fmt.Errorf("pack type %q: %w", packType, domain.ErrNotFound)
	}

	total := 0
	for _, w := range def.Drops {
		if w > 0 {
			total += w
		}
	}

	odds := make(map[domain.Rarity]float64, len(def.Drops))
	samples := make(map[domain.Rarity][]string, len(def.Drops))
	for rarity, w := range def.Drops {
		if w <= 0 || total == 0 {
			continue
		}
		odds[rarity] = float64(w) / float64(total)
		pool := s.catalog.CardsByRarity(rarity, s.seasonalActive)
		names := make([]string, 0, len(pool))
		for _, card := range pool {
			names = append(names, card.Name)
		}
		samples[rarity] = names
	}

	return &PackInfo{Definition: def, Odds: odds, SampleCards: samples}, nil
}

// shopValue is the composite ranking score: wallet plus inventory base value
// plus upgrade value.
func shopValue(account *domain.Account, inventoryValue int) int {
	return account.Balance + inventoryValue +
		account.ShopLevel*domain.ShopValuePerLevel +
		account.Shelves*domain.ShopValuePerShelf
}
