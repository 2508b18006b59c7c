// Package daily implements the daily claim: a flat bonus plus automated
// store-stock sales capped by shelf throughput.
package daily

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/metrics"
	"github.com/cardtycoon/cardtycoon/internal/repository"
	"github.com/cardtycoon/cardtycoon/internal/utils"
)

// ErrCooldown is the sentinel matched by errors.Is for any cooldown
// rejection; the concrete error carries the remaining wait.
var ErrCooldown = errors.New("daily claim on cooldown")

// ErrOnCooldown rejects a claim made before the cooldown elapsed.
type ErrOnCooldown struct {
	Remaining time.Duration
}

func (e ErrOnCooldown) Error() string {
	return fmt.Sprintf("daily claim on cooldown: %s remaining", e.Remaining.Round(time.Minute))
}

func (e ErrOnCooldown) Is(target error) bool {
	return target == ErrCooldown
}

// Result reports what one daily claim granted.
type Result struct {
	Bonus      int            `json:"bonus"`
	UnitsSold  int            `json:"units_sold"`
	SaleProfit int            `json:"sale_profit"`
	Sales      map[string]int `json:"sales"`
	Balance    int            `json:"balance"`
	ClaimedAt  time.Time      `json:"claimed_at"`
}

// Service defines the interface for the daily claim
type Service interface {
	Claim(ctx context.Context, accountID string) (*Result, error)
}

type service struct {
	repo    repository.Ledger
	catalog *catalog.Catalog
	randInt func(min, max int) int
	now     func() time.Time
}

// NewService creates a daily claim service.
func NewService(repo repository.Ledger, cat *catalog.Catalog) Service {
	return &service{
		repo:    repo,
		catalog: cat,
		randInt: utils.RandomInt,
		now:     time.Now,
	}
}

// Claim grants the daily bonus and liquidates store stock up to the shelf
// capacity, highest-priced pack types first. Rejected inside the cooldown
// window with the remaining wait. One transaction: bonus, sales, profit and
// the claim timestamp land together or not at all.
func (s *service) Claim(ctx context.Context, accountID string) (*Result, error) {
	log := logger.FromContext(ctx)
	log.Info("Claim called", "accountID", accountID)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	account, err := tx.GetAccountForUpdate(ctx, accountID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cooldown := domain.DailyCooldownHours * time.Hour
	if account.LastDaily != nil {
		if elapsed := now.Sub(*account.LastDaily); elapsed < cooldown {
			return nil, ErrOnCooldown{Remaining: cooldown - elapsed}
		}
	}

	bonus := s.randInt(domain.DailyBonusMin, domain.DailyBonusMax)
	capacity := account.Shelves * domain.ShelfSalesThroughput

	stock, err := tx.GetStockForUpdate(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock: %w", err)
	}

	result := &Result{
		Bonus:     bonus,
		Sales:     make(map[string]int),
		ClaimedAt: now,
	}
	for _, packType := range s.byPriceDesc(stock) {
		if capacity <= 0 {
			break
		}
		units := stock[packType]
		if units > capacity {
			units = capacity
		}
		def, ok := s.catalog.Pack(packType)
		if !ok {
			continue
		}
		if err := tx.AdjustStock(ctx, accountID, packType, -units); err != nil {
			return nil, fmt.Errorf("failed to sell stock: %w", err)
		}
		profit := int(float64(def.Price)*domain.DailySaleMargin) * units
		result.Sales[packType] = units
		result.UnitsSold += units
		result.SaleProfit += profit
		capacity -= units
	}

	account.LastDaily = &now
	account.Balance += bonus + result.SaleProfit
	account.LifetimeProfit += result.SaleProfit
	if err := tx.UpdateAccount(ctx, *account); err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	result.Balance = account.Balance

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	metrics.DailyClaims.Inc()
	metrics.MoneyEarned.WithLabelValues("daily").Add(float64(bonus + result.SaleProfit))

	log.Info("Daily claimed", "accountID", accountID, "bonus", bonus,
		"unitsSold", result.UnitsSold, "saleProfit", result.SaleProfit)
	return result, nil
}

// byPriceDesc orders stocked pack types by catalog price, highest first, so
// the most valuable stock is liquidated before capacity runs out. Types
// missing from the catalog sort last and are skipped at sale time.
func (s *service) byPriceDesc(stock map[string]int) []string {
	types := make([]string, 0, len(stock))
	for packType, quantity := range stock {
		if quantity > 0 {
			types = append(types, packType)
		}
	}
	price := func(packType string) int {
		if def, ok := s.catalog.Pack(packType); ok {
			return def.Price
		}
		return 0
	}
	sort.Slice(types, func(i, j int) bool {
		pi, pj := price(types[i]), price(types[j])
		if pi != pj {
			return pi > pj
		}
		return types[i] < types[j]
	})
	return types
}
