package domain

import "time"

// Account is a registered player and their shop state.
// Created exactly once per external identity; never deleted by the core.
type Account struct {
	ID             string     `json:"id"`
	Balance        int        `json:"balance"`
	ShopLevel      int        `json:"shop_level"`
	Shelves        int        `json:"shelves"`
	Capacity       int        `json:"capacity"`
	LifetimeProfit int        `json:"lifetime_profit"`
	CreatedAt      time.Time  `json:"created_at"`
	LastDaily      *time.Time `json:"last_daily,omitempty"`
}

// UpgradeCost is the coin cost of upgrading the shop from its current level.
func (a *Account) UpgradeCost() int {
	return UpgradeBaseCost * a.ShopLevel
}

// UpgradeCapacityGain is the capacity added by the next shop upgrade.
func (a *Account) UpgradeCapacityGain() int {
	return UpgradeCapacityIncreaseBase + UpgradeCapacityIncreasePer*a.ShopLevel
}

// ShelfCost is the total coin cost of buying count additional shelves.
// Each shelf costs more than the one before it.
func (a *Account) ShelfCost(count int) int {
	total := 0
	for i := 0; i < count; i++ {
		total += ShelfBaseCost * (a.Shelves + 1 + i)
	}
	return total
}

// Profile is the read-only snapshot returned by profile lookups.
type Profile struct {
	Account       Account        `json:"account"`
	PackCount     int            `json:"pack_count"`
	CardCount     int            `json:"card_count"`
	RarePlusCount int            `json:"rare_plus_count"`
	StoreStock    map[string]int `json:"store_stock"`
	ShopValue     int            `json:"shop_value"`
}

// LeaderboardEntry is one row of the shop-value ranking.
type LeaderboardEntry struct {
	AccountID string `json:"account_id"`
	ShopValue int    `json:"shop_value"`
	Rank      int    `json:"rank"`
}
