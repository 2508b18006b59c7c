package shop

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/logger"
)

const (
	leaderboardCacheTTL = 30 * time.Second
	leaderboardCacheKey = "leaderboard"
)

// leaderboardCache holds the computed ranking for a short TTL. Ranking walks
// every account's inventory, so it is the one read path worth caching.
type leaderboardCache struct {
	lru *expirable.LRU[string, []domain.LeaderboardEntry]
}

func newLeaderboardCache(ttl time.Duration) *leaderboardCache {
	return &leaderboardCache{
		lru: expirable.NewLRU[string, []domain.LeaderboardEntry](1, nil, ttl),
	}
}

func (c *leaderboardCache) Get() ([]domain.LeaderboardEntry, bool) {
	return c.lru.Get(leaderboardCacheKey)
}

func (c *leaderboardCache) Set(entries []domain.LeaderboardEntry) {
	c.lru.Add(leaderboardCacheKey, entries)
}

func (c *leaderboardCache) Invalidate() {
	c.lru.Purge()
}

// GetLeaderboard ranks every account by shop value, descending. Ties keep a
// stable order (account id ascending) so repeated calls agree.
func (s *service) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	log := logger.FromContext(ctx)

	if cached, ok := s.lbCache.Get(); ok {
		return cached, nil
	}

	ids, err := s.repo.ListAccountIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		account, err := s.repo.GetAccount(ctx, id)
		if err != nil {
			return nil, err
		}
		cards, err := s.repo.ListOwnedCards(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to list cards for %s: %w", id, err)
		}
		inventoryValue := 0
		for _, owned := range cards {
			if card, ok := s.catalog.Card(owned.CardID); ok {
				inventoryValue += card.BaseValue
			}
		}
		entries = append(entries, domain.LeaderboardEntry{
			AccountID: id,
			ShopValue: shopValue(account, inventoryValue),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ShopValue != entries[j].ShopValue {
			return entries[i].ShopValue > entries[j].ShopValue
		}
		return entries[i].AccountID < entries[j].AccountID
	})

	if len(entries) > domain.LeaderboardPageSize {
		entries = entries[:domain.LeaderboardPageSize]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}

	s.lbCache.Set(entries)
	log.Info("Leaderboard computed", "accounts", len(ids), "entries", len(entries))
	return entries, nil
}
