package daily

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtycoon/cardtycoon/internal/catalog"
	"github.com/cardtycoon/cardtycoon/internal/database/memory"
	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(&catalog.Config{
		Rarities: map[domain.Rarity]domain.RarityMeta{
			domain.RarityCommon: {SellMultiplier: 0.75, Weight: 60},
		},
		Packs: []catalog.PackDef{
			{Type: "basic", Name: "Basic Pack", Price: 100, MinCards: 3, MaxCards: 5,
				Drops: map[string]int{"Common": 100}},
			{Type: "premium", Name: "Premium Pack", Price: 300, MinCards: 3, MaxCards: 5,
				Drops: map[string]int{"Common": 100}},
		},
		Cards: []catalog.CardDef{
			{Name: "Mudcrab", Rarity: "Common", Collection: "Beasts", BaseValue: 60},
		},
	})
	require.NoError(t, err)
	return cat
}

// newTestService pins the bonus roll and the clock.
func newTestService(t *testing.T, bonus int, now time.Time) (*service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return &service{
		repo:    store,
		catalog: testCatalog(t),
		randInt: func(min, max int) int { return bonus },
		now:     func() time.Time { return now },
	}, store
}

func seedAccount(t *testing.T, store *memory.Store, id string, shelves int, lastDaily *time.Time) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateAccount(ctx, &domain.Account{
		ID: id, Balance: 1000, ShopLevel: 1, Shelves: shelves,
		Capacity: domain.BaseInventoryCapacity, LastDaily: lastDaily,
	}))
	require.NoError(t, tx.Commit(ctx))
}

func seedStock(t *testing.T, store *memory.Store, id, packType string, quantity int) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AdjustStock(ctx, id, packType, quantity))
	require.NoError(t, tx.Commit(ctx))
}

func TestClaimFirstTime(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	svc, store := newTestService(t, 150, now)
	seedAccount(t, store, "alice", 0, nil)

	result, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 150, result.Bonus)
	assert.Equal(t, 0, result.UnitsSold)
	assert.Equal(t, 1150, result.Balance)

	acct, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1150, acct.Balance)
	require.NotNil(t, acct.LastDaily)
	assert.True(t, acct.LastDaily.Equal(now))
}

func TestClaimInsideCooldownRejected(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	last := now.Add(-20 * time.Hour)
	svc, store := newTestService(t, 150, now)
	seedAccount(t, store, "alice", 0, &last)

	_, err := svc.Claim(ctx, "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCooldown)

	var cooldown ErrOnCooldown
	require.True(t, errors.As(err, &cooldown))
	assert.InDelta(t, float64(2*time.Hour), float64(cooldown.Remaining), float64(time.Minute))

	// Nothing changed.
	acct, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1000, acct.Balance)
	assert.True(t, acct.LastDaily.Equal(last))
}

func TestClaimAfterCooldownSucceeds(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	last := now.Add(-23 * time.Hour)
	svc, store := newTestService(t, 100, now)
	seedAccount(t, store, "alice", 0, &last)

	result, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 100, result.Bonus)
}

func TestClaimSellsHighestPricedStockFirst(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, 100, time.Now())
	// 2 shelves = 10 units of throughput.
	seedAccount(t, store, "alice", 2, nil)
	seedStock(t, store, "alice", "basic", 20)
	seedStock(t, store, "alice", "premium", 4)

	result, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)

	// All 4 premium (300 * 0.2 = 60 each), then 6 basic (100 * 0.2 = 20 each).
	assert.Equal(t, 10, result.UnitsSold)
	assert.Equal(t, map[string]int{"premium": 4, "basic": 6}, result.Sales)
	assert.Equal(t, 4*60+6*20, result.SaleProfit)
	assert.Equal(t, 1000+100+360, result.Balance)

	stock, err := store.GetStock(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"basic": 14}, stock)

	acct, err := store.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 360, acct.LifetimeProfit)
}

func TestClaimWithoutShelvesSellsNothing(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, 100, time.Now())
	seedAccount(t, store, "alice", 0, nil)
	seedStock(t, store, "alice", "basic", 20)

	result, err := svc.Claim(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, result.UnitsSold)
	assert.Empty(t, result.Sales)

	stock, err := store.GetStock(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"basic": 20}, stock)
}

func TestClaimUnregistered(t *testing.T) {
	svc, _ := newTestService(t, 100, time.Now())

	_, err := svc.Claim(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestCooldownErrorMessage(t *testing.T) {
	err := ErrOnCooldown{Remaining: 2*time.Hour + 3*time.Minute}
	assert.Contains(t, err.Error(), "2h3m")
	assert.ErrorIs(t, err, ErrCooldown)
}
