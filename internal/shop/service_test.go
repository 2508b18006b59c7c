package shop

import (
	"context"
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
			domain.RarityRare:   {SellMultiplier: 1.0, Weight: 10},
		},
		Packs: []catalog.PackDef{
			{Type: "basic", Name: "Basic Pack", Price: 100, MinCards: 3, MaxCards: 5,
				Drops: map[string]int{"Common": 90, "Rare": 10}},
			{Type: "spooky", Name: "Spooky Pack", Price: 250, MinCards: 3, MaxCards: 5,
				Drops: map[string]int{"Rare": 100}, EventOnly: true},
		},
		Cards: []catalog.CardDef{
			{Name: "Mudcrab", Rarity: "Common", Collection: "Beasts", BaseValue: 60},
			{Name: "Dire Wolf", Rarity: "Rare", Collection: "Beasts", BaseValue: 200},
			{Name: "Phantom", Rarity: "Rare", Collection: "Halloween", BaseValue: 220},
		},
	})
	require.NoError(t, err)
	return cat
}

func newTestService(t *testing.T) (Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewService(store, testCatalog(t), false), store
}

func giveCard(t *testing.T, store *memory.Store, instanceID, ownerID string, cardID int) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AddCard(ctx, domain.OwnedCard{
		InstanceID: instanceID, OwnerID: ownerID, CardID: cardID, CreatedAt: time.Now(),
	}))
	require.NoError(t, tx.Commit(ctx))
}

func TestRegisterGrantsStartingPackage(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	account, err := svc.Register(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, domain.StartingCoins, account.Balance)
	assert.Equal(t, domain.BaseShopLevel, account.ShopLevel)
	assert.Equal(t, domain.BaseInventoryCapacity, account.Capacity)
	assert.Equal(t, 0, account.Shelves)

	packs, err := store.PackCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, packs)
}

func TestRegisterTwiceFails(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.Register(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrAlreadyRegistered)

	// The duplicate attempt must not grant a second starter pack.
	packs, err := store.PackCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, packs)
}

func TestGetProfileComputesShopValue(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	giveCard(t, store, "c1", "alice", 1) // Mudcrab, base 60
	giveCard(t, store, "c2", "alice", 2) // Dire Wolf, base 200

	profile, err := svc.GetProfile(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, 2, profile.CardCount)
	assert.Equal(t, 1, profile.RarePlusCount)
	assert.Equal(t, 1, profile.PackCount)
	// balance 1000 + inventory 260 + level 1 * 200
	assert.Equal(t, 1460, profile.ShopValue)
}

func TestGetProfileUnregistered(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetProfile(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotRegistered)
}

func TestUpgradeShop(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)

	// Level 1 -> 2 costs 800 and adds 50 + 10*1 capacity.
	account, err := svc.UpgradeShop(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, account.ShopLevel)
	assert.Equal(t, 200, account.Balance)
	assert.Equal(t, domain.BaseInventoryCapacity+60, account.Capacity)

	// Level 2 -> 3 costs 1600; not affordable anymore.
	_, err = svc.UpgradeShop(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestBuyShelvesEscalatingCost(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	seedBalance(t, store, "alice", 3000)

	// First two shelves: 500*1 + 500*2 = 1500.
	account, err := svc.BuyShelves(ctx, "alice", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, account.Shelves)
	assert.Equal(t, 4000-1500, account.Balance)
	assert.Equal(t, domain.BaseInventoryCapacity+2*domain.ShelfCapacityIncrease, account.Capacity)

	// Third shelf: 500*3 = 1500.
	account, err = svc.BuyShelves(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, account.Shelves)
	assert.Equal(t, 1000, account.Balance)
}

func TestBuyShelvesInvalidCount(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.BuyShelves(ctx, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestLeaderboardOrdersByShopValue(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	for _, id := range []string{"alice", "bob", "carol"} {
		_, err := svc.Register(ctx, id)
		require.NoError(t, err)
	}
	giveCard(t, store, "c1", "bob", 2) // +200 shop value

	entries, err := svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "bob", entries[0].AccountID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 1400, entries[0].ShopValue)

	// alice and carol tie at 1200; ties break by account ID.
	assert.Equal(t, "alice", entries[1].AccountID)
	assert.Equal(t, "carol", entries[2].AccountID)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestLeaderboardCacheInvalidatedByPurchase(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	_, err = svc.GetLeaderboard(ctx)
	require.NoError(t, err)

	// Upgrading converts 800 coins into 200 shop value; the cached board
	// must not survive the purchase.
	_, err = svc.UpgradeShop(ctx, "alice")
	require.NoError(t, err)

	entries, err := svc.GetLeaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 200+0+2*domain.ShopValuePerLevel, entries[0].ShopValue)
}

func TestCollectionProgress(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	_, err := svc.Register(ctx, "alice")
	require.NoError(t, err)
	giveCard(t, store, "c1", "alice", 1)
	giveCard(t, store, "c2", "alice", 1) // duplicate definition, counts once
	giveCard(t, store, "c3", "alice", 2)

	progress, err := svc.GetCollectionProgress(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, progress, 2)

	assert.Equal(t, CollectionProgress{Collection: "Beasts", Owned: 2, Total: 2}, progress[0])
	assert.Equal(t, CollectionProgress{Collection: "Halloween", Owned: 0, Total: 1}, progress[1])
}

func TestGetPackInfoNormalizesOdds(t *testing.T) {
	svc, _ := newTestService(t)

	info, err := svc.GetPackInfo(context.Background(), "basic")
	require.NoError(t, err)

	assert.Equal(t, "Basic Pack", info.Definition.Name)
	assert.InDelta(t, 0.9, info.Odds[domain.RarityCommon], 1e-9)
	assert.InDelta(t, 0.1, info.Odds[domain.RarityRare], 1e-9)

	// Off-season the rare sample pool excludes the seasonal card.
	assert.Equal(t, []string{"Dire Wolf"}, info.SampleCards[domain.RarityRare])
}

func TestGetPackInfoUnknownType(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetPackInfo(context.Background(), "mystery")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func seedBalance(t *testing.T, store *memory.Store, accountID string, delta int) {
	t.Helper()
	ctx := context.Background()
	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AdjustBalance(ctx, accountID, delta))
	require.NoError(t, tx.Commit(ctx))
}
