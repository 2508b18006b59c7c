package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func newAccount(t *testing.T, s *Store, id string, balance int) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.CreateAccount(ctx, &domain.Account{
		ID: id, Balance: balance, ShopLevel: 1, Capacity: domain.BaseInventoryCapacity,
	}))
	require.NoError(t, tx.Commit(ctx))
}

func addCard(t *testing.T, s *Store, instanceID, ownerID string, cardID int, createdAt time.Time) {
	t.Helper()
	ctx := context.Background()
	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AddCard(ctx, domain.OwnedCard{
		InstanceID: instanceID, OwnerID: ownerID, CardID: cardID, CreatedAt: createdAt,
	}))
	require.NoError(t, tx.Commit(ctx))
}

func TestRollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newAccount(t, s, "alice", 1000)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AdjustBalance(ctx, "alice", -400))
	require.NoError(t, tx.EnqueuePacks(ctx, "alice", "basic", 3))
	require.NoError(t, tx.Rollback(ctx))

	acct, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1000, acct.Balance)
	packs, err := s.PackCount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, packs)
}

func TestTxClosedAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	err = tx.Rollback(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrMsgTxClosed)
}

func TestAdjustBalanceNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newAccount(t, s, "alice", 100)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.AdjustBalance(ctx, "alice", -101), domain.ErrInsufficientFunds)
	require.NoError(t, tx.AdjustBalance(ctx, "alice", -100))
	require.NoError(t, tx.Commit(ctx))

	acct, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, acct.Balance)
}

func TestCreateAccountDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newAccount(t, s, "alice", 100)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)
	assert.ErrorIs(t, tx.CreateAccount(ctx, &domain.Account{ID: "alice"}), domain.ErrAlreadyRegistered)
}

func TestPackQueueIsFIFO(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newAccount(t, s, "alice", 0)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.EnqueuePacks(ctx, "alice", "basic", 2))
	require.NoError(t, tx.EnqueuePacks(ctx, "alice", "premium", 1))
	require.NoError(t, tx.Commit(ctx))

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	first, err := tx.DequeueOldestPack(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "basic", first.PackType)
	second, err := tx.DequeueOldestPack(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "basic", second.PackType)
	third, err := tx.DequeueOldestPack(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "premium", third.PackType)
	_, err = tx.DequeueOldestPack(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, tx.Commit(ctx))
}

func TestRemoveOldestPacksClamps(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.EnqueuePacks(ctx, "alice", "basic", 2))
	moved, err := tx.RemoveOldestPacks(ctx, "alice", "basic", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	moved, err = tx.RemoveOldestPacks(ctx, "alice", "basic", 1)
	require.NoError(t, err)
	assert.Equal(t, 0, moved)
	require.NoError(t, tx.Commit(ctx))
}

func TestLockCardsSkipsForeignAndLocked(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	now := time.Now()
	addCard(t, s, "c1", "alice", 1, now)
	addCard(t, s, "c2", "alice", 2, now)
	addCard(t, s, "c3", "bob", 3, now)

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	locked, err := tx.LockCards(ctx, "alice", []string{"c1"}, "trade:s1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, []string{"c1"}, locked)

	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	locked, err = tx.LockCards(ctx, "alice", []string{"c1", "c2", "c3", "missing"}, "trade:s2")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, []string{"c2"}, locked)

	card, err := s.GetOwnedCard(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "trade:s1", card.LockedBy)
}

func TestRemoveCardGuards(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	addCard(t, s, "c1", "alice", 1, time.Now())

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, tx.RemoveCard(ctx, "alice", "missing"), domain.ErrNotFound)
	assert.ErrorIs(t, tx.RemoveCard(ctx, "bob", "c1"), domain.ErrNotOwned)

	_, err = tx.LockCards(ctx, "alice", []string{"c1"}, "trade:s1")
	require.NoError(t, err)
	assert.ErrorIs(t, tx.RemoveCard(ctx, "alice", "c1"), domain.ErrLocked)
	require.NoError(t, tx.Rollback(ctx))
}

func TestTransferClearsLocks(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	addCard(t, s, "c1", "alice", 1, time.Now())

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.LockCards(ctx, "alice", []string{"c1"}, "trade:s1")
	require.NoError(t, err)
	require.NoError(t, tx.TransferCards(ctx, []string{"c1"}, "bob"))
	require.NoError(t, tx.Commit(ctx))

	card, err := s.GetOwnedCard(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "bob", card.OwnerID)
	assert.False(t, card.Locked)
	assert.Empty(t, card.LockedBy)
}

func TestInventoryPageNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Now()
	addCard(t, s, "old", "alice", 1, base.Add(-2*time.Hour))
	addCard(t, s, "mid", "alice", 2, base.Add(-time.Hour))
	addCard(t, s, "new", "alice", 3, base)

	page, err := s.InventoryPage(ctx, "alice", 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "new", page[0].InstanceID)
	assert.Equal(t, "mid", page[1].InstanceID)

	page, err = s.InventoryPage(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "old", page[0].InstanceID)

	page, err = s.InventoryPage(ctx, "alice", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestAdjustStock(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.AdjustStock(ctx, "alice", "basic", 5))
	assert.ErrorIs(t, tx.AdjustStock(ctx, "alice", "basic", -6), domain.ErrInsufficientStock)
	require.NoError(t, tx.AdjustStock(ctx, "alice", "basic", -5))
	require.NoError(t, tx.Commit(ctx))

	stock, err := s.GetStock(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stock)
}

func TestListingLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	first := &domain.Listing{SellerID: "alice", Kind: domain.ListingCard, UnitPrice: 50, Status: domain.ListingActive}
	require.NoError(t, tx.CreateListing(ctx, first))
	second := &domain.Listing{SellerID: "bob", Kind: domain.ListingPackLot, UnitPrice: 10, Status: domain.ListingActive}
	require.NoError(t, tx.CreateListing(ctx, second))
	require.NoError(t, tx.Commit(ctx))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)

	// Browse is newest first and omits closed listings.
	tx, err = s.BeginTx(ctx)
	require.NoError(t, err)
	second.Status = domain.ListingSold
	require.NoError(t, tx.UpdateListing(ctx, *second))
	require.NoError(t, tx.Commit(ctx))

	active, err := s.BrowseListings(ctx, 10)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, int64(1), active[0].ID)
}

func TestListLockedBeforeUsesLockTime(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	addCard(t, s, "c1", "alice", 1, time.Now().Add(-48*time.Hour))
	addCard(t, s, "c2", "alice", 2, time.Now().Add(-48*time.Hour))

	tx, err := s.BeginTx(ctx)
	require.NoError(t, err)
	_, err = tx.LockCards(ctx, "alice", []string{"c1", "c2"}, "trade:s1")
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))

	// Both locks are fresh despite the old card rows.
	stale, err := s.ListLockedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, stale)

	s.SetLockTime("c1", time.Now().Add(-2*time.Hour))
	stale, err = s.ListLockedBefore(ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "c1", stale[0].InstanceID)
}

func TestConcurrentMutationsSerialize(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	newAccount(t, s, "alice", 100)

	// 20 goroutines each try to debit 10; exactly 10 can succeed.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := s.BeginTx(ctx)
			if err != nil {
				return
			}
			if err := tx.AdjustBalance(ctx, "alice", -10); err != nil {
				_ = tx.Rollback(ctx)
				return
			}
			if err := tx.Commit(ctx); err != nil {
				return
			}
			mu.Lock()
			succeeded++
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	acct, err := s.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 0, acct.Balance)
}
