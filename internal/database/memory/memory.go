// Package memory implements the ledger interfaces on in-process maps.
// It backs service tests and local runs without a database; transactions
// serialize on a single mutex and roll back by restoring a snapshot, so
// check-then-act sequences behave the way they do against Postgres row locks.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/repository"
)

type Store struct {
	mu sync.Mutex

	accounts map[string]domain.Account
	cards    map[string]domain.OwnedCard
	packs    map[int64]domain.OwnedPack
	stock    map[string]map[string]int // accountID -> packType -> quantity
	listings map[int64]domain.Listing
	lockedAt map[string]time.Time // instanceID -> time the lock was taken

	nextPackID    int64
	nextListingID int64
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]domain.Account),
		cards:         make(map[string]domain.OwnedCard),
		packs:         make(map[int64]domain.OwnedPack),
		stock:         make(map[string]map[string]int),
		listings:      make(map[int64]domain.Listing),
		lockedAt:      make(map[string]time.Time),
		nextPackID:    1,
		nextListingID: 1,
	}
}

var _ repository.Ledger = (*Store)(nil)

// snapshot deep-copies all mutable state for rollback.
type snapshot struct {
	accounts      map[string]domain.Account
	cards         map[string]domain.OwnedCard
	packs         map[int64]domain.OwnedPack
	stock         map[string]map[string]int
	listings      map[int64]domain.Listing
	lockedAt      map[string]time.Time
	nextPackID    int64
	nextListingID int64
}

func (s *Store) takeSnapshot() snapshot {
	snap := snapshot{
		accounts:      make(map[string]domain.Account, len(s.accounts)),
		cards:         make(map[string]domain.OwnedCard, len(s.cards)),
		packs:         make(map[int64]domain.OwnedPack, len(s.packs)),
		stock:         make(map[string]map[string]int, len(s.stock)),
		listings:      make(map[int64]domain.Listing, len(s.listings)),
		lockedAt:      make(map[string]time.Time, len(s.lockedAt)),
		nextPackID:    s.nextPackID,
		nextListingID: s.nextListingID,
	}
	for k, v := range s.accounts {
		snap.accounts[k] = v
	}
	for k, v := range s.cards {
		snap.cards[k] = v
	}
	for k, v := range s.packs {
		snap.packs[k] = v
	}
	for k, v := range s.stock {
		inner := make(map[string]int, len(v))
		for pt, q := range v {
			inner[pt] = q
		}
		snap.stock[k] = inner
	}
	for k, v := range s.listings {
		snap.listings[k] = v
	}
	for k, v := range s.lockedAt {
		snap.lockedAt[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.accounts = snap.accounts
	s.cards = snap.cards
	s.packs = snap.packs
	s.stock = snap.stock
	s.listings = snap.listings
	s.lockedAt = snap.lockedAt
	s.nextPackID = snap.nextPackID
	s.nextListingID = snap.nextListingID
}

// BeginTx locks the store until Commit or Rollback. One writer at a time
// gives the same serialization the SQL implementation gets from row locks.
func (s *Store) BeginTx(ctx context.Context) (repository.LedgerTx, error) {
	s.mu.Lock()
	return &storeTx{store: s, snap: s.takeSnapshot()}, nil
}

func (s *Store) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getAccount(accountID)
}

func (s *Store) getAccount(accountID string) (*domain.Account, error) {
	acct, ok := s.accounts[accountID]
	if !ok {
		return nil, domain.ErrNotRegistered
	}
	return &acct, nil
}

func (s *Store) ListAccountIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.accounts))
	for id := range s.accounts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) GetOwnedCard(ctx context.Context, instanceID string) (*domain.OwnedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOwnedCard(instanceID)
}

func (s *Store) getOwnedCard(instanceID string) (*domain.OwnedCard, error) {
	card, ok := s.cards[instanceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &card, nil
}

func (s *Store) ownedCardsSorted(accountID string) []domain.OwnedCard {
	out := make([]domain.OwnedCard, 0)
	for _, c := range s.cards {
		if c.OwnerID == accountID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].InstanceID < out[j].InstanceID
	})
	return out
}

func (s *Store) ListOwnedCards(ctx context.Context, accountID string) ([]domain.OwnedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownedCardsSorted(accountID), nil
}

func (s *Store) InventoryPage(ctx context.Context, accountID string, limit, offset int) ([]domain.OwnedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.ownedCardsSorted(accountID)
	// Newest first, matching the SQL store.
	for i, j := 0, len(all)-1; i < j; i, j = i+1, j-1 {
		all[i], all[j] = all[j], all[i]
	}
	if offset >= len(all) {
		return []domain.OwnedCard{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *Store) InventoryCount(ctx context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventoryCount(accountID), nil
}

func (s *Store) inventoryCount(accountID string) int {
	n := 0
	for _, c := range s.cards {
		if c.OwnerID == accountID {
			n++
		}
	}
	return n
}

func (s *Store) PackCount(ctx context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packCount(accountID), nil
}

func (s *Store) packCount(accountID string) int {
	n := 0
	for _, p := range s.packs {
		if p.OwnerID == accountID {
			n++
		}
	}
	return n
}

func (s *Store) GetStock(ctx context.Context, accountID string) (map[string]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stockCopy(accountID), nil
}

func (s *Store) stockCopy(accountID string) map[string]int {
	out := make(map[string]int)
	for pt, q := range s.stock[accountID] {
		if q > 0 {
			out[pt] = q
		}
	}
	return out
}

func (s *Store) GetListing(ctx context.Context, listingID int64) (*domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getListing(listingID)
}

func (s *Store) getListing(listingID int64) (*domain.Listing, error) {
	l, ok := s.listings[listingID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &l, nil
}

func (s *Store) BrowseListings(ctx context.Context, limit int) ([]domain.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active := make([]domain.Listing, 0)
	for _, l := range s.listings {
		if l.Status == domain.ListingActive {
			active = append(active, l)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID > active[j].ID })
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (s *Store) ListLockedBefore(ctx context.Context, cutoff time.Time) ([]domain.OwnedCard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OwnedCard, 0)
	for _, c := range s.cards {
		if c.Locked && s.lockedAt[c.InstanceID].Before(cutoff) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstanceID < out[j].InstanceID })
	return out, nil
}

// SetLockTime backdates a lock timestamp. Test helper for exercising the
// stale-lock sweep.
func (s *Store) SetLockTime(instanceID string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lockedAt[instanceID] = at
}

// storeTx mutates the store in place while holding its mutex; Rollback
// restores the snapshot taken at BeginTx.
type storeTx struct {
	store *Store
	snap  snapshot
	done  bool
}

var _ repository.LedgerTx = (*storeTx)(nil)

func (t *storeTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.store.mu.Unlock()
	return nil
}

func (t *storeTx) Rollback(ctx context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.store.restore(t.snap)
	t.store.mu.Unlock()
	return nil
}

func (t *storeTx) CreateAccount(ctx context.Context, account *domain.Account) error {
	s := t.store
	if _, ok := s.accounts[account.ID]; ok {
		return domain.ErrAlreadyRegistered
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now()
	}
	s.accounts[account.ID] = *account
	return nil
}

func (t *storeTx) GetAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error) {
	return t.store.getAccount(accountID)
}

func (t *storeTx) UpdateAccount(ctx context.Context, account domain.Account) error {
	s := t.store
	if _, ok := s.accounts[account.ID]; !ok {
		return domain.ErrNotRegistered
	}
	s.accounts[account.ID] = account
	return nil
}

func (t *storeTx) AdjustBalance(ctx context.Context, accountID string, delta int) error {
	s := t.store
	acct, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotRegistered
	}
	if acct.Balance+delta < 0 {
		return domain.ErrInsufficientFunds
	}
	acct.Balance += delta
	s.accounts[accountID] = acct
	return nil
}

func (t *storeTx) AddProfit(ctx context.Context, accountID string, delta int) error {
	s := t.store
	acct, ok := s.accounts[accountID]
	if !ok {
		return domain.ErrNotRegistered
	}
	acct.LifetimeProfit += delta
	s.accounts[accountID] = acct
	return nil
}

func (t *storeTx) AddCard(ctx context.Context, card domain.OwnedCard) error {
	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now()
	}
	t.store.cards[card.InstanceID] = card
	return nil
}

func (t *storeTx) GetCardForUpdate(ctx context.Context, instanceID string) (*domain.OwnedCard, error) {
	return t.store.getOwnedCard(instanceID)
}

func (t *storeTx) RemoveCard(ctx context.Context, ownerID, instanceID string) error {
	s := t.store
	card, ok := s.cards[instanceID]
	if !ok {
		return domain.ErrNotFound
	}
	if card.OwnerID != ownerID {
		return domain.ErrNotOwned
	}
	if card.Locked {
		return domain.ErrLocked
	}
	delete(s.cards, instanceID)
	return nil
}

func (t *storeTx) TransferCards(ctx context.Context, instanceIDs []string, toID string) error {
	s := t.store
	for _, id := range instanceIDs {
		card, ok := s.cards[id]
		if !ok {
			return domain.ErrNotFound
		}
		card.OwnerID = toID
		card.Locked = false
		card.LockedBy = ""
		s.cards[id] = card
		delete(s.lockedAt, id)
	}
	return nil
}

func (t *storeTx) LockCards(ctx context.Context, ownerID string, instanceIDs []string, lockedBy string) ([]string, error) {
	s := t.store
	locked := make([]string, 0, len(instanceIDs))
	for _, id := range instanceIDs {
		card, ok := s.cards[id]
		if !ok || card.OwnerID != ownerID || card.Locked {
			continue
		}
		card.Locked = true
		card.LockedBy = lockedBy
		s.cards[id] = card
		s.lockedAt[id] = time.Now()
		locked = append(locked, id)
	}
	return locked, nil
}

func (t *storeTx) UnlockCards(ctx context.Context, instanceIDs []string) error {
	s := t.store
	for _, id := range instanceIDs {
		card, ok := s.cards[id]
		if !ok {
			continue
		}
		card.Locked = false
		card.LockedBy = ""
		s.cards[id] = card
		delete(s.lockedAt, id)
	}
	return nil
}

func (t *storeTx) InventoryCount(ctx context.Context, accountID string) (int, error) {
	return t.store.inventoryCount(accountID), nil
}

func (t *storeTx) EnqueuePacks(ctx context.Context, ownerID, packType string, quantity int) error {
	s := t.store
	now := time.Now()
	for i := 0; i < quantity; i++ {
		id := s.nextPackID
		s.nextPackID++
		s.packs[id] = domain.OwnedPack{ID: id, OwnerID: ownerID, PackType: packType, CreatedAt: now}
	}
	return nil
}

func (t *storeTx) oldestPacks(ownerID, packType string) []domain.OwnedPack {
	out := make([]domain.OwnedPack, 0)
	for _, p := range t.store.packs {
		if p.OwnerID != ownerID {
			continue
		}
		if packType != "" && p.PackType != packType {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *storeTx) DequeueOldestPack(ctx context.Context, ownerID string) (*domain.OwnedPack, error) {
	queue := t.oldestPacks(ownerID, "")
	if len(queue) == 0 {
		return nil, domain.ErrNotFound
	}
	pack := queue[0]
	delete(t.store.packs, pack.ID)
	return &pack, nil
}

func (t *storeTx) RemoveOldestPacks(ctx context.Context, ownerID, packType string, quantity int) (int, error) {
	queue := t.oldestPacks(ownerID, packType)
	if quantity > len(queue) {
		quantity = len(queue)
	}
	for i := 0; i < quantity; i++ {
		delete(t.store.packs, queue[i].ID)
	}
	return quantity, nil
}

func (t *storeTx) PackCount(ctx context.Context, accountID string) (int, error) {
	return t.store.packCount(accountID), nil
}

func (t *storeTx) GetStockForUpdate(ctx context.Context, accountID string) (map[string]int, error) {
	return t.store.stockCopy(accountID), nil
}

func (t *storeTx) AdjustStock(ctx context.Context, accountID, packType string, delta int) error {
	s := t.store
	inner, ok := s.stock[accountID]
	if !ok {
		inner = make(map[string]int)
		s.stock[accountID] = inner
	}
	if inner[packType]+delta < 0 {
		return domain.ErrInsufficientStock
	}
	inner[packType] += delta
	return nil
}

func (t *storeTx) CreateListing(ctx context.Context, listing *domain.Listing) error {
	s := t.store
	listing.ID = s.nextListingID
	s.nextListingID++
	if listing.CreatedAt.IsZero() {
		listing.CreatedAt = time.Now()
	}
	s.listings[listing.ID] = *listing
	return nil
}

func (t *storeTx) GetListingForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error) {
	return t.store.getListing(listingID)
}

func (t *storeTx) UpdateListing(ctx context.Context, listing domain.Listing) error {
	s := t.store
	if _, ok := s.listings[listing.ID]; !ok {
		return domain.ErrNotFound
	}
	s.listings[listing.ID] = listing
	return nil
}
