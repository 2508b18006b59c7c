package repository

import (
	"context"
	"time"

	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// Ledger is the single source of truth for accounts, owned cards, queued
// packs, store stock and marketplace listings. Read methods see committed
// state; every check-then-act mutation goes through a LedgerTx so that two
// concurrent callers on the same account, card or listing serialize.
type Ledger interface {
	BeginTx(ctx context.Context) (LedgerTx, error)

	GetAccount(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccountIDs(ctx context.Context) ([]string, error)

	GetOwnedCard(ctx context.Context, instanceID string) (*domain.OwnedCard, error)
	ListOwnedCards(ctx context.Context, accountID string) ([]domain.OwnedCard, error)
	InventoryPage(ctx context.Context, accountID string, limit, offset int) ([]domain.OwnedCard, error)
	InventoryCount(ctx context.Context, accountID string) (int, error)

	PackCount(ctx context.Context, accountID string) (int, error)
	GetStock(ctx context.Context, accountID string) (map[string]int, error)

	GetListing(ctx context.Context, listingID int64) (*domain.Listing, error)
	BrowseListings(ctx context.Context, limit int) ([]domain.Listing, error)

	// ListLockedBefore returns card instances whose lock predates cutoff,
	// for reconciling locks orphaned by a crashed or restarted process.
	ListLockedBefore(ctx context.Context, cutoff time.Time) ([]domain.OwnedCard, error)
}

// LedgerTx is the mutating side of the ledger. All methods operate inside
// one transaction; Commit makes the whole batch visible atomically.
type LedgerTx interface {
	Tx

	// Accounts
	CreateAccount(ctx context.Context, account *domain.Account) error
	GetAccountForUpdate(ctx context.Context, accountID string) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account domain.Account) error
	// AdjustBalance fails with domain.ErrInsufficientFunds when the result
	// would be negative; the check and the write are one atomic unit.
	AdjustBalance(ctx context.Context, accountID string, delta int) error
	AddProfit(ctx context.Context, accountID string, delta int) error

	// Owned cards
	AddCard(ctx context.Context, card domain.OwnedCard) error
	GetCardForUpdate(ctx context.Context, instanceID string) (*domain.OwnedCard, error)
	RemoveCard(ctx context.Context, ownerID, instanceID string) error
	// TransferCards reassigns every listed instance to toID and unlocks it.
	TransferCards(ctx context.Context, instanceIDs []string, toID string) error
	// LockCards locks the subset of instanceIDs owned by ownerID and not
	// already locked, tagging each with lockedBy. Returns the locked subset.
	LockCards(ctx context.Context, ownerID string, instanceIDs []string, lockedBy string) ([]string, error)
	UnlockCards(ctx context.Context, instanceIDs []string) error
	InventoryCount(ctx context.Context, accountID string) (int, error)

	// Pack queue (FIFO per account)
	EnqueuePacks(ctx context.Context, ownerID, packType string, quantity int) error
	DequeueOldestPack(ctx context.Context, ownerID string) (*domain.OwnedPack, error)
	// RemoveOldestPacks dequeues up to quantity packs of the given type,
	// oldest first, returning how many were removed.
	RemoveOldestPacks(ctx context.Context, ownerID, packType string, quantity int) (int, error)
	PackCount(ctx context.Context, accountID string) (int, error)

	// Store stock
	GetStockForUpdate(ctx context.Context, accountID string) (map[string]int, error)
	// AdjustStock fails with domain.ErrInsufficientStock when the result
	// would be negative.
	AdjustStock(ctx context.Context, accountID, packType string, delta int) error

	// Marketplace listings
	CreateListing(ctx context.Context, listing *domain.Listing) error
	GetListingForUpdate(ctx context.Context, listingID int64) (*domain.Listing, error)
	UpdateListing(ctx context.Context, listing domain.Listing) error
}
