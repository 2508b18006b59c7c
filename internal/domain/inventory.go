package domain

import "time"

// OwnedCard is a single card instance in an account's inventory.
// Exactly one owner at any instant; a locked instance cannot change owner
// or be removed except through the protocol that locked it.
type OwnedCard struct {
	InstanceID string    `json:"instance_id"`
	OwnerID    string    `json:"owner_id"`
	CardID     int       `json:"card_id"`
	CreatedAt  time.Time `json:"created_at"`
	Locked     bool      `json:"locked"`
	LockedBy   string    `json:"locked_by,omitempty"` // trade session or listing holding the lock
}

// InventoryCard joins an owned instance with its catalog definition for
// read paths (inventory pages, single lookups).
type InventoryCard struct {
	OwnedCard
	Card Card `json:"card"`
}

// OwnedPack is a queued, unopened pack. FIFO per account: the oldest pack
// is opened first.
type OwnedPack struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	PackType  string    `json:"pack_type"`
	CreatedAt time.Time `json:"created_at"`
}
