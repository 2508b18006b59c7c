package domain

import "time"

// ListingKind discriminates what a listing sells.
type ListingKind string

const (
	ListingCard    ListingKind = "card"
	ListingPackLot ListingKind = "pack"
)

// ListingStatus is the lifecycle state of a listing.
// Listings are immutable once sold or removed.
type ListingStatus string

const (
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingRemoved ListingStatus = "removed"
)

// Listing is a marketplace offer of a card instance or a lot of packs at a
// fixed unit price. An active card listing holds its instance locked; an
// active pack-lot listing holds its quantity escrowed out of StoreStock.
type Listing struct {
	ID             int64         `json:"id"`
	SellerID       string        `json:"seller_id"`
	Kind           ListingKind   `json:"kind"`
	CardInstanceID string        `json:"card_instance_id,omitempty"`
	PackType       string        `json:"pack_type,omitempty"`
	Quantity       int           `json:"quantity,omitempty"`
	UnitPrice      int           `json:"unit_price"`
	Status         ListingStatus `json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

// Receipt reports what a marketplace purchase settled at.
type Receipt struct {
	ListingID int64       `json:"listing_id"`
	Kind      ListingKind `json:"kind"`
	Quantity  int         `json:"quantity"`
	TotalPaid int         `json:"total_paid"`
}
