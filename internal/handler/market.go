package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardtycoon/cardtycoon/internal/market"
)

// ListCardRequest lists one owned card for sale.
type ListCardRequest struct {
	SellerID   string `json:"seller_id" validate:"required"`
	InstanceID string `json:"instance_id" validate:"required"`
	Price      int    `json:"price" validate:"required,min=1"`
}

// HandleListCard lists a card; the instance stays locked while active.
func HandleListCard(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ListCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		listing, err := svc.ListCard(r.Context(), req.SellerID, req.InstanceID, req.Price)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, listing)
	}
}

// ListPackLotRequest lists packs from store stock.
type ListPackLotRequest struct {
	SellerID  string `json:"seller_id" validate:"required"`
	PackType  string `json:"pack_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	UnitPrice int    `json:"unit_price" validate:"required,min=1"`
}

// HandleListPackLot lists a pack lot; the quantity is escrowed from stock.
func HandleListPackLot(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ListPackLotRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		listing, err := svc.ListPackLot(r.Context(), req.SellerID, req.PackType, req.Quantity, req.UnitPrice)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, listing)
	}
}

// BuyListingRequest purchases from an active listing. Quantity is ignored
// for card listings and clamped for pack lots; it defaults to 1.
type BuyListingRequest struct {
	BuyerID   string `json:"buyer_id" validate:"required"`
	ListingID int64  `json:"listing_id" validate:"required,min=1"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

// HandleBuyListing settles a purchase.
func HandleBuyListing(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BuyListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}
		if req.Quantity == 0 {
			req.Quantity = 1
		}

		receipt, err := svc.Buy(r.Context(), req.BuyerID, req.ListingID, req.Quantity)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, receipt)
	}
}

// RemoveListingRequest withdraws the seller's own active listing.
type RemoveListingRequest struct {
	SellerID  string `json:"seller_id" validate:"required"`
	ListingID int64  `json:"listing_id" validate:"required,min=1"`
}

// HandleRemoveListing withdraws a listing, reversing its escrow.
func HandleRemoveListing(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RemoveListingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.Remove(r.Context(), req.SellerID, req.ListingID); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Listing removed"})
	}
}

// HandleBrowseListings returns the newest active listings, one page.
func HandleBrowseListings(svc market.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		listings, err := svc.Browse(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, listings)
	}
}
