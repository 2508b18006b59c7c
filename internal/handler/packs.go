package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardtycoon/cardtycoon/internal/economy"
	"github.com/cardtycoon/cardtycoon/internal/shop"
)

// BuyPacksRequest purchases packs into the unopened queue.
type BuyPacksRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	PackType  string `json:"pack_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// HandleBuyPacks debits the wallet and enqueues unopened packs.
func HandleBuyPacks(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BuyPacksRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		account, err := svc.BuyPacks(r.Context(), req.AccountID, req.PackType, req.Quantity)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, account)
	}
}

// OpenPackRequest opens the account's oldest queued pack.
type OpenPackRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

// HandleOpenPack opens the oldest queued pack and returns the draws in
// draw order.
func HandleOpenPack(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OpenPackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		result, err := svc.OpenPack(r.Context(), req.AccountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}

// HandlePackInfo returns a pack definition with derived odds for ?type=.
func HandlePackInfo(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		packType := r.URL.Query().Get("type")
		if packType == "" {
			respondError(w, http.StatusBadRequest, "Missing type query parameter")
			return
		}

		info, err := svc.GetPackInfo(r.Context(), packType)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, info)
	}
}

// BuyStockRequest purchases store stock for the daily cycle.
type BuyStockRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	PackType  string `json:"pack_type" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// HandleBuyStock debits the wallet and credits store stock.
func HandleBuyStock(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BuyStockRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		account, err := svc.BuyStock(r.Context(), req.AccountID, req.PackType, req.Quantity)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, account)
	}
}

// GiftCardRequest transfers one unlocked card to another account.
type GiftCardRequest struct {
	FromID     string `json:"from_id" validate:"required"`
	ToID       string `json:"to_id" validate:"required"`
	InstanceID string `json:"instance_id" validate:"required"`
}

// HandleGiftCard transfers a card between accounts.
func HandleGiftCard(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GiftCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.GiftCard(r.Context(), req.FromID, req.ToID, req.InstanceID); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Card gifted"})
	}
}

// GiftPacksRequest moves unopened packs to another account, oldest first.
type GiftPacksRequest struct {
	FromID   string `json:"from_id" validate:"required"`
	ToID     string `json:"to_id" validate:"required"`
	PackType string `json:"pack_type" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

// GiftPacksResponse reports how many packs actually moved.
type GiftPacksResponse struct {
	Moved int `json:"moved"`
}

// HandleGiftPacks moves queued packs between accounts.
func HandleGiftPacks(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req GiftPacksRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		moved, err := svc.GiftPacks(r.Context(), req.FromID, req.ToID, req.PackType, req.Quantity)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, GiftPacksResponse{Moved: moved})
	}
}
