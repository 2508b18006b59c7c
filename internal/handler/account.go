package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardtycoon/cardtycoon/internal/logger"
	"github.com/cardtycoon/cardtycoon/internal/shop"
)

// RegisterRequest creates a new account.
type RegisterRequest struct {
	AccountID string `json:"account_id" validate:"required,min=1,max=128"`
}

// HandleRegister creates an account with the starting balance and one
// queued starter pack.
func HandleRegister(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		account, err := svc.Register(r.Context(), req.AccountID)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to register account", "error", err)
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, account)
	}
}

// HandleGetProfile returns the profile snapshot for ?account_id=.
func HandleGetProfile(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			respondError(w, http.StatusBadRequest, "Missing account_id query parameter")
			return
		}

		profile, err := svc.GetProfile(r.Context(), accountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, profile)
	}
}

// UpgradeRequest upgrades an account's shop by one level.
type UpgradeRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

// HandleUpgradeShop raises the shop level, charging the level-scaled cost.
func HandleUpgradeShop(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req UpgradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		account, err := svc.UpgradeShop(r.Context(), req.AccountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, account)
	}
}

// BuyShelvesRequest purchases additional shelves.
type BuyShelvesRequest struct {
	AccountID string `json:"account_id" validate:"required"`
	Count     int    `json:"count" validate:"required,min=1"`
}

// HandleBuyShelves purchases shelves at escalating cost.
func HandleBuyShelves(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BuyShelvesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		account, err := svc.BuyShelves(r.Context(), req.AccountID, req.Count)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, account)
	}
}

// HandleLeaderboard returns the shop-value ranking.
func HandleLeaderboard(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.GetLeaderboard(r.Context())
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, entries)
	}
}

// HandleCollectionProgress returns per-collection completion for ?account_id=.
func HandleCollectionProgress(svc shop.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			respondError(w, http.StatusBadRequest, "Missing account_id query parameter")
			return
		}

		progress, err := svc.GetCollectionProgress(r.Context(), accountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, progress)
	}
}
