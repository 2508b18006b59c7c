package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/cardtycoon/cardtycoon/internal/economy"
)

// HandleGetInventory lists an account's cards newest-first, paginated with
// ?limit= and ?offset=.
func HandleGetInventory(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account_id")
		if accountID == "" {
			respondError(w, http.StatusBadRequest, "Missing account_id query parameter")
			return
		}

		limit, err := queryInt(r, "limit", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid limit parameter")
			return
		}
		offset, err := queryInt(r, "offset", 0)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid offset parameter")
			return
		}

		page, err := svc.GetInventory(r.Context(), accountID, limit, offset)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, page)
	}
}

// HandleGetCard looks up one owned instance by ?account_id= and ?instance_id=.
func HandleGetCard(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID := r.URL.Query().Get("account_id")
		instanceID := r.URL.Query().Get("instance_id")
		if accountID == "" || instanceID == "" {
			respondError(w, http.StatusBadRequest, "Missing account_id or instance_id query parameter")
			return
		}

		card, err := svc.GetCard(r.Context(), accountID, instanceID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, card)
	}
}

// SellCardRequest sells one owned card back to the shop.
type SellCardRequest struct {
	AccountID  string `json:"account_id" validate:"required"`
	InstanceID string `json:"instance_id" validate:"required"`
}

// SellCardResponse reports the credited price.
type SellCardResponse struct {
	Price int `json:"price"`
}

// HandleSellCard destroys the instance and credits its sell price.
func HandleSellCard(svc economy.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SellCardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		price, err := svc.SellCard(r.Context(), req.AccountID, req.InstanceID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SellCardResponse{Price: price})
	}
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
