package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardtycoon/cardtycoon/internal/daily"
)

// ClaimDailyRequest claims the daily bonus and automated stock sales.
type ClaimDailyRequest struct {
	AccountID string `json:"account_id" validate:"required"`
}

// HandleClaimDaily runs the daily cycle for one account.
func HandleClaimDaily(svc daily.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ClaimDailyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		result, err := svc.Claim(r.Context(), req.AccountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, result)
	}
}
