package handler

import (
	"encoding/json"
	"net/http"

	"github.com/cardtycoon/cardtycoon/internal/trade"
)

// StartTradeRequest opens a trade session between two accounts.
type StartTradeRequest struct {
	InitiatorID string `json:"initiator_id" validate:"required"`
	PartnerID   string `json:"partner_id" validate:"required"`
}

// HandleStartTrade opens a trade session.
func HandleStartTrade(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartTradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		session, err := svc.Start(r.Context(), req.InitiatorID, req.PartnerID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, session)
	}
}

// AddOfferRequest appends cards to the caller's side of a session.
type AddOfferRequest struct {
	SessionID   string   `json:"session_id" validate:"required"`
	AccountID   string   `json:"account_id" validate:"required"`
	InstanceIDs []string `json:"instance_ids" validate:"required,min=1"`
}

// AddOfferResponse reports which instances were actually locked.
type AddOfferResponse struct {
	Locked []string `json:"locked"`
}

// HandleAddOffer locks the valid subset of the offered cards.
func HandleAddOffer(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AddOfferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		locked, err := svc.AddOffer(r.Context(), req.SessionID, req.AccountID, req.InstanceIDs)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, AddOfferResponse{Locked: locked})
	}
}

// ConfirmTradeRequest confirms the caller's side of a session.
type ConfirmTradeRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
}

// HandleConfirmTrade confirms; when both sides have confirmed, the swap
// executes and the returned session is completed.
func HandleConfirmTrade(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ConfirmTradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		session, err := svc.Confirm(r.Context(), req.SessionID, req.AccountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, session)
	}
}

// CancelTradeRequest cancels a session, releasing all locks.
type CancelTradeRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	AccountID string `json:"account_id" validate:"required"`
}

// HandleCancelTrade cancels the session.
func HandleCancelTrade(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CancelTradeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
			return
		}
		if msg, ok := validateRequest(&req); !ok {
			respondError(w, http.StatusBadRequest, msg)
			return
		}

		if err := svc.Cancel(r.Context(), req.SessionID, req.AccountID); err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Trade cancelled"})
	}
}

// HandleGetTrade returns a session snapshot for ?session_id= and ?account_id=.
func HandleGetTrade(svc trade.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("session_id")
		accountID := r.URL.Query().Get("account_id")
		if sessionID == "" || accountID == "" {
			respondError(w, http.StatusBadRequest, "Missing session_id or account_id query parameter")
			return
		}

		session, err := svc.GetSession(r.Context(), sessionID, accountID)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, session)
	}
}
