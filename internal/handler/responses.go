package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cardtycoon/cardtycoon/internal/daily"
	"github.com/cardtycoon/cardtycoon/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// bufferPool reduces allocations during JSON encoding
var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 512))
	},
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	buf := bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		bufferPool.Put(buf)
	}()

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		slog.Error("Failed to encode JSON response", "error", err)
		return
	}
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Failed to write response buffer", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgInvalidRequest      = "Invalid request body"
	ErrMsgNotRegisteredError  = "Account is not registered"
	ErrMsgAlreadyRegistered   = "Account is already registered"
	ErrMsgNotFoundError       = "Not found"
	ErrMsgNotOwnedError       = "You don't own that"
	ErrMsgLockedError         = "That card is locked by a trade or listing"
	ErrMsgNotEnoughMoneyError = "Not enough coins"
	ErrMsgNotEnoughStockError = "Not enough store stock"
	ErrMsgInventoryFullError  = "Inventory is full"
	ErrMsgInvalidQuantityErr  = "Quantity must be positive"
	ErrMsgInvalidPriceError   = "Price must be at least 1"
	ErrMsgSelfTradeError      = "You can't do that with yourself"
	ErrMsgUnauthorizedError   = "You are not part of that session"
	ErrMsgSessionClosedError  = "That trade session is already closed"
	ErrMsgOnCooldownError     = "Daily claim is on cooldown"
)

// respondServiceError maps domain errors to HTTP status codes and
// user-facing messages.
func respondServiceError(w http.ResponseWriter, err error) {
	var cooldown daily.ErrOnCooldown
	if errors.As(err, &cooldown) {
		respondJSON(w, http.StatusTooManyRequests, ErrorResponse{Error: cooldown.Error()})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		respondError(w, http.StatusNotFound, ErrMsgNotRegisteredError)
	case errors.Is(err, domain.ErrAlreadyRegistered):
		respondError(w, http.StatusConflict, ErrMsgAlreadyRegistered)
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, ErrMsgNotFoundError)
	case errors.Is(err, domain.ErrNotOwned):
		respondError(w, http.StatusForbidden, ErrMsgNotOwnedError)
	case errors.Is(err, domain.ErrLocked):
		respondError(w, http.StatusConflict, ErrMsgLockedError)
	case errors.Is(err, domain.ErrInsufficientFunds):
		respondError(w, http.StatusBadRequest, ErrMsgNotEnoughMoneyError)
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusBadRequest, ErrMsgNotEnoughStockError)
	case errors.Is(err, domain.ErrCapacityExceeded):
		respondError(w, http.StatusBadRequest, ErrMsgInventoryFullError)
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, ErrMsgInvalidQuantityErr)
	case errors.Is(err, domain.ErrInvalidPrice):
		respondError(w, http.StatusBadRequest, ErrMsgInvalidPriceError)
	case errors.Is(err, domain.ErrSelfTrade):
		respondError(w, http.StatusBadRequest, ErrMsgSelfTradeError)
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusForbidden, ErrMsgUnauthorizedError)
	case errors.Is(err, domain.ErrSessionClosed):
		respondError(w, http.StatusConflict, ErrMsgSessionClosedError)
	default:
		respondError(w, http.StatusInternalServerError, ErrMsgGenericServerError)
	}
}
