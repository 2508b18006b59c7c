package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtycoon/cardtycoon/internal/daily"
	"github.com/cardtycoon/cardtycoon/internal/domain"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	respondJSON(rec, http.StatusCreated, SuccessResponse{Message: "done"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body SuccessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "done", body.Message)
}

func TestRespondServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not registered", domain.ErrNotRegistered, http.StatusNotFound, ErrMsgNotRegisteredError},
		{"already registered", domain.ErrAlreadyRegistered, http.StatusConflict, ErrMsgAlreadyRegistered},
		{"not found", domain.ErrNotFound, http.StatusNotFound, ErrMsgNotFoundError},
		{"not owned", domain.ErrNotOwned, http.StatusForbidden, ErrMsgNotOwnedError},
		{"locked", domain.ErrLocked, http.StatusConflict, ErrMsgLockedError},
		{"insufficient funds", domain.ErrInsufficientFunds, http.StatusBadRequest, ErrMsgNotEnoughMoneyError},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusBadRequest, ErrMsgNotEnoughStockError},
		{"capacity", domain.ErrCapacityExceeded, http.StatusBadRequest, ErrMsgInventoryFullError},
		{"quantity", domain.ErrInvalidQuantity, http.StatusBadRequest, ErrMsgInvalidQuantityErr},
		{"price", domain.ErrInvalidPrice, http.StatusBadRequest, ErrMsgInvalidPriceError},
		{"self trade", domain.ErrSelfTrade, http.StatusBadRequest, ErrMsgSelfTradeError},
		{"unauthorized", domain.ErrUnauthorized, http.StatusForbidden, ErrMsgUnauthorizedError},
		{"session closed", domain.ErrSessionClosed, http.StatusConflict, ErrMsgSessionClosedError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, ErrMsgGenericServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantMsg, body.Error)
		})
	}
}

func TestRespondServiceErrorWrappedErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, fmt.Errorf("card c1 is held by trade:s1: %w", domain.ErrLocked))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRespondServiceErrorCooldown(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, daily.ErrOnCooldown{Remaining: 90 * time.Minute})

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Error, "remaining")
}
