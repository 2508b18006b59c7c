package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardtycoon/cardtycoon/internal/domain"
	"github.com/cardtycoon/cardtycoon/internal/shop"
)

// stubShopService returns canned values per call.
type stubShopService struct {
	account  *domain.Account
	profile  *domain.Profile
	entries  []domain.LeaderboardEntry
	progress []shop.CollectionProgress
	packInfo *shop.PackInfo
	err      error
}

func (s *stubShopService) Register(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubShopService) GetProfile(ctx context.Context, accountID string) (*domain.Profile, error) {
	return s.profile, s.err
}

func (s *stubShopService) UpgradeShop(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubShopService) BuyShelves(ctx context.Context, accountID string, count int) (*domain.Account, error) {
	return s.account, s.err
}

func (s *stubShopService) GetLeaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	return s.entries, s.err
}

func (s *stubShopService) GetCollectionProgress(ctx context.Context, accountID string) ([]shop.CollectionProgress, error) {
	return s.progress, s.err
}

func (s *stubShopService) GetPackInfo(ctx context.Context, packType string) (*shop.PackInfo, error) {
	return s.packInfo, s.err
}

func TestHandleRegister(t *testing.T) {
	svc := &stubShopService{account: &domain.Account{ID: "alice", Balance: domain.StartingCoins}}
	handler := HandleRegister(svc)

	body, _ := json.Marshal(RegisterRequest{AccountID: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var account domain.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "alice", account.ID)
	assert.Equal(t, domain.StartingCoins, account.Balance)
}

func TestHandleRegisterValidation(t *testing.T) {
	handler := HandleRegister(&stubShopService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/register", bytes.NewReader([]byte(`{"account_id":""}`)))
	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/account/register", bytes.NewReader([]byte(`not json`)))
	rec = httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRegisterConflict(t *testing.T) {
	handler := HandleRegister(&stubShopService{err: domain.ErrAlreadyRegistered})

	body, _ := json.Marshal(RegisterRequest{AccountID: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/register", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleGetProfile(t *testing.T) {
	svc := &stubShopService{profile: &domain.Profile{
		Account:   domain.Account{ID: "alice"},
		ShopValue: 1460,
	}}
	handler := HandleGetProfile(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/profile?account_id=alice", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var profile domain.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, 1460, profile.ShopValue)
}

func TestHandleGetProfileMissingParam(t *testing.T) {
	handler := HandleGetProfile(&stubShopService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/profile", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleBuyShelvesValidation(t *testing.T) {
	handler := HandleBuyShelves(&stubShopService{})

	body, _ := json.Marshal(BuyShelvesRequest{AccountID: "alice", Count: 0})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/shelves", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleLeaderboard(t *testing.T) {
	svc := &stubShopService{entries: []domain.LeaderboardEntry{
		{AccountID: "bob", ShopValue: 1400, Rank: 1},
		{AccountID: "alice", ShopValue: 1200, Rank: 2},
	}}
	handler := HandleLeaderboard(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leaderboard", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var entries []domain.LeaderboardEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "bob", entries[0].AccountID)
}
