package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/handlers/ledger"
	"github.com/chris/aura-wagers/pkg/middleware"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	args := m.Called(ctx, userID)
	acct, _ := args.Get(0).(*models.Account)
	return acct, args.Error(1)
}

func (m *mockEngine) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

func (m *mockEngine) ClaimDailyBonus(ctx context.Context, userID string) (*models.Transaction, error) {
	args := m.Called(ctx, userID)
	tx, _ := args.Get(0).(*models.Transaction)
	return tx, args.Error(1)
}

func (m *mockEngine) GetReputation(ctx context.Context, userID string) (*models.Reputation, error) {
	args := m.Called(ctx, userID)
	rep, _ := args.Get(0).(*models.Reputation)
	return rep, args.Error(1)
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), userID, ""))
}

func TestListTransactions(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		engine := new(mockEngine)
		expected := []models.Transaction{
			{TransactionID: "tx-2", UserID: "alice", Amount: -10, Type: models.TransactionTypeStake, CreatedAt: time.Now()},
			{TransactionID: "tx-1", UserID: "alice", Amount: 100, Type: models.TransactionTypeDailyBonus, CreatedAt: time.Now().Add(-time.Minute)},
		}
		engine.On("ListTransactions", mock.Anything, "alice", 5).Return(expected, nil)

		h := ledger.NewLedgerHandler(engine)
		req := asUser(httptest.NewRequest(http.MethodGet, "/aura/transactions?limit=5", nil), "alice")
		rr := httptest.NewRecorder()
		limit := 5

		// Act
		h.ListTransactions(rr, req, api.ListTransactionsParams{Limit: &limit})

		// Assert
		assert.Equal(t, http.StatusOK, rr.Code)
		var list api.TransactionList
		json.Unmarshal(rr.Body.Bytes(), &list)
		assert.Equal(t, 2, list.Count)
		assert.Equal(t, "tx-2", list.Transactions[0].TransactionId)

		engine.AssertExpectations(t)
	})

	t.Run("Default Limit", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("ListTransactions", mock.Anything, "alice", 0).Return([]models.Transaction{}, nil)

		h := ledger.NewLedgerHandler(engine)
		req := asUser(httptest.NewRequest(http.MethodGet, "/aura/transactions", nil), "alice")
		rr := httptest.NewRecorder()

		h.ListTransactions(rr, req, api.ListTransactionsParams{})

		assert.Equal(t, http.StatusOK, rr.Code)
		engine.AssertExpectations(t)
	})

	t.Run("Explicit Zero Limit", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("ListTransactions", mock.Anything, "alice", 1).Return([]models.Transaction{}, nil)

		h := ledger.NewLedgerHandler(engine)
		req := asUser(httptest.NewRequest(http.MethodGet, "/aura/transactions?limit=0", nil), "alice")
		rr := httptest.NewRecorder()
		limit := 0

		h.ListTransactions(rr, req, api.ListTransactionsParams{Limit: &limit})

		assert.Equal(t, http.StatusOK, rr.Code)
		engine.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("ListTransactions", mock.Anything, mock.Anything, mock.Anything).Return(nil, assert.AnError)

		h := ledger.NewLedgerHandler(engine)
		req := asUser(httptest.NewRequest(http.MethodGet, "/aura/transactions", nil), "alice")
		rr := httptest.NewRecorder()

		h.ListTransactions(rr, req, api.ListTransactionsParams{})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
		engine.AssertExpectations(t)
	})

	t.Run("Anonymous", func(t *testing.T) {
		engine := new(mockEngine)
		h := ledger.NewLedgerHandler(engine)
		rr := httptest.NewRecorder()

		h.ListTransactions(rr, httptest.NewRequest(http.MethodGet, "/aura/transactions", nil), api.ListTransactionsParams{})

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		engine.AssertNotCalled(t, "ListTransactions", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClaimDailyBonus(t *testing.T) {
	t.Run("Already Claimed", func(t *testing.T) {
		engine := new(mockEngine)
		engine.On("ClaimDailyBonus", mock.Anything, "bob").Return(nil, aura.ErrBonusAlreadyClaimed)

		h := ledger.NewLedgerHandler(engine)
		rr := httptest.NewRecorder()

		h.ClaimDailyBonus(rr, asUser(httptest.NewRequest(http.MethodPost, "/aura/daily-bonus", nil), "bob"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var body api.Error
		json.Unmarshal(rr.Body.Bytes(), &body)
		assert.Equal(t, "BonusAlreadyClaimed", body.Error)
		engine.AssertExpectations(t)
	})
}

func TestGetReputation(t *testing.T) {
	engine := new(mockEngine)
	engine.On("GetReputation", mock.Anything, "carol").Return(&models.Reputation{UserID: "carol", CalloutsIgnored: 2, VibeScore: -30}, nil)

	h := ledger.NewLedgerHandler(engine)
	rr := httptest.NewRecorder()

	h.GetReputation(rr, httptest.NewRequest(http.MethodGet, "/users/carol/reputation", nil), "carol")

	assert.Equal(t, http.StatusOK, rr.Code)
	var rep api.Reputation
	json.Unmarshal(rr.Body.Bytes(), &rep)
	assert.Equal(t, int64(-30), rep.VibeScore)
	assert.Equal(t, int64(2), rep.CalloutsIgnored)
	engine.AssertExpectations(t)
}
