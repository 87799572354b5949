package ledger

import (
	"context"
	"net/http"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/handlers/respond"
	"github.com/chris/aura-wagers/pkg/mapping"
	"github.com/chris/aura-wagers/pkg/models"
)

// Engine is the part of the wagering engine the ledger handlers use.
type Engine interface {
	GetAccount(ctx context.Context, userID string) (*models.Account, error)
	ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error)
	ClaimDailyBonus(ctx context.Context, userID string) (*models.Transaction, error)
	GetReputation(ctx context.Context, userID string) (*models.Reputation, error)
}

// LedgerHandler holds the dependencies for ledger and reputation handlers.
type LedgerHandler struct {
	Engine Engine
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(engine Engine) *LedgerHandler {
	return &LedgerHandler{Engine: engine}
}

// GetBalance returns the caller's account, opening it on first use.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	acct, err := h.Engine.GetAccount(r.Context(), callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiBalance(acct))
}

// ListTransactions returns the caller's most recent transactions.
func (h *LedgerHandler) ListTransactions(w http.ResponseWriter, r *http.Request, params api.ListTransactionsParams) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	limit := mapping.Limit(params.Limit)

	txs, err := h.Engine.ListTransactions(r.Context(), callerID, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.TransactionList{Transactions: mapping.ToApiTransactions(txs), Count: len(txs)})
}

// ClaimDailyBonus credits today's bonus once.
func (h *LedgerHandler) ClaimDailyBonus(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	tx, err := h.Engine.ClaimDailyBonus(r.Context(), callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiTransaction(tx))
}

// GetReputation returns a user's track record.
func (h *LedgerHandler) GetReputation(w http.ResponseWriter, r *http.Request, userId string) {
	rep, err := h.Engine.GetReputation(r.Context(), userId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiReputation(rep))
}
