package storage

import (
	"context"

	"github.com/chris/aura-wagers/pkg/models"
)

// BalanceChange is one conditional mutation of an account together with its audit record.
// It only applies if the account is still at ExpectedVersion and the balance stays non-negative.
type BalanceChange struct {
	UserID          string
	ExpectedVersion int64
	Amount          int64 // signed
	EarnedDelta     int64
	SpentDelta      int64
	// BonusDate, when set, records the day a daily bonus was granted.
	BonusDate   string
	Transaction models.Transaction
}

// LedgerReader defines the interface for reading balances and history.
type LedgerReader interface {
	// GetAccount retrieves a user's account.
	GetAccount(ctx context.Context, userID string) (*models.Account, error)

	// ListTransactionsByUserID retrieves a user's most recent transactions, newest first.
	ListTransactionsByUserID(ctx context.Context, userID string, limit int32) ([]models.Transaction, error)
}

// LedgerWriter defines the interface for mutating balances.
// All balance mutations in the system go through a BalanceChange.
type LedgerWriter interface {
	// OpenAccount creates an account together with the transaction granting its opening balance.
	OpenAccount(ctx context.Context, account *models.Account, grant *models.Transaction) error

	// ApplyBalanceChange atomically updates the account and appends the transaction.
	ApplyBalanceChange(ctx context.Context, change BalanceChange) error
}

// LedgerStore combines the reader and writer interfaces.
type LedgerStore interface {
	LedgerReader
	LedgerWriter
}
