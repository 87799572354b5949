package storage

import (
	"context"
	"time"

	"github.com/chris/aura-wagers/pkg/models"
)

// BetReader defines the interface for reading bets.
type BetReader interface {
	// GetBet retrieves a bet by its ID.
	GetBet(ctx context.Context, betID string) (*models.Bet, error)

	// ListBetsByChat retrieves a chat's bets newest first, optionally filtered by status.
	ListBetsByChat(ctx context.Context, chatID string, status *models.BetStatus, limit int32) ([]models.Bet, error)

	// ListExpiredBets retrieves active bets whose deadline is before now.
	ListExpiredBets(ctx context.Context, now time.Time) ([]models.Bet, error)
}

// BetWriter defines the interface for opening bets.
// Terminal transitions are only written by ResolutionStore.ResolveBet.
type BetWriter interface {
	// CreateBet stores a new bet, charging the creation fee in the same atomic write when fee is non-nil.
	CreateBet(ctx context.Context, bet *models.Bet, fee *BalanceChange) error
}

// BetStore combines the reader and writer interfaces.
type BetStore interface {
	BetReader
	BetWriter
}
