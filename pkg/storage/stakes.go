package storage

import (
	"context"
	"time"

	"github.com/chris/aura-wagers/pkg/models"
)

// StakePlacement is the atomic unit of placing a stake.
type StakePlacement struct {
	Stake models.Stake
	// MaxParticipants bounds the bet's stake count.
	MaxParticipants int64
	Now             time.Time
	Debit           BalanceChange
}

// StakeStore defines the interface for the per-bet stake book.
type StakeStore interface {
	// PlaceStake atomically increments the bet's stake count, inserts the stake and debits the staker.
	// It returns ErrBetNotActive, ErrAlreadyStaked, ErrInsufficientFunds or ErrVersionConflict
	// when the corresponding condition fails.
	PlaceStake(ctx context.Context, placement StakePlacement) error

	// GetStake retrieves a user's stake on a bet.
	GetStake(ctx context.Context, betID, userID string) (*models.Stake, error)

	// ListStakes retrieves every stake on a bet.
	ListStakes(ctx context.Context, betID string) ([]models.Stake, error)
}
