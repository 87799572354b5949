package storage

import (
	"context"

	"github.com/chris/aura-wagers/pkg/models"
)

// ReputationDelta is an additive change to a user's reputation counters.
type ReputationDelta struct {
	UserID          string
	BetsCompleted   int64
	BetsFailed      int64
	CalloutsIgnored int64
	VibeScore       int64
}

// ResolutionBatch is everything written when a bet ends. It commits whole or not at all.
type ResolutionBatch struct {
	// Bet is the snapshot the batch was computed from. The write requires the stored bet
	// to still be active with the same stake count.
	Bet        models.Bet
	Status     models.BetStatus
	Resolution models.Resolution
	Changes    []BalanceChange
	Reputation []ReputationDelta
}

// ResolutionStore defines the interface for terminal bet transitions.
type ResolutionStore interface {
	// ResolveBet commits a resolution batch. It returns ErrAlreadyResolved if the bet left the
	// active state and ErrVersionConflict if a stake or balance moved since the snapshot.
	ResolveBet(ctx context.Context, batch ResolutionBatch) error

	// GetResolution retrieves a bet's resolution.
	GetResolution(ctx context.Context, betID string) (*models.Resolution, error)
}

// ReputationReader defines the interface for reading reputation counters.
type ReputationReader interface {
	// GetReputation retrieves a user's counters. Unknown users have zero counters.
	GetReputation(ctx context.Context, userID string) (*models.Reputation, error)
}
