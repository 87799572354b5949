package aura

import (
	"context"
	"fmt"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// Deltas returns the reputation changes for resolving bet with outcome.
// Expired bets change nothing.
func (p VibePolicy) Deltas(bet *models.Bet, outcome models.Outcome) []storage.ReputationDelta {
	actor := bet.Actor()
	switch outcome {
	case models.OutcomeYes:
		return []storage.ReputationDelta{{UserID: actor, BetsCompleted: 1, VibeScore: p.CompletionReward}}
	case models.OutcomeNo:
		return []storage.ReputationDelta{{UserID: actor, BetsFailed: 1, VibeScore: -p.FailurePenalty}}
	case models.OutcomeDucked:
		if bet.TargetUserID == "" {
			return nil
		}
		return []storage.ReputationDelta{{UserID: bet.TargetUserID, CalloutsIgnored: 1, VibeScore: -p.DuckPenalty}}
	}
	return nil
}

// GetReputation returns a user's counters.
func (e *Engine) GetReputation(ctx context.Context, userID string) (*models.Reputation, error) {
	rep, err := e.store.GetReputation(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reputation: %w", err)
	}
	return rep, nil
}
