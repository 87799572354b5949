package aura

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/chris/aura-wagers/pkg/metrics"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
	"github.com/chris/aura-wagers/pkg/websockets"
)

// ResolveResult is what a successful resolution produced.
type ResolveResult struct {
	Resolution *models.Resolution
	Bet        *models.Bet
	Settlement Settlement
}

// Resolve ends a bet on behalf of its creator or target.
func (e *Engine) Resolve(ctx context.Context, betID, resolvedBy string, outcome models.Outcome, notes string) (*ResolveResult, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.Status != models.BetStatusActive {
		return nil, ErrAlreadyResolved
	}
	if resolvedBy == "" || (resolvedBy != bet.CreatorID && resolvedBy != bet.TargetUserID) {
		return nil, ErrNotAuthorized.WithMessage("only the creator or target can resolve this bet")
	}
	if !outcome.Valid() {
		return nil, ErrInvalidOutcome
	}
	if outcome == models.OutcomeDucked && bet.BetType != models.BetTypeCallout {
		return nil, ErrInvalidOutcomeForType
	}
	if utf8.RuneCountInString(notes) > e.policy.MaxNotes {
		return nil, ErrInvalidNotes
	}
	return e.resolve(ctx, bet, resolvedBy, outcome, notes)
}

// resolve writes the terminal transition, the resolution, every payout and the reputation
// changes as one batch. A conflict recomputes the batch from a fresh read.
func (e *Engine) resolve(ctx context.Context, bet *models.Bet, resolvedBy string, outcome models.Outcome, notes string) (*ResolveResult, error) {
	var batch storage.ResolutionBatch
	var settlement Settlement

	err := e.retry(ctx, "resolve", func(attempt int) error {
		if attempt > 0 {
			fresh, err := e.getBet(ctx, bet.BetID)
			if err != nil {
				return err
			}
			bet = fresh
		}
		if bet.Status != models.BetStatusActive {
			return ErrAlreadyResolved
		}

		stakes, err := e.ListStakes(ctx, bet.BetID)
		if err != nil {
			return err
		}
		if int64(len(stakes)) != bet.StakeCount {
			// A stake landed between reading the bet and listing its stakes.
			return storage.ErrVersionConflict
		}
		settlement = Settle(stakes, outcome)

		changes := make([]storage.BalanceChange, 0, len(settlement.Payouts))
		for _, p := range settlement.Payouts {
			acct, err := e.GetAccount(ctx, p.UserID)
			if err != nil {
				return err
			}
			changes = append(changes, e.balanceChange(acct, p.Amount, p.Type, bet.BetID))
		}

		batch = storage.ResolutionBatch{
			Bet:    *bet,
			Status: outcome.TerminalStatus(),
			Resolution: models.Resolution{
				ResolutionID: e.newID(),
				BetID:        bet.BetID,
				Outcome:      outcome,
				ResolvedBy:   resolvedBy,
				ResolvedAt:   e.now(),
				Notes:        notes,
			},
			Changes:    changes,
			Reputation: e.policy.Vibe.Deltas(bet, outcome),
		}
		return e.store.ResolveBet(ctx, batch)
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyResolved):
		return nil, ErrAlreadyResolved
	case errors.Is(err, storage.ErrBetNotFound):
		return nil, ErrBetNotFound
	default:
		return nil, err
	}

	resolved := batch.Bet
	resolved.Status = batch.Status
	resolved.UpdatedAt = batch.Resolution.ResolvedAt
	resolvedAt := batch.Resolution.ResolvedAt
	resolved.ResolvedAt = &resolvedAt

	metrics.BetsResolved.WithLabelValues(string(outcome)).Inc()
	for _, p := range settlement.Payouts {
		metrics.AuraPaidOut.WithLabelValues(string(p.Type)).Add(float64(p.Amount))
	}
	metrics.PayoutRemainder.Add(float64(settlement.Remainder))
	e.logger.InfoContext(ctx, "bet resolved",
		"betId", resolved.BetID,
		"outcome", outcome,
		"resolvedBy", resolvedBy,
		"totalPot", settlement.Totals.TotalPot,
		"paid", settlement.Paid(),
		"remainder", settlement.Remainder,
	)

	txs := make([]models.Transaction, 0, len(batch.Changes))
	for _, c := range batch.Changes {
		txs = append(txs, c.Transaction)
	}
	e.publishTransactions(ctx, txs...)
	msg := websockets.Message{
		Type: websockets.MessageTypeBetResolved,
		Payload: websockets.BetResolvedPayload{
			BetID:    resolved.BetID,
			ChatID:   resolved.ChatID,
			Outcome:  string(outcome),
			Status:   string(resolved.Status),
			TotalPot: settlement.Totals.TotalPot,
		},
	}
	if err := e.publisher.Publish(ctx, msg); err != nil {
		e.logger.ErrorContext(ctx, "failed to publish bet resolution", "betId", resolved.BetID, "error", err)
	}

	return &ResolveResult{Resolution: &batch.Resolution, Bet: &resolved, Settlement: settlement}, nil
}

// GetResolution returns a bet's resolution, or nil if it has not been resolved.
func (e *Engine) GetResolution(ctx context.Context, betID string) (*models.Resolution, error) {
	if _, err := e.getBet(ctx, betID); err != nil {
		return nil, err
	}
	res, err := e.store.GetResolution(ctx, betID)
	if errors.Is(err, storage.ErrResolutionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}
	return res, nil
}
