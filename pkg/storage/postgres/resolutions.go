package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// ResolveBet commits a resolution batch in one transaction.
// Accounts are updated in user ID order so concurrent resolutions never deadlock on each other.
func (s *Store) ResolveBet(ctx context.Context, batch storage.ResolutionBatch) error {
	changes := append([]storage.BalanceChange(nil), batch.Changes...)
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].UserID < changes[j].UserID })

	return s.inTx(ctx, func(tx pgx.Tx) error {
		resolvedAt := batch.Resolution.ResolvedAt
		tag, err := tx.Exec(ctx,
			`UPDATE bets
			    SET status = $2, updated_at = $3, resolved_at = $3
			  WHERE bet_id = $1 AND status = $4 AND stake_count = $5`,
			batch.Bet.BetID, string(batch.Status), resolvedAt, string(models.BetStatusActive), batch.Bet.StakeCount,
		)
		if err != nil {
			return fmt.Errorf("bet update failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return betFailure(ctx, tx, batch.Bet.BetID)
		}

		res := batch.Resolution
		_, err = tx.Exec(ctx,
			`INSERT INTO resolutions (bet_id, resolution_id, outcome, resolved_by, resolved_at, notes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			res.BetID, res.ResolutionID, string(res.Outcome), res.ResolvedBy, res.ResolvedAt, res.Notes,
		)
		if err != nil {
			if pgCode(err) == codeUniqueViolation {
				return storage.ErrAlreadyResolved
			}
			return fmt.Errorf("resolution insert failed: %w", err)
		}

		for _, change := range changes {
			if err := applyChange(ctx, tx, change); err != nil {
				return err
			}
		}

		for _, d := range batch.Reputation {
			_, err := tx.Exec(ctx,
				`INSERT INTO reputation (user_id, bets_completed, bets_failed, callouts_ignored, vibe_score)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (user_id) DO UPDATE SET
				     bets_completed = reputation.bets_completed + EXCLUDED.bets_completed,
				     bets_failed = reputation.bets_failed + EXCLUDED.bets_failed,
				     callouts_ignored = reputation.callouts_ignored + EXCLUDED.callouts_ignored,
				     vibe_score = reputation.vibe_score + EXCLUDED.vibe_score`,
				d.UserID, d.BetsCompleted, d.BetsFailed, d.CalloutsIgnored, d.VibeScore,
			)
			if err != nil {
				return fmt.Errorf("reputation update failed: %w", err)
			}
		}
		return nil
	})
}

// betFailure explains why the guarded bet update matched no row.
func betFailure(ctx context.Context, tx pgx.Tx, betID string) error {
	var status string
	err := tx.QueryRow(ctx, "SELECT status FROM bets WHERE bet_id = $1", betID).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrBetNotFound
		}
		return fmt.Errorf("failed to read bet: %w", err)
	}
	if models.BetStatus(status) != models.BetStatusActive {
		return storage.ErrAlreadyResolved
	}
	return storage.ErrVersionConflict
}

// GetResolution retrieves a bet's resolution.
func (s *Store) GetResolution(ctx context.Context, betID string) (*models.Resolution, error) {
	var r models.Resolution
	err := s.Db.QueryRow(ctx,
		"SELECT resolution_id, bet_id, outcome, resolved_by, resolved_at, notes FROM resolutions WHERE bet_id = $1", betID,
	).Scan(&r.ResolutionID, &r.BetID, &r.Outcome, &r.ResolvedBy, &r.ResolvedAt, &r.Notes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrResolutionNotFound
		}
		return nil, fmt.Errorf("failed to get resolution: %w", err)
	}
	return &r, nil
}

// GetReputation retrieves a user's counters. Unknown users read as zeros.
func (s *Store) GetReputation(ctx context.Context, userID string) (*models.Reputation, error) {
	rep := models.Reputation{UserID: userID}
	err := s.Db.QueryRow(ctx,
		"SELECT bets_completed, bets_failed, callouts_ignored, vibe_score FROM reputation WHERE user_id = $1", userID,
	).Scan(&rep.BetsCompleted, &rep.BetsFailed, &rep.CalloutsIgnored, &rep.VibeScore)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to get reputation: %w", err)
	}
	return &rep, nil
}
