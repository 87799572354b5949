package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const stakeColumns = "participant_id, bet_id, user_id, side, amount, created_at"

func scanStake(row pgx.Row) (models.Stake, error) {
	var st models.Stake
	err := row.Scan(&st.ParticipantID, &st.BetID, &st.UserID, &st.Side, &st.Amount, &st.CreatedAt)
	return st, err
}

// PlaceStake bumps the bet's stake count, inserts the stake and debits the staker in one transaction.
// The bet row is locked first, so stakes on one bet serialize behind each other and behind its resolution.
func (s *Store) PlaceStake(ctx context.Context, p storage.StakePlacement) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE bets
			    SET stake_count = stake_count + 1, updated_at = $2
			  WHERE bet_id = $1 AND status = $3 AND deadline >= $2 AND stake_count < $4`,
			p.Stake.BetID, p.Now, string(models.BetStatusActive), p.MaxParticipants,
		)
		if err != nil {
			return fmt.Errorf("bet update failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrBetNotActive
		}

		_, err = tx.Exec(ctx,
			"INSERT INTO stakes ("+stakeColumns+") VALUES ($1, $2, $3, $4, $5, $6)",
			p.Stake.ParticipantID, p.Stake.BetID, p.Stake.UserID, string(p.Stake.Side), p.Stake.Amount, p.Stake.CreatedAt,
		)
		if err != nil {
			if pgCode(err) == codeUniqueViolation {
				return storage.ErrAlreadyStaked
			}
			return fmt.Errorf("stake insert failed: %w", err)
		}

		return applyChange(ctx, tx, p.Debit)
	})
}

// GetStake retrieves a user's stake on a bet.
func (s *Store) GetStake(ctx context.Context, betID, userID string) (*models.Stake, error) {
	st, err := scanStake(s.Db.QueryRow(ctx,
		"SELECT "+stakeColumns+" FROM stakes WHERE bet_id = $1 AND user_id = $2", betID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrStakeNotFound
		}
		return nil, fmt.Errorf("failed to get stake: %w", err)
	}
	return &st, nil
}

// ListStakes retrieves every stake on a bet in placement order.
func (s *Store) ListStakes(ctx context.Context, betID string) ([]models.Stake, error) {
	rows, err := s.Db.Query(ctx,
		"SELECT "+stakeColumns+" FROM stakes WHERE bet_id = $1 ORDER BY created_at, user_id", betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stakes: %w", err)
	}
	stakes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Stake, error) {
		return scanStake(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan stakes: %w", err)
	}
	return stakes, nil
}
