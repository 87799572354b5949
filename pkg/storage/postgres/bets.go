package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const betColumns = "bet_id, chat_id, creator_id, bet_type, description, deadline, target_user_id, status, stake_count, created_at, updated_at, resolved_at"

func scanBet(row pgx.Row) (models.Bet, error) {
	var b models.Bet
	err := row.Scan(&b.BetID, &b.ChatID, &b.CreatorID, &b.BetType, &b.Description, &b.Deadline,
		&b.TargetUserID, &b.Status, &b.StakeCount, &b.CreatedAt, &b.UpdatedAt, &b.ResolvedAt)
	return b, err
}

func collectBets(rows pgx.Rows) ([]models.Bet, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Bet, error) {
		return scanBet(row)
	})
}

// CreateBet stores a new bet, charging fee in the same transaction when set.
func (s *Store) CreateBet(ctx context.Context, bet *models.Bet, fee *storage.BalanceChange) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO bets ("+betColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
			bet.BetID, bet.ChatID, bet.CreatorID, string(bet.BetType), bet.Description, bet.Deadline,
			bet.TargetUserID, string(bet.Status), bet.StakeCount, bet.CreatedAt, bet.UpdatedAt, bet.ResolvedAt,
		)
		if err != nil {
			return fmt.Errorf("bet insert failed: %w", err)
		}
		if fee == nil {
			return nil
		}
		return applyChange(ctx, tx, *fee)
	})
}

// GetBet retrieves a bet by its ID.
func (s *Store) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	bet, err := scanBet(s.Db.QueryRow(ctx, "SELECT "+betColumns+" FROM bets WHERE bet_id = $1", betID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return &bet, nil
}

// ListBetsByChat retrieves a chat's bets newest first, optionally filtered by status.
func (s *Store) ListBetsByChat(ctx context.Context, chatID string, status *models.BetStatus, limit int32) ([]models.Bet, error) {
	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}
	rows, err := s.Db.Query(ctx,
		`SELECT `+betColumns+`
		   FROM bets
		  WHERE chat_id = $1 AND ($2::text IS NULL OR status = $2::text)
		  ORDER BY created_at DESC
		  LIMIT $3`,
		chatID, statusArg, limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets by chat: %w", err)
	}
	bets, err := collectBets(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan bets: %w", err)
	}
	return bets, nil
}

// ListExpiredBets retrieves active bets whose deadline is before now.
func (s *Store) ListExpiredBets(ctx context.Context, now time.Time) ([]models.Bet, error) {
	rows, err := s.Db.Query(ctx,
		"SELECT "+betColumns+" FROM bets WHERE status = $1 AND deadline < $2 ORDER BY deadline",
		string(models.BetStatusActive), now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query for expired bets: %w", err)
	}
	bets, err := collectBets(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired bets: %w", err)
	}
	return bets, nil
}
