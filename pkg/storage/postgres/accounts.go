package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const accountColumns = "user_id, aura_balance, lifetime_earned, lifetime_spent, version, last_bonus_date, created_at, updated_at"

// GetAccount retrieves a user's account.
func (s *Store) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	var a models.Account
	err := s.Db.QueryRow(ctx, "SELECT "+accountColumns+" FROM accounts WHERE user_id = $1", userID).
		Scan(&a.UserID, &a.AuraBalance, &a.LifetimeEarned, &a.LifetimeSpent, &a.Version, &a.LastBonusDate, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// OpenAccount creates an account together with its opening grant.
func (s *Store) OpenAccount(ctx context.Context, account *models.Account, grant *models.Transaction) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"INSERT INTO accounts ("+accountColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (user_id) DO NOTHING",
			account.UserID, account.AuraBalance, account.LifetimeEarned, account.LifetimeSpent,
			account.Version, account.LastBonusDate, account.CreatedAt, account.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("account insert failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrAccountExists
		}
		if grant == nil {
			return nil
		}
		return insertTransaction(ctx, tx, *grant, "")
	})
}

// ApplyBalanceChange updates the account and appends the transaction.
func (s *Store) ApplyBalanceChange(ctx context.Context, change storage.BalanceChange) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		return applyChange(ctx, tx, change)
	})
}

// ListTransactionsByUserID retrieves a user's most recent transactions, newest first.
func (s *Store) ListTransactionsByUserID(ctx context.Context, userID string, limit int32) ([]models.Transaction, error) {
	rows, err := s.Db.Query(ctx,
		`SELECT transaction_id, user_id, amount, balance_after, type, reference_id, created_at
		   FROM transactions
		  WHERE user_id = $1
		  ORDER BY created_at DESC, seq DESC
		  LIMIT $2`,
		userID, limitArg(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	txs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		var t models.Transaction
		err := row.Scan(&t.TransactionID, &t.UserID, &t.Amount, &t.BalanceAfter, &t.Type, &t.ReferenceID, &t.CreatedAt)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan transactions: %w", err)
	}
	return txs, nil
}

// applyChange performs the guarded account update and the transaction insert of one change.
func applyChange(ctx context.Context, tx pgx.Tx, change storage.BalanceChange) error {
	tag, err := tx.Exec(ctx,
		`UPDATE accounts
		    SET aura_balance = aura_balance + $1,
		        lifetime_earned = lifetime_earned + $2,
		        lifetime_spent = lifetime_spent + $3,
		        version = version + 1,
		        updated_at = $4,
		        last_bonus_date = CASE WHEN $5::text = '' THEN last_bonus_date ELSE $5::text END
		  WHERE user_id = $6
		    AND version = $7
		    AND aura_balance + $1 >= 0
		    AND ($5::text = '' OR last_bonus_date <> $5::text)`,
		change.Amount, change.EarnedDelta, change.SpentDelta, change.Transaction.CreatedAt,
		change.BonusDate, change.UserID, change.ExpectedVersion,
	)
	if err != nil {
		return fmt.Errorf("account update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return changeFailure(ctx, tx, change)
	}
	return insertTransaction(ctx, tx, change.Transaction, change.BonusDate)
}

// changeFailure explains why the guarded update of change matched no row.
func changeFailure(ctx context.Context, tx pgx.Tx, change storage.BalanceChange) error {
	var version, balance int64
	var bonusDate string
	err := tx.QueryRow(ctx, "SELECT version, aura_balance, last_bonus_date FROM accounts WHERE user_id = $1", change.UserID).
		Scan(&version, &balance, &bonusDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrAccountNotFound
		}
		return fmt.Errorf("failed to read account: %w", err)
	}
	switch {
	case version != change.ExpectedVersion:
		return storage.ErrVersionConflict
	case balance+change.Amount < 0:
		return storage.ErrInsufficientFunds
	case change.BonusDate != "" && bonusDate == change.BonusDate:
		return storage.ErrBonusAlreadyClaimed
	}
	return storage.ErrVersionConflict
}

func insertTransaction(ctx context.Context, tx pgx.Tx, t models.Transaction, bonusDate string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO transactions (transaction_id, user_id, amount, balance_after, type, reference_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.TransactionID, t.UserID, t.Amount, t.BalanceAfter, string(t.Type), t.ReferenceID, t.CreatedAt,
	)
	if err != nil {
		if pgCode(err) == codeUniqueViolation {
			// Only daily bonuses use deterministic transaction IDs.
			if bonusDate != "" {
				return storage.ErrBonusAlreadyClaimed
			}
			return storage.ErrVersionConflict
		}
		return fmt.Errorf("transaction insert failed: %w", err)
	}
	return nil
}
