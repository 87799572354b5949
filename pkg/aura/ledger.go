package aura

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100

	startingBalanceReference = "starting-balance"
	bonusDateLayout          = "2006-01-02"
)

// clampLimit maps a list limit into [1, maxListLimit]. Zero selects the default.
func clampLimit(limit int) int32 {
	if limit == 0 {
		return defaultListLimit
	}
	if limit < 1 {
		return 1
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return int32(limit)
}

// GetAccount returns the user's account, opening it with the starting balance on first use.
func (e *Engine) GetAccount(ctx context.Context, userID string) (*models.Account, error) {
	acct, err := e.store.GetAccount(ctx, userID)
	if err == nil {
		return acct, nil
	}
	if !errors.Is(err, storage.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	now := e.now()
	acct = &models.Account{
		UserID:         userID,
		AuraBalance:    e.policy.StartingBalance,
		LifetimeEarned: e.policy.StartingBalance,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	var grant *models.Transaction
	if e.policy.StartingBalance > 0 {
		grant = &models.Transaction{
			TransactionID: e.newID(),
			UserID:        userID,
			Amount:        e.policy.StartingBalance,
			BalanceAfter:  e.policy.StartingBalance,
			Type:          models.TransactionTypeDailyBonus,
			ReferenceID:   startingBalanceReference,
			CreatedAt:     now,
		}
	}

	err = e.store.OpenAccount(ctx, acct, grant)
	if errors.Is(err, storage.ErrAccountExists) {
		// Opened concurrently by another request.
		return e.store.GetAccount(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open account: %w", err)
	}
	e.logger.InfoContext(ctx, "opened aura account", "userId", userID, "startingBalance", acct.AuraBalance)
	return acct, nil
}

// GetBalance returns the user's current Aura balance.
func (e *Engine) GetBalance(ctx context.Context, userID string) (int64, error) {
	acct, err := e.GetAccount(ctx, userID)
	if err != nil {
		return 0, err
	}
	return acct.AuraBalance, nil
}

// balanceChange builds the conditional write moving acct by amount.
func (e *Engine) balanceChange(acct *models.Account, amount int64, txType models.TransactionType, referenceID string) storage.BalanceChange {
	change := storage.BalanceChange{
		UserID:          acct.UserID,
		ExpectedVersion: acct.Version,
		Amount:          amount,
		Transaction: models.Transaction{
			TransactionID: e.newID(),
			UserID:        acct.UserID,
			Amount:        amount,
			BalanceAfter:  acct.AuraBalance + amount,
			Type:          txType,
			ReferenceID:   referenceID,
			CreatedAt:     e.now(),
		},
	}
	switch {
	case amount < 0:
		change.SpentDelta = -amount
	case txType == models.TransactionTypeRefund:
		change.SpentDelta = -amount
	default:
		change.EarnedDelta = amount
	}
	return change
}

// Debit removes amount from the user's balance.
func (e *Engine) Debit(ctx context.Context, userID string, amount int64, txType models.TransactionType, referenceID string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return e.applyToAccount(ctx, userID, -amount, txType, referenceID)
}

// Credit adds amount to the user's balance.
func (e *Engine) Credit(ctx context.Context, userID string, amount int64, txType models.TransactionType, referenceID string) (*models.Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	return e.applyToAccount(ctx, userID, amount, txType, referenceID)
}

func (e *Engine) applyToAccount(ctx context.Context, userID string, amount int64, txType models.TransactionType, referenceID string) (*models.Transaction, error) {
	var tx models.Transaction
	err := e.retry(ctx, "ledger", func(int) error {
		acct, err := e.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		if acct.AuraBalance+amount < 0 {
			return ErrInsufficientAura
		}
		change := e.balanceChange(acct, amount, txType, referenceID)
		if err := e.store.ApplyBalanceChange(ctx, change); err != nil {
			return err
		}
		tx = change.Transaction
		return nil
	})
	if errors.Is(err, storage.ErrInsufficientFunds) {
		return nil, ErrInsufficientAura
	}
	if err != nil {
		return nil, err
	}
	e.publishTransactions(ctx, tx)
	return &tx, nil
}

// ClaimDailyBonus credits the daily bonus once per UTC day.
func (e *Engine) ClaimDailyBonus(ctx context.Context, userID string) (*models.Transaction, error) {
	date := e.now().UTC().Format(bonusDateLayout)
	var tx models.Transaction
	err := e.retry(ctx, "daily-bonus", func(int) error {
		acct, err := e.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		if acct.LastBonusDate == date {
			return ErrBonusAlreadyClaimed
		}
		change := e.balanceChange(acct, e.policy.DailyBonus, models.TransactionTypeDailyBonus, date)
		change.Transaction.TransactionID = fmt.Sprintf("bonus#%s#%s", userID, date)
		change.BonusDate = date
		if err := e.store.ApplyBalanceChange(ctx, change); err != nil {
			return err
		}
		tx = change.Transaction
		return nil
	})
	if errors.Is(err, storage.ErrBonusAlreadyClaimed) {
		return nil, ErrBonusAlreadyClaimed
	}
	if err != nil {
		return nil, err
	}
	e.logger.InfoContext(ctx, "daily bonus claimed", "userId", userID, "amount", tx.Amount)
	e.publishTransactions(ctx, tx)
	return &tx, nil
}

// ListTransactions returns the user's most recent transactions, newest first.
// A zero limit selects the default page size.
func (e *Engine) ListTransactions(ctx context.Context, userID string, limit int) ([]models.Transaction, error) {
	txs, err := e.store.ListTransactionsByUserID(ctx, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}
