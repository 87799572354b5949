package aura

import (
	"context"
	"errors"
	"fmt"

	"github.com/chris/aura-wagers/pkg/metrics"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// Participants is a bet's stake list together with its totals.
type Participants struct {
	Stakes []models.Stake
	Totals models.BetTotals
}

// BetDetail is a bet with its stakes, totals and the caller's own stake.
type BetDetail struct {
	Bet          *models.Bet
	Participants []models.Stake
	Totals       models.BetTotals
	MyStake      *models.Stake
}

func (e *Engine) acceptsStakes(bet *models.Bet) bool {
	return bet.Status == models.BetStatusActive && !e.now().After(bet.Deadline)
}

// PlaceStake puts amount of the user's Aura on side. The stake insert, the bet's stake count
// and the debit are one atomic write.
func (e *Engine) PlaceStake(ctx context.Context, betID, userID string, side models.Side, amount int64) (*models.Stake, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if !e.acceptsStakes(bet) {
		return nil, ErrCannotStake
	}
	existing, err := e.GetStake(ctx, betID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyStaked
	}
	if !side.Valid() {
		return nil, ErrInvalidSide
	}
	if amount < e.policy.MinimumStake {
		return nil, ErrMinimumStakeNotMet.WithMessage(fmt.Sprintf("minimum stake is %d", e.policy.MinimumStake))
	}
	if err := e.requireMember(ctx, userID, bet.ChatID, ErrNotChatMember); err != nil {
		return nil, err
	}
	if bet.StakeCount >= e.policy.MaxParticipants {
		return nil, ErrBetFull
	}

	stake := models.Stake{
		ParticipantID: e.newID(),
		BetID:         betID,
		UserID:        userID,
		Side:          side,
		Amount:        amount,
	}
	var debit storage.BalanceChange
	err = e.retry(ctx, "place-stake", func(int) error {
		acct, err := e.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		// Funds are checked by the store after stake uniqueness, so a lost race
		// reports AlreadyStaked rather than InsufficientAura.
		now := e.now()
		stake.CreatedAt = now
		debit = e.balanceChange(acct, -amount, models.TransactionTypeStake, betID)
		return e.store.PlaceStake(ctx, storage.StakePlacement{
			Stake:           stake,
			MaxParticipants: e.policy.MaxParticipants,
			Now:             now,
			Debit:           debit,
		})
	})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrAlreadyStaked):
		return nil, ErrAlreadyStaked
	case errors.Is(err, storage.ErrInsufficientFunds):
		return nil, ErrInsufficientAura
	case errors.Is(err, storage.ErrBetNotActive):
		return nil, e.stakeRejection(ctx, betID)
	default:
		return nil, err
	}

	metrics.StakesPlaced.WithLabelValues(string(side)).Inc()
	metrics.AuraStaked.Add(float64(amount))
	e.logger.InfoContext(ctx, "stake placed", "betId", betID, "userId", userID, "side", side, "amount", amount)
	e.publishTransactions(ctx, debit.Transaction)
	return &stake, nil
}

// stakeRejection explains why the store refused a stake on a bet that looked open.
func (e *Engine) stakeRejection(ctx context.Context, betID string) error {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return err
	}
	if e.acceptsStakes(bet) && bet.StakeCount >= e.policy.MaxParticipants {
		return ErrBetFull
	}
	return ErrCannotStake
}

// GetStake returns the user's stake on a bet, or nil if they have none.
func (e *Engine) GetStake(ctx context.Context, betID, userID string) (*models.Stake, error) {
	stake, err := e.store.GetStake(ctx, betID, userID)
	if errors.Is(err, storage.ErrStakeNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stake: %w", err)
	}
	return stake, nil
}

// ListStakes returns every stake on a bet in placement order.
func (e *Engine) ListStakes(ctx context.Context, betID string) ([]models.Stake, error) {
	stakes, err := e.store.ListStakes(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stakes: %w", err)
	}
	return stakes, nil
}

// GetTotals recomputes a bet's totals from its stakes.
func (e *Engine) GetTotals(ctx context.Context, betID string) (models.BetTotals, error) {
	if _, err := e.getBet(ctx, betID); err != nil {
		return models.BetTotals{}, err
	}
	stakes, err := e.ListStakes(ctx, betID)
	if err != nil {
		return models.BetTotals{}, err
	}
	return Totals(stakes), nil
}

// Participants lists a bet's stakes for a caller who belongs to the bet's chat.
func (e *Engine) Participants(ctx context.Context, betID, callerID string) (*Participants, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if err := e.requireMember(ctx, callerID, bet.ChatID, ErrNotChatMember); err != nil {
		return nil, err
	}
	stakes, err := e.ListStakes(ctx, betID)
	if err != nil {
		return nil, err
	}
	return &Participants{Stakes: stakes, Totals: Totals(stakes)}, nil
}

// BetDetail returns a bet with everything a client renders for it.
func (e *Engine) BetDetail(ctx context.Context, betID, callerID string) (*BetDetail, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	stakes, err := e.ListStakes(ctx, betID)
	if err != nil {
		return nil, err
	}
	detail := &BetDetail{Bet: bet, Participants: stakes, Totals: Totals(stakes)}
	for i := range stakes {
		if stakes[i].UserID == callerID {
			detail.MyStake = &stakes[i]
			break
		}
	}
	return detail, nil
}
