package aura

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/chris/aura-wagers/pkg/metrics"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/scheduler"
	"github.com/chris/aura-wagers/pkg/storage"
)

// CreateBetInput holds the fields a creator supplies.
type CreateBetInput struct {
	ChatID       string
	BetType      models.BetType
	Description  string
	Deadline     time.Time
	TargetUserID string
}

func (e *Engine) validateBet(creatorID string, in *CreateBetInput) error {
	if !in.BetType.Valid() {
		return ErrInvalidBetType
	}
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" || utf8.RuneCountInString(in.Description) > e.policy.MaxDescription {
		return ErrInvalidDescription
	}
	// Deadlines are stored at second precision; validate what will be stored.
	in.Deadline = in.Deadline.UTC().Truncate(time.Second)
	if !in.Deadline.After(e.now()) {
		return ErrInvalidDeadline
	}
	in.TargetUserID = strings.TrimSpace(in.TargetUserID)
	switch {
	case in.BetType == models.BetTypeSelf && in.TargetUserID != "":
		return ErrTargetNotAllowed
	case in.BetType != models.BetTypeSelf && in.TargetUserID == "":
		return ErrTargetRequired
	case in.TargetUserID == creatorID:
		return ErrCannotTargetSelf
	}
	return nil
}

// CreateBet opens a bet in a chat and charges the creation cost.
func (e *Engine) CreateBet(ctx context.Context, creatorID string, in CreateBetInput) (*models.Bet, error) {
	if err := e.validateBet(creatorID, &in); err != nil {
		return nil, err
	}
	if err := e.requireMember(ctx, creatorID, in.ChatID, ErrNotChatMember); err != nil {
		return nil, err
	}
	if in.TargetUserID != "" {
		if err := e.requireMember(ctx, in.TargetUserID, in.ChatID, ErrTargetNotInChat); err != nil {
			return nil, err
		}
	}

	now := e.now()
	bet := &models.Bet{
		BetID:        e.newID(),
		ChatID:       in.ChatID,
		CreatorID:    creatorID,
		BetType:      in.BetType,
		Description:  in.Description,
		Deadline:     in.Deadline,
		TargetUserID: in.TargetUserID,
		Status:       models.BetStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	var fee *storage.BalanceChange
	err := e.retry(ctx, "create-bet", func(int) error {
		fee = nil
		if e.policy.BetCreationCost > 0 {
			acct, err := e.GetAccount(ctx, creatorID)
			if err != nil {
				return err
			}
			if acct.AuraBalance < e.policy.BetCreationCost {
				return ErrInsufficientAura
			}
			change := e.balanceChange(acct, -e.policy.BetCreationCost, models.TransactionTypeBetCreation, bet.BetID)
			fee = &change
		}
		return e.store.CreateBet(ctx, bet, fee)
	})
	if errors.Is(err, storage.ErrInsufficientFunds) {
		return nil, ErrInsufficientAura
	}
	if err != nil {
		return nil, err
	}

	metrics.BetsCreated.Inc()
	e.logger.InfoContext(ctx, "bet created", "betId", bet.BetID, "chatId", bet.ChatID, "betType", bet.BetType, "deadline", bet.Deadline)
	if fee != nil {
		e.publishTransactions(ctx, fee.Transaction)
	}
	e.scheduleExpiryCheck(ctx, bet)
	return bet, nil
}

// scheduleExpiryCheck asks the scheduler to look at bet after its deadline.
// A failure is logged only; the periodic sweep still expires the bet.
func (e *Engine) scheduleExpiryCheck(ctx context.Context, bet *models.Bet) {
	if e.scheduler == nil {
		return
	}
	check := scheduler.ExpiryCheck{BetID: bet.BetID, Deadline: bet.Deadline}
	delay := scheduler.DelayUntil(bet.Deadline, e.now())
	if err := e.scheduler.ScheduleExpiryCheck(ctx, check, delay); err != nil {
		e.logger.ErrorContext(ctx, "failed to schedule expiry check", "betId", bet.BetID, "error", err)
	}
}

// GetBet returns a bet.
func (e *Engine) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	return e.getBet(ctx, betID)
}

// ListBetsByChat returns a chat's bets newest first. An empty status lists every status
// and a zero limit selects the default page size.
func (e *Engine) ListBetsByChat(ctx context.Context, chatID string, status models.BetStatus, limit int) ([]models.Bet, error) {
	var filter *models.BetStatus
	if status != "" {
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		filter = &status
	}
	bets, err := e.store.ListBetsByChat(ctx, chatID, filter, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}
