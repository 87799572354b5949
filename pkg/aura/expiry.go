package aura

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/chris/aura-wagers/pkg/metrics"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/scheduler"
)

// AutoExpire resolves every active bet past its deadline as expired and returns how many it
// expired. Bets resolved concurrently by someone else are skipped. A failure on one bet does
// not stop the sweep; it is reported once the sweep finishes.
func (e *Engine) AutoExpire(ctx context.Context) (int, error) {
	bets, err := e.store.ListExpiredBets(ctx, e.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired bets: %w", err)
	}
	if len(bets) == 0 {
		return 0, nil
	}
	e.logger.InfoContext(ctx, "expiring bets", "count", len(bets))

	var expired, failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(e.policy.SweepConcurrency)
	for i := range bets {
		bet := bets[i]
		g.Go(func() error {
			_, err := e.resolve(ctx, &bet, SystemResolver, models.OutcomeExpired, "")
			switch {
			case err == nil:
				expired.Add(1)
				metrics.BetsExpired.Inc()
			case errors.Is(err, ErrAlreadyResolved):
				e.logger.DebugContext(ctx, "bet already resolved, skipping", "betId", bet.BetID)
			default:
				failed.Add(1)
				e.logger.ErrorContext(ctx, "failed to expire bet", "betId", bet.BetID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	n := int(expired.Load())
	if f := failed.Load(); f > 0 {
		return n, fmt.Errorf("failed to expire %d of %d bets", f, len(bets))
	}
	return n, nil
}

// ExpireBet expires a single bet if its deadline has passed. A check that arrives early is
// scheduled again. It reports whether this call expired the bet.
func (e *Engine) ExpireBet(ctx context.Context, betID string) (bool, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return false, err
	}
	if bet.Status != models.BetStatusActive {
		return false, nil
	}
	if !e.now().After(bet.Deadline) {
		if e.scheduler == nil {
			return false, nil
		}
		check := scheduler.ExpiryCheck{BetID: bet.BetID, Deadline: bet.Deadline}
		if err := e.scheduler.ScheduleExpiryCheck(ctx, check, scheduler.DelayUntil(bet.Deadline, e.now())); err != nil {
			return false, fmt.Errorf("failed to reschedule expiry check: %w", err)
		}
		e.logger.InfoContext(ctx, "deadline not reached, rescheduled expiry check", "betId", bet.BetID, "deadline", bet.Deadline)
		return false, nil
	}

	_, err = e.resolve(ctx, bet, SystemResolver, models.OutcomeExpired, "")
	if errors.Is(err, ErrAlreadyResolved) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	metrics.BetsExpired.Inc()
	return true, nil
}
