// Package aura implements the wagering engine: the Aura ledger, bets, stakes, proofs,
// resolution with pari-mutuel payout, and expiry. All concurrency safety comes from the
// conditional writes of the storage layer; the engine holds no locks of its own.
package aura

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/chris/aura-wagers/pkg/metrics"
	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/scheduler"
	"github.com/chris/aura-wagers/pkg/storage"
	"github.com/chris/aura-wagers/pkg/websockets"
)

// SystemResolver is recorded as resolvedBy when the sweeper expires a bet.
const SystemResolver = "system"

// Engine is the wagering engine.
type Engine struct {
	store     storage.Storage
	members   storage.MembershipChecker
	scheduler scheduler.ExpiryScheduler
	publisher websockets.Publisher
	policy    Policy
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
	backoff   time.Duration
}

// defaultRetryBackoff is the base pause after the first version conflict.
const defaultRetryBackoff = 5 * time.Millisecond

// Option configures an Engine.
type Option func(*Engine)

// WithMembership overrides the store's chat-membership lookup.
func WithMembership(m storage.MembershipChecker) Option {
	return func(e *Engine) { e.members = m }
}

// WithScheduler enables expiry checks scheduled at bet creation.
func WithScheduler(s scheduler.ExpiryScheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithPublisher sets where balance and resolution events are sent.
func WithPublisher(p websockets.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithRetryBackoff sets the base pause between conflicting attempts. Zero disables it.
func WithRetryBackoff(d time.Duration) Option {
	return func(e *Engine) { e.backoff = d }
}

// New creates an Engine over store.
func New(store storage.Storage, policy Policy, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		members:   store,
		publisher: &websockets.NoOpPublisher{},
		policy:    policy.withDefaults(),
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
		backoff:   defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the policy the engine runs with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// retry runs fn until it stops failing with a version conflict.
func (e *Engine) retry(ctx context.Context, op string, fn func(attempt int) error) error {
	for attempt := 0; attempt < e.policy.LedgerRetries; attempt++ {
		err := fn(attempt)
		if !errors.Is(err, storage.ErrVersionConflict) {
			return err
		}
		metrics.ConflictRetries.WithLabelValues(op).Inc()
		e.logger.DebugContext(ctx, "version conflict, retrying", "operation", op, "attempt", attempt+1)
		if attempt+1 == e.policy.LedgerRetries {
			break
		}
		if err := e.pause(ctx, attempt); err != nil {
			return err
		}
	}
	e.logger.WarnContext(ctx, "giving up after repeated version conflicts", "operation", op)
	return ErrContention
}

// pause sleeps for a jittered, linearly growing interval or until ctx is done.
func (e *Engine) pause(ctx context.Context, attempt int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if e.backoff <= 0 {
		return nil
	}
	step := e.backoff * time.Duration(attempt+1)
	wait := step/2 + rand.N(step/2+1)
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Engine) requireMember(ctx context.Context, userID, chatID string, notMember *Error) error {
	ok, err := e.members.IsUserInChat(ctx, userID, chatID)
	if err != nil {
		return fmt.Errorf("failed to check chat membership: %w", err)
	}
	if !ok {
		return notMember
	}
	return nil
}

func (e *Engine) getBet(ctx context.Context, betID string) (*models.Bet, error) {
	bet, err := e.store.GetBet(ctx, betID)
	if errors.Is(err, storage.ErrBetNotFound) {
		return nil, ErrBetNotFound
	}
	if err != nil {
		return nil, err
	}
	return bet, nil
}

// publishTransactions sends an auraUpdate for each committed transaction.
// Publishing is best effort: the ledger write already happened.
func (e *Engine) publishTransactions(ctx context.Context, txs ...models.Transaction) {
	for _, tx := range txs {
		msg := websockets.Message{
			Type: websockets.MessageTypeAuraUpdate,
			Payload: websockets.AuraUpdatePayload{
				UserID:        tx.UserID,
				TransactionID: tx.TransactionID,
				Type:          string(tx.Type),
				Change:        tx.Amount,
				NewBalance:    tx.BalanceAfter,
			},
		}
		if err := e.publisher.Publish(ctx, msg); err != nil {
			e.logger.ErrorContext(ctx, "failed to publish aura update", "userId", tx.UserID, "error", err)
		}
	}
}
