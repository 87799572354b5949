package aura

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
	"github.com/chris/aura-wagers/pkg/storage/memory"
)

// conflictingStore fails the first n balance changes with a version conflict.
type conflictingStore struct {
	*memory.Store
	n     int
	calls int
}

func (s *conflictingStore) ApplyBalanceChange(ctx context.Context, change storage.BalanceChange) error {
	s.calls++
	if s.n > 0 {
		s.n--
		return storage.ErrVersionConflict
	}
	return s.Store.ApplyBalanceChange(ctx, change)
}

func TestGetAccountOpensWithStartingBalance(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()

	acct, err := h.engine.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(100), acct.AuraBalance)
	assert.Equal(t, int64(100), acct.LifetimeEarned)

	again, err := h.engine.GetAccount(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acct.Version, again.Version)

	txs, err := h.engine.ListTransactions(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, models.TransactionTypeDailyBonus, txs[0].Type)
	h.requireLedgerAgrees(t, "alice")
}

func TestDebitAndCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t, DefaultPolicy())

		tx, err := h.engine.Debit(ctx, "bob", 30, models.TransactionTypeStake, "bet-1")
		require.NoError(t, err)
		assert.Equal(t, int64(-30), tx.Amount)
		assert.Equal(t, int64(70), tx.BalanceAfter)

		tx, err = h.engine.Credit(ctx, "bob", 45, models.TransactionTypePayout, "bet-1")
		require.NoError(t, err)
		assert.Equal(t, int64(115), tx.BalanceAfter)

		acct, err := h.engine.GetAccount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(115), acct.AuraBalance)
		assert.Equal(t, int64(30), acct.LifetimeSpent)
		assert.Equal(t, int64(145), acct.LifetimeEarned)
		h.requireLedgerAgrees(t, "bob")
		assert.Len(t, h.events.Messages, 2)
	})

	t.Run("Refund Reduces Spent", func(t *testing.T) {
		h := newHarness(t, DefaultPolicy())

		_, err := h.engine.Debit(ctx, "bob", 30, models.TransactionTypeStake, "bet-1")
		require.NoError(t, err)
		_, err = h.engine.Credit(ctx, "bob", 30, models.TransactionTypeRefund, "bet-1")
		require.NoError(t, err)

		acct, err := h.engine.GetAccount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(0), acct.LifetimeSpent)
		assert.Equal(t, int64(100), acct.AuraBalance)
	})

	t.Run("Insufficient Aura", func(t *testing.T) {
		h := newHarness(t, DefaultPolicy())

		_, err := h.engine.Debit(ctx, "bob", 101, models.TransactionTypeStake, "bet-1")
		assert.ErrorIs(t, err, ErrInsufficientAura)
		assert.Equal(t, int64(100), h.balance(t, "bob"))
	})

	t.Run("Invalid Amount", func(t *testing.T) {
		h := newHarness(t, DefaultPolicy())

		_, err := h.engine.Debit(ctx, "bob", 0, models.TransactionTypeStake, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = h.engine.Credit(ctx, "bob", -5, models.TransactionTypePayout, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestLedgerRetriesVersionConflicts(t *testing.T) {
	ctx := context.Background()

	t.Run("Recovers", func(t *testing.T) {
		store := &conflictingStore{Store: memory.New(), n: 2}
		e := New(store, DefaultPolicy())

		tx, err := e.Debit(ctx, "bob", 10, models.TransactionTypeStake, "")
		require.NoError(t, err)
		assert.Equal(t, int64(90), tx.BalanceAfter)
	})

	t.Run("Gives Up", func(t *testing.T) {
		store := &conflictingStore{Store: memory.New(), n: 100}
		e := New(store, DefaultPolicy())

		_, err := e.Debit(ctx, "bob", 10, models.TransactionTypeStake, "")
		assert.ErrorIs(t, err, ErrContention)

		acct, err := store.GetAccount(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(100), acct.AuraBalance)
		assert.Equal(t, DefaultPolicy().LedgerRetries, store.calls)
	})

	t.Run("Backoff Stops On Cancelled Context", func(t *testing.T) {
		// Arrange
		store := &conflictingStore{Store: memory.New(), n: 100}
		e := New(store, DefaultPolicy(), WithRetryBackoff(time.Hour))
		cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		// Act
		start := time.Now()
		_, err := e.Debit(cctx, "bob", 10, models.TransactionTypeStake, "")

		// Assert
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Minute)
		assert.Equal(t, 1, store.calls)
	})
}

func TestRetryPause(t *testing.T) {
	ctx := context.Background()

	t.Run("Grows With Attempt", func(t *testing.T) {
		e := New(memory.New(), DefaultPolicy(), WithRetryBackoff(2*time.Millisecond))

		start := time.Now()
		require.NoError(t, e.pause(ctx, 4))
		assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	})

	t.Run("Disabled", func(t *testing.T) {
		e := New(memory.New(), DefaultPolicy(), WithRetryBackoff(0))
		assert.NoError(t, e.pause(ctx, 3))
	})

	t.Run("Cancelled Before Sleeping", func(t *testing.T) {
		e := New(memory.New(), DefaultPolicy())
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		assert.ErrorIs(t, e.pause(cctx, 0), context.Canceled)
	})
}

func TestClaimDailyBonus(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()

	tx, err := h.engine.ClaimDailyBonus(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(10), tx.Amount)
	assert.Equal(t, int64(110), tx.BalanceAfter)

	_, err = h.engine.ClaimDailyBonus(ctx, "carol")
	assert.ErrorIs(t, err, ErrBonusAlreadyClaimed)
	assert.Equal(t, int64(110), h.balance(t, "carol"))

	h.clock.Advance(24 * time.Hour)
	_, err = h.engine.ClaimDailyBonus(ctx, "carol")
	require.NoError(t, err)
	assert.Equal(t, int64(120), h.balance(t, "carol"))
	h.requireLedgerAgrees(t, "carol")
}

func TestListTransactions(t *testing.T) {
	h := newHarness(t, DefaultPolicy())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := h.engine.Debit(ctx, "dave", int64(i+1), models.TransactionTypeStake, "")
		require.NoError(t, err)
	}

	txs, err := h.engine.ListTransactions(ctx, "dave", 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, int64(-5), txs[0].Amount)
	assert.Equal(t, int64(-4), txs[1].Amount)

	all, err := h.engine.ListTransactions(ctx, "dave", 1000)
	require.NoError(t, err)
	assert.Len(t, all, 6)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, int32(50), clampLimit(0))
	assert.Equal(t, int32(1), clampLimit(-3))
	assert.Equal(t, int32(1), clampLimit(1))
	assert.Equal(t, int32(100), clampLimit(101))
}
