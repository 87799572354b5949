package aura

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
)

func TestPlaceStake(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")

		stake, err := h.engine.PlaceStake(ctx, bet.BetID, "bob", models.SideNo, 25)
		require.NoError(t, err)
		assert.NotEmpty(t, stake.ParticipantID)
		assert.Equal(t, models.SideNo, stake.Side)
		assert.Equal(t, int64(75), h.balance(t, "bob"))

		stored, err := h.engine.GetBet(ctx, bet.BetID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stored.StakeCount)

		mine, err := h.engine.GetStake(ctx, bet.BetID, "bob")
		require.NoError(t, err)
		require.NotNil(t, mine)
		assert.Equal(t, int64(25), mine.Amount)
		h.requireLedgerAgrees(t, "bob")
	})

	t.Run("Rejections In Order", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")
		h.stake(t, bet.BetID, "bob", models.SideYes, 10)

		_, err := h.engine.PlaceStake(ctx, "missing", "carol", models.SideYes, 10)
		assert.ErrorIs(t, err, ErrBetNotFound)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "bob", "maybe", 0)
		assert.ErrorIs(t, err, ErrAlreadyStaked)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "carol", "maybe", 10)
		assert.ErrorIs(t, err, ErrInvalidSide)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "carol", models.SideYes, 0)
		assert.ErrorIs(t, err, ErrMinimumStakeNotMet)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "eve", models.SideYes, 10)
		assert.ErrorIs(t, err, ErrNotChatMember)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "carol", models.SideYes, 101)
		assert.ErrorIs(t, err, ErrInsufficientAura)
		assert.Equal(t, int64(100), h.balance(t, "carol"))
	})

	t.Run("After Deadline", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")
		h.clock.Advance(time.Hour + time.Second)

		_, err := h.engine.PlaceStake(ctx, bet.BetID, "bob", models.SideYes, 10)
		assert.ErrorIs(t, err, ErrCannotStake)
		assert.Equal(t, int64(100), h.balance(t, "bob"))
	})

	t.Run("Resolved Bet", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")
		_, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeNo, "")
		require.NoError(t, err)

		_, err = h.engine.PlaceStake(ctx, bet.BetID, "bob", models.SideYes, 10)
		assert.ErrorIs(t, err, ErrCannotStake)
	})

	t.Run("Bet Full", func(t *testing.T) {
		policy := freePolicy()
		policy.MaxParticipants = 2
		h := newHarness(t, policy)
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")
		h.stake(t, bet.BetID, "alice", models.SideYes, 10)
		h.stake(t, bet.BetID, "bob", models.SideNo, 10)

		_, err := h.engine.PlaceStake(ctx, bet.BetID, "carol", models.SideNo, 10)
		assert.ErrorIs(t, err, ErrBetFull)
	})
}

func TestPlaceStakeConcurrentSameUser(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
	}{
		{"Small Stake", 10},
		// Losers re-read a balance too low for a second stake and must still see the duplicate.
		{"Stake Above Half The Balance", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, freePolicy())
			ctx := context.Background()
			bet := h.createBet(t, "alice", models.BetTypeSelf, "")
			// Open the account up front so every goroutine races on the stake itself.
			require.Equal(t, int64(100), h.balance(t, "bob"))

			const n = 10
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := h.engine.PlaceStake(ctx, bet.BetID, "bob", models.SideYes, tt.amount)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			var ok, already int
			for err := range errs {
				switch {
				case err == nil:
					ok++
				case errors.Is(err, ErrAlreadyStaked):
					already++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}
			assert.Equal(t, 1, ok)
			assert.Equal(t, n-1, already)
			assert.Equal(t, 100-tt.amount, h.balance(t, "bob"))

			stakes, err := h.engine.ListStakes(ctx, bet.BetID)
			require.NoError(t, err)
			assert.Len(t, stakes, 1)
			h.requireLedgerAgrees(t, "bob")
		})
	}
}

func TestPlaceStakeInsufficientAura(t *testing.T) {
	h := newHarness(t, freePolicy())
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")

	_, err := h.engine.PlaceStake(context.Background(), bet.BetID, "bob", models.SideNo, 101)

	assert.ErrorIs(t, err, ErrInsufficientAura)
	assert.Equal(t, int64(100), h.balance(t, "bob"))
	stake, err := h.engine.GetStake(context.Background(), bet.BetID, "bob")
	require.NoError(t, err)
	assert.Nil(t, stake)
}

func TestTotalsAndParticipants(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "alice", models.SideYes, 60)
	h.clock.Advance(time.Second)
	h.stake(t, bet.BetID, "bob", models.SideYes, 40)
	h.clock.Advance(time.Second)
	h.stake(t, bet.BetID, "carol", models.SideNo, 100)

	totals, err := h.engine.GetTotals(ctx, bet.BetID)
	require.NoError(t, err)
	assert.Equal(t, models.BetTotals{TotalYes: 100, TotalNo: 100, TotalPot: 200, YesCount: 2, NoCount: 1}, totals)

	p, err := h.engine.Participants(ctx, bet.BetID, "dave")
	require.NoError(t, err)
	require.Len(t, p.Stakes, 3)
	assert.Equal(t, "alice", p.Stakes[0].UserID)
	assert.Equal(t, totals, p.Totals)

	_, err = h.engine.Participants(ctx, bet.BetID, "eve")
	assert.ErrorIs(t, err, ErrNotChatMember)

	detail, err := h.engine.BetDetail(ctx, bet.BetID, "carol")
	require.NoError(t, err)
	require.NotNil(t, detail.MyStake)
	assert.Equal(t, models.SideNo, detail.MyStake.Side)
	assert.Len(t, detail.Participants, 3)

	detail, err = h.engine.BetDetail(ctx, bet.BetID, "dave")
	require.NoError(t, err)
	assert.Nil(t, detail.MyStake)

	_, err = h.engine.GetTotals(ctx, "missing")
	assert.ErrorIs(t, err, ErrBetNotFound)
}
