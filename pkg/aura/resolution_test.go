package aura

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/websockets"
)

func TestResolvePariMutuelScenario(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()

	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "alice", models.SideYes, 60)
	h.stake(t, bet.BetID, "bob", models.SideYes, 40)
	h.stake(t, bet.BetID, "carol", models.SideNo, 100)

	res, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "did it")
	require.NoError(t, err)

	assert.Equal(t, models.BetStatusCompleted, res.Bet.Status)
	assert.NotNil(t, res.Bet.ResolvedAt)
	assert.Equal(t, models.OutcomeYes, res.Resolution.Outcome)
	assert.Equal(t, "did it", res.Resolution.Notes)

	assert.Equal(t, int64(160), h.balance(t, "alice")) // +60
	assert.Equal(t, int64(140), h.balance(t, "bob"))   // +40
	assert.Equal(t, int64(0), h.balance(t, "carol"))   // -100
	h.requireLedgerAgrees(t, "alice", "bob", "carol")

	stored, err := h.engine.GetBet(ctx, bet.BetID)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusCompleted, stored.Status)

	got, err := h.engine.GetResolution(ctx, bet.BetID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, res.Resolution.ResolutionID, got.ResolutionID)

	rep, err := h.engine.GetReputation(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.BetsCompleted)
	assert.Equal(t, int64(10), rep.VibeScore)

	assert.Len(t, h.events.OfType(websockets.MessageTypeBetResolved), 1)
}

func TestResolveExpiredRefundsEveryone(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()

	bet := h.createBet(t, "alice", models.BetTypeDare, "bob")
	h.stake(t, bet.BetID, "carol", models.SideYes, 30)
	h.stake(t, bet.BetID, "dave", models.SideNo, 70)

	res, err := h.engine.Resolve(ctx, bet.BetID, "bob", models.OutcomeExpired, "")
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusExpired, res.Bet.Status)

	assert.Equal(t, int64(100), h.balance(t, "carol"))
	assert.Equal(t, int64(100), h.balance(t, "dave"))
	h.requireLedgerAgrees(t, "carol", "dave")

	acct, err := h.engine.GetAccount(ctx, "dave")
	require.NoError(t, err)
	assert.Equal(t, int64(0), acct.LifetimeSpent)

	rep, err := h.engine.GetReputation(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.Reputation{UserID: "bob"}, *rep)
}

func TestResolveDuckedCallout(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()

	bet := h.createBet(t, "alice", models.BetTypeCallout, "bob")
	h.stake(t, bet.BetID, "carol", models.SideYes, 50)

	res, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeDucked, "")
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusDucked, res.Bet.Status)
	assert.Equal(t, int64(100), h.balance(t, "carol"))

	rep, err := h.engine.GetReputation(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rep.CalloutsIgnored)
	assert.Less(t, rep.VibeScore, int64(0))
}

func TestResolveVibeDirection(t *testing.T) {
	ctx := context.Background()

	t.Run("Completed Dare Raises Target", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeDare, "bob")
		_, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
		require.NoError(t, err)

		rep, err := h.engine.GetReputation(ctx, "bob")
		require.NoError(t, err)
		assert.Greater(t, rep.VibeScore, int64(0))
		assert.Equal(t, int64(1), rep.BetsCompleted)

		creator, err := h.engine.GetReputation(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(0), creator.VibeScore)
	})

	t.Run("Failed Self Bet Lowers Creator", func(t *testing.T) {
		h := newHarness(t, freePolicy())
		bet := h.createBet(t, "alice", models.BetTypeSelf, "")
		_, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeNo, "")
		require.NoError(t, err)

		rep, err := h.engine.GetReputation(ctx, "alice")
		require.NoError(t, err)
		assert.Less(t, rep.VibeScore, int64(0))
		assert.Equal(t, int64(1), rep.BetsFailed)
	})
}

func TestResolveRejections(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	self := h.createBet(t, "alice", models.BetTypeSelf, "")
	dare := h.createBet(t, "alice", models.BetTypeDare, "bob")

	_, err := h.engine.Resolve(ctx, "missing", "alice", models.OutcomeYes, "")
	assert.ErrorIs(t, err, ErrBetNotFound)

	_, err = h.engine.Resolve(ctx, self.BetID, "carol", models.OutcomeYes, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = h.engine.Resolve(ctx, self.BetID, "", models.OutcomeYes, "")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = h.engine.Resolve(ctx, self.BetID, "alice", "maybe", "")
	assert.ErrorIs(t, err, ErrInvalidOutcome)

	_, err = h.engine.Resolve(ctx, self.BetID, "alice", models.OutcomeDucked, "")
	assert.ErrorIs(t, err, ErrInvalidOutcomeForType)

	_, err = h.engine.Resolve(ctx, dare.BetID, "bob", models.OutcomeDucked, "")
	assert.ErrorIs(t, err, ErrInvalidOutcomeForType)

	_, err = h.engine.Resolve(ctx, self.BetID, "alice", models.OutcomeYes, strings.Repeat("n", 1001))
	assert.ErrorIs(t, err, ErrInvalidNotes)

	res, err := h.engine.GetResolution(ctx, self.BetID)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestResolveTwiceAppliesOnce(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "bob", models.SideYes, 20)
	h.stake(t, bet.BetID, "carol", models.SideNo, 20)

	_, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
	require.NoError(t, err)
	assert.Equal(t, int64(120), h.balance(t, "bob"))

	_, err = h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.Equal(t, int64(120), h.balance(t, "bob"))
	assert.Equal(t, int64(80), h.balance(t, "carol"))
}

func TestResolveConcurrent(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "bob", models.SideYes, 20)
	h.stake(t, bet.BetID, "carol", models.SideNo, 20)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
		}(i)
	}
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		if err == nil {
			ok++
		} else if errors.Is(err, ErrAlreadyResolved) {
			already++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.Equal(t, int64(120), h.balance(t, "bob"))
	h.requireLedgerAgrees(t, "bob", "carol")
}

func TestResolveRacingSweepPaysOnce(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "bob", models.SideYes, 20)
	h.stake(t, bet.BetID, "carol", models.SideNo, 20)
	h.clock.Advance(2 * time.Hour)

	var wg sync.WaitGroup
	var resolveErr, sweepErr error
	var expired int
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, resolveErr = h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
	}()
	go func() {
		defer wg.Done()
		expired, sweepErr = h.engine.AutoExpire(ctx)
	}()
	wg.Wait()
	require.NoError(t, sweepErr)

	if resolveErr == nil {
		assert.Equal(t, 0, expired)
		assert.Equal(t, int64(120), h.balance(t, "bob"))
		assert.Equal(t, int64(80), h.balance(t, "carol"))
	} else {
		assert.ErrorIs(t, resolveErr, ErrAlreadyResolved)
		assert.Equal(t, 1, expired)
		assert.Equal(t, int64(100), h.balance(t, "bob"))
		assert.Equal(t, int64(100), h.balance(t, "carol"))
	}
	h.requireLedgerAgrees(t, "bob", "carol")
}

func TestResolveFailureLeavesBetActive(t *testing.T) {
	h := newHarness(t, freePolicy())
	ctx := context.Background()
	bet := h.createBet(t, "alice", models.BetTypeSelf, "")
	h.stake(t, bet.BetID, "bob", models.SideYes, 20)
	h.stake(t, bet.BetID, "carol", models.SideNo, 20)

	h.store.FailResolve = errors.New("transaction canceled")
	_, err := h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
	require.Error(t, err)

	stored, err := h.engine.GetBet(ctx, bet.BetID)
	require.NoError(t, err)
	assert.Equal(t, models.BetStatusActive, stored.Status)
	assert.Equal(t, int64(80), h.balance(t, "bob"))
	assert.Equal(t, int64(80), h.balance(t, "carol"))
	res, err := h.engine.GetResolution(ctx, bet.BetID)
	require.NoError(t, err)
	assert.Nil(t, res)

	h.store.FailResolve = nil
	_, err = h.engine.Resolve(ctx, bet.BetID, "alice", models.OutcomeYes, "")
	require.NoError(t, err)
	assert.Equal(t, int64(120), h.balance(t, "bob"))
}

func TestVibeDeltas(t *testing.T) {
	p := DefaultPolicy().Vibe
	callout := &models.Bet{BetType: models.BetTypeCallout, CreatorID: "alice", TargetUserID: "bob"}

	yes := p.Deltas(callout, models.OutcomeYes)
	require.Len(t, yes, 1)
	assert.Equal(t, "bob", yes[0].UserID)
	assert.Equal(t, p.CompletionReward, yes[0].VibeScore)

	no := p.Deltas(callout, models.OutcomeNo)
	require.Len(t, no, 1)
	assert.Equal(t, -p.FailurePenalty, no[0].VibeScore)

	ducked := p.Deltas(callout, models.OutcomeDucked)
	require.Len(t, ducked, 1)
	assert.Equal(t, int64(1), ducked[0].CalloutsIgnored)
	assert.Equal(t, -p.DuckPenalty, ducked[0].VibeScore)

	assert.Empty(t, p.Deltas(callout, models.OutcomeExpired))
}
