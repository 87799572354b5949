package aura

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage/memory"
	"github.com/chris/aura-wagers/pkg/websockets"
)

const testChat = "chat-1"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	engine *Engine
	store  *memory.Store
	clock  *testClock
	events *websockets.RecordingPublisher
}

// newHarness builds an engine over a memory store where alice, bob, carol and dave
// share testChat and eve is an outsider.
func newHarness(t *testing.T, policy Policy, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		store:  memory.New(),
		clock:  &testClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)},
		events: &websockets.RecordingPublisher{},
	}
	for _, u := range []string{"alice", "bob", "carol", "dave"} {
		h.store.AddChatMember(testChat, u)
	}
	opts = append([]Option{WithClock(h.clock.Now), WithPublisher(h.events)}, opts...)
	h.engine = New(h.store, policy, opts...)
	return h
}

func freePolicy() Policy {
	p := DefaultPolicy()
	p.BetCreationCost = 0
	return p
}

func (h *harness) createBet(t *testing.T, creator string, betType models.BetType, target string) *models.Bet {
	t.Helper()
	bet, err := h.engine.CreateBet(context.Background(), creator, CreateBetInput{
		ChatID:       testChat,
		BetType:      betType,
		Description:  "run a marathon",
		Deadline:     h.clock.Now().Add(time.Hour),
		TargetUserID: target,
	})
	require.NoError(t, err)
	return bet
}

func (h *harness) stake(t *testing.T, betID, user string, side models.Side, amount int64) {
	t.Helper()
	_, err := h.engine.PlaceStake(context.Background(), betID, user, side, amount)
	require.NoError(t, err)
}

func (h *harness) balance(t *testing.T, user string) int64 {
	t.Helper()
	b, err := h.engine.GetBalance(context.Background(), user)
	require.NoError(t, err)
	return b
}

// requireLedgerAgrees checks the cached balance equals the sum of the user's transactions.
func (h *harness) requireLedgerAgrees(t *testing.T, users ...string) {
	t.Helper()
	for _, u := range users {
		acct, err := h.store.GetAccount(context.Background(), u)
		require.NoError(t, err)
		txs, err := h.store.ListTransactionsByUserID(context.Background(), u, 0)
		require.NoError(t, err)
		var sum int64
		for _, tx := range txs {
			sum += tx.Amount
		}
		require.Equal(t, acct.AuraBalance, sum, "ledger mismatch for %s", u)
	}
}
