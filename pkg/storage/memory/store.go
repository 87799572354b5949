// Package memory is an in-process implementation of the storage interfaces.
// Every operation runs under one mutex and checks the same conditions the
// DynamoDB and Postgres stores enforce, so engine behaviour is identical.
// It is meant for tests and local development; nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

type stakeKey struct {
	betID  string
	userID string
}

// Store implements storage.Storage in memory.
type Store struct {
	mu           sync.Mutex
	accounts     map[string]models.Account
	transactions []models.Transaction
	txIDs        map[string]struct{}
	bets         map[string]models.Bet
	stakes       map[stakeKey]models.Stake
	proofs       map[string]models.Proof
	resolutions  map[string]models.Resolution
	reputation   map[string]models.Reputation
	members      map[string]map[string]struct{}
	connections  map[string]struct{}

	// FailResolve, when set, is returned by ResolveBet before anything is written.
	FailResolve error
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		accounts:    make(map[string]models.Account),
		txIDs:       make(map[string]struct{}),
		bets:        make(map[string]models.Bet),
		stakes:      make(map[stakeKey]models.Stake),
		proofs:      make(map[string]models.Proof),
		resolutions: make(map[string]models.Resolution),
		reputation:  make(map[string]models.Reputation),
		members:     make(map[string]map[string]struct{}),
		connections: make(map[string]struct{}),
	}
}

// Make sure we conform to the interface
var (
	_ storage.Storage          = (*Store)(nil)
	_ storage.WebSocketManager = (*Store)(nil)
)

// AddChatMember registers userID as a member of chatID.
func (s *Store) AddChatMember(chatID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[chatID] == nil {
		s.members[chatID] = make(map[string]struct{})
	}
	s.members[chatID][userID] = struct{}{}
}

// IsUserInChat reports whether userID was registered in chatID.
func (s *Store) IsUserInChat(_ context.Context, userID, chatID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.members[chatID][userID]
	return ok, nil
}

// GetAccount retrieves a user's account.
func (s *Store) GetAccount(_ context.Context, userID string) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.accounts[userID]
	if !ok {
		return nil, storage.ErrAccountNotFound
	}
	return &acct, nil
}

// OpenAccount creates an account and its opening grant.
func (s *Store) OpenAccount(_ context.Context, account *models.Account, grant *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.UserID]; ok {
		return storage.ErrAccountExists
	}
	s.accounts[account.UserID] = *account
	if grant != nil {
		s.appendTransaction(*grant)
	}
	return nil
}

// ApplyBalanceChange updates an account and appends its transaction.
func (s *Store) ApplyBalanceChange(_ context.Context, change storage.BalanceChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkChange(change); err != nil {
		return err
	}
	s.applyChange(change)
	return nil
}

// ListTransactionsByUserID retrieves a user's transactions newest first.
func (s *Store) ListTransactionsByUserID(_ context.Context, userID string, limit int32) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID != userID {
			continue
		}
		out = append(out, s.transactions[i])
		if limit > 0 && int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

// CreateBet stores a bet and charges its creation fee.
func (s *Store) CreateBet(_ context.Context, bet *models.Bet, fee *storage.BalanceChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fee != nil {
		if err := s.checkChange(*fee); err != nil {
			return err
		}
	}
	s.bets[bet.BetID] = *bet
	if fee != nil {
		s.applyChange(*fee)
	}
	return nil
}

// GetBet retrieves a bet.
func (s *Store) GetBet(_ context.Context, betID string) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bet, ok := s.bets[betID]
	if !ok {
		return nil, storage.ErrBetNotFound
	}
	return &bet, nil
}

// ListBetsByChat retrieves a chat's bets newest first.
func (s *Store) ListBetsByChat(_ context.Context, chatID string, status *models.BetStatus, limit int32) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bet
	for _, bet := range s.bets {
		if bet.ChatID != chatID {
			continue
		}
		if status != nil && bet.Status != *status {
			continue
		}
		out = append(out, bet)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ListExpiredBets retrieves active bets past their deadline.
func (s *Store) ListExpiredBets(_ context.Context, now time.Time) ([]models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bet
	for _, bet := range s.bets {
		if bet.Status == models.BetStatusActive && bet.Deadline.Before(now) {
			out = append(out, bet)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Deadline.Before(out[j].Deadline)
	})
	return out, nil
}

// PlaceStake inserts a stake and debits the staker in one step.
func (s *Store) PlaceStake(_ context.Context, p storage.StakePlacement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bet, ok := s.bets[p.Stake.BetID]
	if !ok || bet.Status != models.BetStatusActive || p.Now.After(bet.Deadline) || bet.StakeCount >= p.MaxParticipants {
		return storage.ErrBetNotActive
	}
	key := stakeKey{betID: p.Stake.BetID, userID: p.Stake.UserID}
	if _, exists := s.stakes[key]; exists {
		return storage.ErrAlreadyStaked
	}
	if err := s.checkChange(p.Debit); err != nil {
		return err
	}

	bet.StakeCount++
	bet.UpdatedAt = p.Now
	s.bets[bet.BetID] = bet
	s.stakes[key] = p.Stake
	s.applyChange(p.Debit)
	return nil
}

// GetStake retrieves a user's stake on a bet.
func (s *Store) GetStake(_ context.Context, betID, userID string) (*models.Stake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stake, ok := s.stakes[stakeKey{betID: betID, userID: userID}]
	if !ok {
		return nil, storage.ErrStakeNotFound
	}
	return &stake, nil
}

// ListStakes retrieves a bet's stakes in placement order.
func (s *Store) ListStakes(_ context.Context, betID string) ([]models.Stake, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Stake
	for key, stake := range s.stakes {
		if key.betID == betID {
			out = append(out, stake)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// CreateProof stores a proof while its bet is open.
func (s *Store) CreateProof(_ context.Context, proof *models.Proof, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bet, ok := s.bets[proof.BetID]
	if !ok || bet.Status != models.BetStatusActive || now.After(bet.Deadline) {
		return storage.ErrBetNotActive
	}
	s.proofs[proof.ProofID] = *proof
	return nil
}

// GetProof retrieves a proof.
func (s *Store) GetProof(_ context.Context, proofID string) (*models.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	proof, ok := s.proofs[proofID]
	if !ok {
		return nil, storage.ErrProofNotFound
	}
	return &proof, nil
}

// ListProofs retrieves a bet's proofs newest first.
func (s *Store) ListProofs(_ context.Context, betID string) ([]models.Proof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Proof
	for _, proof := range s.proofs {
		if proof.BetID == betID {
			out = append(out, proof)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteProof removes a proof while its bet is active.
func (s *Store) DeleteProof(_ context.Context, proof *models.Proof) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proofs[proof.ProofID]; !ok {
		return storage.ErrProofNotFound
	}
	bet, ok := s.bets[proof.BetID]
	if !ok || bet.Status != models.BetStatusActive {
		return storage.ErrBetNotActive
	}
	delete(s.proofs, proof.ProofID)
	return nil
}

// ResolveBet commits a resolution batch or nothing.
func (s *Store) ResolveBet(_ context.Context, batch storage.ResolutionBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailResolve != nil {
		return s.FailResolve
	}
	bet, ok := s.bets[batch.Bet.BetID]
	if !ok {
		return storage.ErrBetNotFound
	}
	if bet.Status != models.BetStatusActive {
		return storage.ErrAlreadyResolved
	}
	if _, exists := s.resolutions[bet.BetID]; exists {
		return storage.ErrAlreadyResolved
	}
	if bet.StakeCount != batch.Bet.StakeCount {
		return storage.ErrVersionConflict
	}
	seen := make(map[string]struct{}, len(batch.Changes))
	for _, change := range batch.Changes {
		if _, dup := seen[change.UserID]; dup {
			return storage.ErrVersionConflict
		}
		seen[change.UserID] = struct{}{}
		if err := s.checkChange(change); err != nil {
			return err
		}
	}

	resolvedAt := batch.Resolution.ResolvedAt
	bet.Status = batch.Status
	bet.UpdatedAt = resolvedAt
	bet.ResolvedAt = &resolvedAt
	s.bets[bet.BetID] = bet
	s.resolutions[bet.BetID] = batch.Resolution
	for _, change := range batch.Changes {
		s.applyChange(change)
	}
	for _, d := range batch.Reputation {
		rep := s.reputation[d.UserID]
		rep.UserID = d.UserID
		rep.BetsCompleted += d.BetsCompleted
		rep.BetsFailed += d.BetsFailed
		rep.CalloutsIgnored += d.CalloutsIgnored
		rep.VibeScore += d.VibeScore
		s.reputation[d.UserID] = rep
	}
	return nil
}

// GetResolution retrieves a bet's resolution.
func (s *Store) GetResolution(_ context.Context, betID string) (*models.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.resolutions[betID]
	if !ok {
		return nil, storage.ErrResolutionNotFound
	}
	return &res, nil
}

// GetReputation retrieves a user's counters.
func (s *Store) GetReputation(_ context.Context, userID string) (*models.Reputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep := s.reputation[userID]
	rep.UserID = userID
	return &rep, nil
}

// AddConnection saves a websocket connection ID.
func (s *Store) AddConnection(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = struct{}{}
	return nil
}

// RemoveConnection deletes a websocket connection ID.
func (s *Store) RemoveConnection(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

// GetAllConnections lists websocket connection IDs.
func (s *Store) GetAllConnections(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.connections))
	for id := range s.connections {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// checkChange must be called with s.mu held.
func (s *Store) checkChange(change storage.BalanceChange) error {
	acct, ok := s.accounts[change.UserID]
	if !ok {
		return storage.ErrAccountNotFound
	}
	if acct.Version != change.ExpectedVersion {
		return storage.ErrVersionConflict
	}
	if acct.AuraBalance+change.Amount < 0 {
		return storage.ErrInsufficientFunds
	}
	if change.BonusDate != "" && acct.LastBonusDate == change.BonusDate {
		return storage.ErrBonusAlreadyClaimed
	}
	if _, dup := s.txIDs[change.Transaction.TransactionID]; dup {
		return storage.ErrBonusAlreadyClaimed
	}
	return nil
}

// applyChange must be called with s.mu held, after checkChange.
func (s *Store) applyChange(change storage.BalanceChange) {
	acct := s.accounts[change.UserID]
	acct.AuraBalance += change.Amount
	acct.LifetimeEarned += change.EarnedDelta
	acct.LifetimeSpent += change.SpentDelta
	acct.Version++
	acct.UpdatedAt = change.Transaction.CreatedAt
	if change.BonusDate != "" {
		acct.LastBonusDate = change.BonusDate
	}
	s.accounts[change.UserID] = acct
	s.appendTransaction(change.Transaction)
}

func (s *Store) appendTransaction(tx models.Transaction) {
	s.transactions = append(s.transactions, tx)
	s.txIDs[tx.TransactionID] = struct{}{}
}
