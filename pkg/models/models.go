package models

import (
	"time"
)

// TransactionType tags every ledger movement with the reason it happened.
type TransactionType string

const (
	TransactionTypeStake       TransactionType = "stake"
	TransactionTypePayout      TransactionType = "payout"
	TransactionTypeRefund      TransactionType = "refund"
	TransactionTypeDailyBonus  TransactionType = "daily-bonus"
	TransactionTypeBetCreation TransactionType = "bet-creation"
)

// BetType defines who is expected to act on a bet.
type BetType string

const (
	BetTypeSelf    BetType = "self"
	BetTypeCallout BetType = "callout"
	BetTypeDare    BetType = "dare"
)

// Valid reports whether t is a known bet type.
func (t BetType) Valid() bool {
	switch t {
	case BetTypeSelf, BetTypeCallout, BetTypeDare:
		return true
	}
	return false
}

// BetStatus defines the lifecycle states of a bet.
// A bet starts ACTIVE and moves to exactly one terminal state.
type BetStatus string

const (
	BetStatusActive    BetStatus = "active"
	BetStatusCompleted BetStatus = "completed"
	BetStatusExpired   BetStatus = "expired"
	BetStatusDucked    BetStatus = "ducked"
)

// Valid reports whether s is a known bet status.
func (s BetStatus) Valid() bool {
	switch s {
	case BetStatusActive, BetStatusCompleted, BetStatusExpired, BetStatusDucked:
		return true
	}
	return false
}

// Terminal reports whether s is a final state.
func (s BetStatus) Terminal() bool {
	return s == BetStatusCompleted || s == BetStatusExpired || s == BetStatusDucked
}

// Side is the position a participant takes on a bet.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// Valid reports whether s is yes or no.
func (s Side) Valid() bool {
	return s == SideYes || s == SideNo
}

// Outcome is the result recorded when a bet is resolved.
type Outcome string

const (
	OutcomeYes     Outcome = "yes"
	OutcomeNo      Outcome = "no"
	OutcomeExpired Outcome = "expired"
	OutcomeDucked  Outcome = "ducked"
)

// Valid reports whether o is a known outcome.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeYes, OutcomeNo, OutcomeExpired, OutcomeDucked:
		return true
	}
	return false
}

// TerminalStatus maps an outcome to the bet status it produces.
func (o Outcome) TerminalStatus() BetStatus {
	switch o {
	case OutcomeExpired:
		return BetStatusExpired
	case OutcomeDucked:
		return BetStatusDucked
	default:
		return BetStatusCompleted
	}
}

// MediaType is the kind of evidence attached to a proof.
type MediaType string

const (
	MediaTypePhoto MediaType = "photo"
	MediaTypeVideo MediaType = "video"
)

// Valid reports whether m is photo or video.
func (m MediaType) Valid() bool {
	return m == MediaTypePhoto || m == MediaTypeVideo
}

// Account is a user's cached Aura balance.
// Version is bumped on every balance mutation and used for optimistic locking.
type Account struct {
	UserID         string    `json:"userId" dynamodbav:"user_id"`
	AuraBalance    int64     `json:"auraBalance" dynamodbav:"aura_balance"`
	LifetimeEarned int64     `json:"lifetimeEarned" dynamodbav:"lifetime_earned"`
	LifetimeSpent  int64     `json:"lifetimeSpent" dynamodbav:"lifetime_spent"`
	Version        int64     `json:"version" dynamodbav:"version"`
	LastBonusDate  string    `json:"lastBonusDate,omitempty" dynamodbav:"last_bonus_date"`
	CreatedAt      time.Time `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" dynamodbav:"updated_at"`
}

// Transaction is an immutable ledger record. Amount is signed.
type Transaction struct {
	TransactionID string          `json:"transactionId" dynamodbav:"transaction_id"`
	UserID        string          `json:"userId" dynamodbav:"user_id"`
	Amount        int64           `json:"amount" dynamodbav:"amount"`
	BalanceAfter  int64           `json:"balanceAfter" dynamodbav:"balance_after"`
	Type          TransactionType `json:"type" dynamodbav:"type"`
	ReferenceID   string          `json:"referenceId,omitempty" dynamodbav:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"createdAt" dynamodbav:"created_at"`
}

// Bet is a wager opened in a chat.
type Bet struct {
	BetID        string    `json:"betId" dynamodbav:"bet_id"`
	ChatID       string    `json:"chatId" dynamodbav:"chat_id"`
	CreatorID    string    `json:"creatorId" dynamodbav:"creator_id"`
	BetType      BetType   `json:"betType" dynamodbav:"bet_type"`
	Description  string    `json:"description" dynamodbav:"description"`
	Deadline     time.Time `json:"deadline" dynamodbav:"deadline,unixtime"`
	TargetUserID string    `json:"targetUserId,omitempty" dynamodbav:"target_user_id,omitempty"`
	Status       BetStatus `json:"status" dynamodbav:"status"`
	// StakeCount doubles as the bet's version: every stake increments it.
	StakeCount int64      `json:"stakeCount" dynamodbav:"stake_count"`
	CreatedAt  time.Time  `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" dynamodbav:"updated_at"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty" dynamodbav:"resolved_at,omitempty"`
}

// Actor returns the user expected to perform the bet's action.
func (b *Bet) Actor() string {
	if b.BetType == BetTypeSelf {
		return b.CreatorID
	}
	return b.TargetUserID
}

// Stake is a participant's wager on a bet. One per (BetID, UserID).
type Stake struct {
	ParticipantID string    `json:"participantId" dynamodbav:"participant_id"`
	BetID         string    `json:"betId" dynamodbav:"bet_id"`
	UserID        string    `json:"userId" dynamodbav:"user_id"`
	Side          Side      `json:"side" dynamodbav:"side"`
	Amount        int64     `json:"amount" dynamodbav:"amount"`
	CreatedAt     time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// BetTotals is the aggregate of a bet's stakes.
type BetTotals struct {
	TotalYes int64 `json:"totalYes"`
	TotalNo  int64 `json:"totalNo"`
	TotalPot int64 `json:"totalPot"`
	YesCount int   `json:"yesCount"`
	NoCount  int   `json:"noCount"`
}

// Proof is media evidence submitted for a bet.
type Proof struct {
	ProofID      string    `json:"proofId" dynamodbav:"proof_id"`
	BetID        string    `json:"betId" dynamodbav:"bet_id"`
	UserID       string    `json:"userId" dynamodbav:"user_id"`
	MediaType    MediaType `json:"mediaType" dynamodbav:"media_type"`
	MediaURL     string    `json:"mediaUrl" dynamodbav:"media_url"`
	MediaKey     string    `json:"mediaKey" dynamodbav:"media_key"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty" dynamodbav:"thumbnail_url,omitempty"`
	ThumbnailKey string    `json:"thumbnailKey,omitempty" dynamodbav:"thumbnail_key,omitempty"`
	Caption      string    `json:"caption,omitempty" dynamodbav:"caption,omitempty"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"created_at"`
}

// Resolution records how a bet ended. One per bet.
type Resolution struct {
	ResolutionID string    `json:"resolutionId" dynamodbav:"resolution_id"`
	BetID        string    `json:"betId" dynamodbav:"bet_id"`
	Outcome      Outcome   `json:"outcome" dynamodbav:"outcome"`
	ResolvedBy   string    `json:"resolvedBy" dynamodbav:"resolved_by"`
	ResolvedAt   time.Time `json:"resolvedAt" dynamodbav:"resolved_at"`
	Notes        string    `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
}

// Reputation holds a user's betting track record.
type Reputation struct {
	UserID          string `json:"userId" dynamodbav:"user_id"`
	BetsCompleted   int64  `json:"betsCompleted" dynamodbav:"bets_completed"`
	BetsFailed      int64  `json:"betsFailed" dynamodbav:"bets_failed"`
	CalloutsIgnored int64  `json:"calloutsIgnored" dynamodbav:"callouts_ignored"`
	VibeScore       int64  `json:"vibeScore" dynamodbav:"vibe_score"`
}
