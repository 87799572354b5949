package api

import "time"

// NewBet is the body of POST /bets/create.
type NewBet struct {
	ChatId       string    `json:"chatId"`
	BetType      string    `json:"betType"`
	Description  string    `json:"description"`
	Deadline     time.Time `json:"deadline"`
	TargetUserId *string   `json:"targetUserId,omitempty"`
}

// NewStake is the body of POST /bets/{betId}/stake.
type NewStake struct {
	Side   string `json:"side"`
	Amount int64  `json:"amount"`
}

// NewProof is the body of POST /bets/{betId}/proof.
type NewProof struct {
	MediaType    string  `json:"mediaType"`
	MediaUrl     string  `json:"mediaUrl"`
	MediaKey     string  `json:"mediaKey"`
	ThumbnailUrl *string `json:"thumbnailUrl,omitempty"`
	ThumbnailKey *string `json:"thumbnailKey,omitempty"`
	Caption      *string `json:"caption,omitempty"`
}

// ResolveRequest is the body of POST /bets/{betId}/resolve.
type ResolveRequest struct {
	Outcome string  `json:"outcome"`
	Notes   *string `json:"notes,omitempty"`
}

// Bet defines model for Bet.
type Bet struct {
	BetId        string     `json:"betId"`
	ChatId       string     `json:"chatId"`
	CreatorId    string     `json:"creatorId"`
	BetType      string     `json:"betType"`
	Description  string     `json:"description"`
	Deadline     time.Time  `json:"deadline"`
	TargetUserId *string    `json:"targetUserId,omitempty"`
	Status       string     `json:"status"`
	StakeCount   int64      `json:"stakeCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// Participant defines model for Participant.
type Participant struct {
	ParticipantId string    `json:"participantId"`
	BetId         string    `json:"betId"`
	UserId        string    `json:"userId"`
	Side          string    `json:"side"`
	Amount        int64     `json:"amount"`
	CreatedAt     time.Time `json:"createdAt"`
}

// BetTotals defines model for BetTotals.
type BetTotals struct {
	TotalYes int64 `json:"totalYes"`
	TotalNo  int64 `json:"totalNo"`
	TotalPot int64 `json:"totalPot"`
	YesCount int   `json:"yesCount"`
	NoCount  int   `json:"noCount"`
}

// BetList is the response of GET /bets/chat/{chatId}.
type BetList struct {
	Bets  []Bet `json:"bets"`
	Count int   `json:"count"`
}

// BetDetail is the response of GET /bets/{betId}.
type BetDetail struct {
	Bet
	Participants []Participant `json:"participants"`
	Totals       BetTotals     `json:"totals"`
	MyStake      *Participant  `json:"myStake"`
}

// ParticipantList is the response of GET /bets/{betId}/participants.
type ParticipantList struct {
	Participants []Participant `json:"participants"`
	Totals       BetTotals     `json:"totals"`
}

// MyStake is the response of GET /bets/{betId}/my-stake.
type MyStake struct {
	HasStake bool         `json:"hasStake"`
	Stake    *Participant `json:"stake"`
}

// Proof defines model for Proof.
type Proof struct {
	ProofId      string    `json:"proofId"`
	BetId        string    `json:"betId"`
	UserId       string    `json:"userId"`
	MediaType    string    `json:"mediaType"`
	MediaUrl     string    `json:"mediaUrl"`
	MediaKey     string    `json:"mediaKey"`
	ThumbnailUrl *string   `json:"thumbnailUrl,omitempty"`
	ThumbnailKey *string   `json:"thumbnailKey,omitempty"`
	Caption      *string   `json:"caption,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ProofList is the response of GET /bets/{betId}/proofs.
type ProofList struct {
	Proofs []Proof `json:"proofs"`
	Count  int     `json:"count"`
}

// Resolution defines model for Resolution.
type Resolution struct {
	ResolutionId string    `json:"resolutionId"`
	BetId        string    `json:"betId"`
	Outcome      string    `json:"outcome"`
	ResolvedBy   string    `json:"resolvedBy"`
	ResolvedAt   time.Time `json:"resolvedAt"`
	Notes        *string   `json:"notes,omitempty"`
}

// Payout defines model for Payout.
type Payout struct {
	UserId string `json:"userId"`
	Stake  int64  `json:"stake"`
	Amount int64  `json:"amount"`
	Type   string `json:"type"`
}

// Settlement describes how the pot of a resolved bet was distributed.
type Settlement struct {
	TotalPot    int64    `json:"totalPot"`
	WinningPool int64    `json:"winningPool"`
	Payouts     []Payout `json:"payouts"`
	Remainder   int64    `json:"remainder"`
}

// ResolveResponse is the response of POST /bets/{betId}/resolve.
type ResolveResponse struct {
	Resolution Resolution `json:"resolution"`
	Bet        Bet        `json:"bet"`
	Settlement Settlement `json:"settlement"`
}

// ResolutionResponse is the response of GET /bets/{betId}/resolution.
type ResolutionResponse struct {
	Resolution *Resolution `json:"resolution"`
}

// SuccessResponse defines model for SuccessResponse.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// AutoExpireResponse is the response of POST /bets/auto-expire.
type AutoExpireResponse struct {
	Success      bool `json:"success"`
	ExpiredCount int  `json:"expiredCount"`
}

// Balance is the response of GET /aura/balance.
type Balance struct {
	UserId         string `json:"userId"`
	AuraBalance    int64  `json:"auraBalance"`
	LifetimeEarned int64  `json:"lifetimeEarned"`
	LifetimeSpent  int64  `json:"lifetimeSpent"`
}

// Transaction defines model for Transaction.
type Transaction struct {
	TransactionId string    `json:"transactionId"`
	UserId        string    `json:"userId"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balanceAfter"`
	Type          string    `json:"type"`
	ReferenceId   *string   `json:"referenceId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// TransactionList is the response of GET /aura/transactions.
type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Count        int           `json:"count"`
}

// Reputation defines model for Reputation.
type Reputation struct {
	UserId          string `json:"userId"`
	BetsCompleted   int64  `json:"betsCompleted"`
	BetsFailed      int64  `json:"betsFailed"`
	CalloutsIgnored int64  `json:"calloutsIgnored"`
	VibeScore       int64  `json:"vibeScore"`
}

// Error is the body of every non-2xx response.
type Error struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ListChatBetsParams defines parameters for ListChatBets.
type ListChatBetsParams struct {
	Status *string `form:"status,omitempty" json:"status,omitempty"`
	Limit  *int    `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListTransactionsParams defines parameters for ListTransactions.
type ListTransactionsParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}
