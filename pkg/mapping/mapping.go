// Package mapping converts between domain models and API bodies.
package mapping

import (
	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/models"
)

// Value dereferences an optional string, treating nil as empty.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Limit converts an optional list limit for the engine: absent selects the default (0) and
// explicit values below 1 become 1.
func Limit(p *int) int {
	if p == nil {
		return 0
	}
	if *p < 1 {
		return 1
	}
	return *p
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToDomainNewBet converts an API NewBet to the engine's create input.
func ToDomainNewBet(b *api.NewBet) aura.CreateBetInput {
	return aura.CreateBetInput{
		ChatID:       b.ChatId,
		BetType:      models.BetType(b.BetType),
		Description:  b.Description,
		Deadline:     b.Deadline,
		TargetUserID: Value(b.TargetUserId),
	}
}

// ToDomainNewProof converts an API NewProof to the engine's submit input.
func ToDomainNewProof(p *api.NewProof) aura.SubmitProofInput {
	return aura.SubmitProofInput{
		MediaType:    models.MediaType(p.MediaType),
		MediaURL:     p.MediaUrl,
		MediaKey:     p.MediaKey,
		ThumbnailURL: Value(p.ThumbnailUrl),
		ThumbnailKey: Value(p.ThumbnailKey),
		Caption:      Value(p.Caption),
	}
}

// ToApiBet converts a domain Bet to an API Bet.
func ToApiBet(b *models.Bet) api.Bet {
	return api.Bet{
		BetId:        b.BetID,
		ChatId:       b.ChatID,
		CreatorId:    b.CreatorID,
		BetType:      string(b.BetType),
		Description:  b.Description,
		Deadline:     b.Deadline,
		TargetUserId: optional(b.TargetUserID),
		Status:       string(b.Status),
		StakeCount:   b.StakeCount,
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
		ResolvedAt:   b.ResolvedAt,
	}
}

// ToApiBets converts a slice of domain Bets.
func ToApiBets(bets []models.Bet) []api.Bet {
	out := make([]api.Bet, len(bets))
	for i := range bets {
		out[i] = ToApiBet(&bets[i])
	}
	return out
}

// ToApiParticipant converts a domain Stake to an API Participant.
func ToApiParticipant(s *models.Stake) api.Participant {
	return api.Participant{
		ParticipantId: s.ParticipantID,
		BetId:         s.BetID,
		UserId:        s.UserID,
		Side:          string(s.Side),
		Amount:        s.Amount,
		CreatedAt:     s.CreatedAt,
	}
}

// ToApiParticipants converts a slice of domain Stakes.
func ToApiParticipants(stakes []models.Stake) []api.Participant {
	out := make([]api.Participant, len(stakes))
	for i := range stakes {
		out[i] = ToApiParticipant(&stakes[i])
	}
	return out
}

// ToApiTotals converts domain BetTotals.
func ToApiTotals(t models.BetTotals) api.BetTotals {
	return api.BetTotals{
		TotalYes: t.TotalYes,
		TotalNo:  t.TotalNo,
		TotalPot: t.TotalPot,
		YesCount: t.YesCount,
		NoCount:  t.NoCount,
	}
}

// ToApiBetDetail converts the engine's bet detail view.
func ToApiBetDetail(d *aura.BetDetail) api.BetDetail {
	out := api.BetDetail{
		Bet:          ToApiBet(d.Bet),
		Participants: ToApiParticipants(d.Participants),
		Totals:       ToApiTotals(d.Totals),
	}
	if d.MyStake != nil {
		p := ToApiParticipant(d.MyStake)
		out.MyStake = &p
	}
	return out
}

// ToApiProof converts a domain Proof to an API Proof.
func ToApiProof(p *models.Proof) api.Proof {
	return api.Proof{
		ProofId:      p.ProofID,
		BetId:        p.BetID,
		UserId:       p.UserID,
		MediaType:    string(p.MediaType),
		MediaUrl:     p.MediaURL,
		MediaKey:     p.MediaKey,
		ThumbnailUrl: optional(p.ThumbnailURL),
		ThumbnailKey: optional(p.ThumbnailKey),
		Caption:      optional(p.Caption),
		CreatedAt:    p.CreatedAt,
	}
}

// ToApiProofs converts a slice of domain Proofs.
func ToApiProofs(proofs []models.Proof) []api.Proof {
	out := make([]api.Proof, len(proofs))
	for i := range proofs {
		out[i] = ToApiProof(&proofs[i])
	}
	return out
}

// ToApiResolution converts a domain Resolution.
func ToApiResolution(r *models.Resolution) api.Resolution {
	return api.Resolution{
		ResolutionId: r.ResolutionID,
		BetId:        r.BetID,
		Outcome:      string(r.Outcome),
		ResolvedBy:   r.ResolvedBy,
		ResolvedAt:   r.ResolvedAt,
		Notes:        optional(r.Notes),
	}
}

// ToApiSettlement converts the payout breakdown of a resolution.
func ToApiSettlement(s aura.Settlement) api.Settlement {
	payouts := make([]api.Payout, len(s.Payouts))
	for i, p := range s.Payouts {
		payouts[i] = api.Payout{UserId: p.UserID, Stake: p.Stake, Amount: p.Amount, Type: string(p.Type)}
	}
	return api.Settlement{
		TotalPot:    s.Totals.TotalPot,
		WinningPool: s.WinningPool,
		Payouts:     payouts,
		Remainder:   s.Remainder,
	}
}

// ToApiResolveResponse converts the result of a resolution.
func ToApiResolveResponse(r *aura.ResolveResult) api.ResolveResponse {
	return api.ResolveResponse{
		Resolution: ToApiResolution(r.Resolution),
		Bet:        ToApiBet(r.Bet),
		Settlement: ToApiSettlement(r.Settlement),
	}
}

// ToApiBalance converts a domain Account to an API Balance.
func ToApiBalance(a *models.Account) api.Balance {
	return api.Balance{
		UserId:         a.UserID,
		AuraBalance:    a.AuraBalance,
		LifetimeEarned: a.LifetimeEarned,
		LifetimeSpent:  a.LifetimeSpent,
	}
}

// ToApiTransaction converts a domain Transaction to an API Transaction.
func ToApiTransaction(tx *models.Transaction) api.Transaction {
	return api.Transaction{
		TransactionId: tx.TransactionID,
		UserId:        tx.UserID,
		Amount:        tx.Amount,
		BalanceAfter:  tx.BalanceAfter,
		Type:          string(tx.Type),
		ReferenceId:   optional(tx.ReferenceID),
		CreatedAt:     tx.CreatedAt,
	}
}

// ToApiTransactions converts a slice of domain Transactions.
func ToApiTransactions(txs []models.Transaction) []api.Transaction {
	out := make([]api.Transaction, len(txs))
	for i := range txs {
		out[i] = ToApiTransaction(&txs[i])
	}
	return out
}

// ToApiReputation converts domain Reputation.
func ToApiReputation(r *models.Reputation) api.Reputation {
	return api.Reputation{
		UserId:          r.UserID,
		BetsCompleted:   r.BetsCompleted,
		BetsFailed:      r.BetsFailed,
		CalloutsIgnored: r.CalloutsIgnored,
		VibeScore:       r.VibeScore,
	}
}
