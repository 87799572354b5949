package aura

import (
	"math/bits"

	"github.com/chris/aura-wagers/pkg/models"
)

// Payout is one credit owed when a bet resolves.
type Payout struct {
	UserID string
	Stake  int64
	Amount int64
	Type   models.TransactionType
}

// Settlement is the ledger effect of resolving a bet.
type Settlement struct {
	Outcome     models.Outcome
	Totals      models.BetTotals
	WinningPool int64
	// Payouts holds only non-zero credits.
	Payouts []Payout
	// Remainder is the part of the pot floor division left undistributed.
	Remainder int64
}

// Paid returns the sum of all payouts.
func (s Settlement) Paid() int64 {
	var total int64
	for _, p := range s.Payouts {
		total += p.Amount
	}
	return total
}

// Totals aggregates a bet's stakes.
func Totals(stakes []models.Stake) models.BetTotals {
	var t models.BetTotals
	for _, s := range stakes {
		switch s.Side {
		case models.SideYes:
			t.TotalYes += s.Amount
			t.YesCount++
		case models.SideNo:
			t.TotalNo += s.Amount
			t.NoCount++
		}
	}
	t.TotalPot = t.TotalYes + t.TotalNo
	return t
}

// Settle computes pari-mutuel payouts. Winners share the whole pot in proportion to their
// stake, rounded down. Expired and ducked bets, and bets nobody won, refund every stake.
func Settle(stakes []models.Stake, outcome models.Outcome) Settlement {
	s := Settlement{Outcome: outcome, Totals: Totals(stakes)}

	var winningSide models.Side
	switch outcome {
	case models.OutcomeYes:
		winningSide, s.WinningPool = models.SideYes, s.Totals.TotalYes
	case models.OutcomeNo:
		winningSide, s.WinningPool = models.SideNo, s.Totals.TotalNo
	}

	if winningSide == "" || s.WinningPool == 0 {
		for _, st := range stakes {
			if st.Amount > 0 {
				s.Payouts = append(s.Payouts, Payout{UserID: st.UserID, Stake: st.Amount, Amount: st.Amount, Type: models.TransactionTypeRefund})
			}
		}
		return s
	}

	for _, st := range stakes {
		if st.Side != winningSide {
			continue
		}
		amount := proRata(st.Amount, s.Totals.TotalPot, s.WinningPool)
		if amount > 0 {
			s.Payouts = append(s.Payouts, Payout{UserID: st.UserID, Stake: st.Amount, Amount: amount, Type: models.TransactionTypePayout})
		}
	}
	s.Remainder = s.Totals.TotalPot - s.Paid()
	return s
}

// proRata returns floor(stake*pot/pool) without overflowing. stake <= pool keeps the
// quotient within 64 bits.
func proRata(stake, pot, pool int64) int64 {
	hi, lo := bits.Mul64(uint64(stake), uint64(pot))
	q, _ := bits.Div64(hi, lo, uint64(pool))
	return int64(q)
}
