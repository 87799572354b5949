package handlers

import (
	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/handlers/bets"
	"github.com/chris/aura-wagers/pkg/handlers/ledger"
	"github.com/chris/aura-wagers/pkg/handlers/proofs"
	"github.com/chris/aura-wagers/pkg/handlers/stakes"
)

// ApiHandler implements the generated server interface by composing the per-area handlers.
type ApiHandler struct {
	*bets.BetsHandler
	*stakes.StakesHandler
	*proofs.ProofsHandler
	*ledger.LedgerHandler
}

// NewApiHandler creates a new ApiHandler over the engine.
func NewApiHandler(engine *aura.Engine) *ApiHandler {
	return &ApiHandler{
		BetsHandler:   bets.NewBetsHandler(engine),
		StakesHandler: stakes.NewStakesHandler(engine),
		ProofsHandler: proofs.NewProofsHandler(engine),
		LedgerHandler: ledger.NewLedgerHandler(engine),
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)
