package stakes

import (
	"context"
	"net/http"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/handlers/respond"
	"github.com/chris/aura-wagers/pkg/mapping"
	"github.com/chris/aura-wagers/pkg/models"
)

// Engine is the part of the wagering engine the stake handlers use.
type Engine interface {
	PlaceStake(ctx context.Context, betID, userID string, side models.Side, amount int64) (*models.Stake, error)
	Participants(ctx context.Context, betID, callerID string) (*aura.Participants, error)
	GetStake(ctx context.Context, betID, userID string) (*models.Stake, error)
}

// StakesHandler holds the dependencies for stake handlers.
type StakesHandler struct {
	Engine Engine
}

// NewStakesHandler creates a new StakesHandler.
func NewStakesHandler(engine Engine) *StakesHandler {
	return &StakesHandler{Engine: engine}
}

// PlaceStake stakes the caller's Aura on one side of a bet.
func (h *StakesHandler) PlaceStake(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var req api.NewStake
	if !respond.Decode(w, r, &req) {
		return
	}

	stake, err := h.Engine.PlaceStake(r.Context(), betId, callerID, models.Side(req.Side), req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiParticipant(stake))
}

// GetParticipants lists a bet's stakes and totals for members of its chat.
func (h *StakesHandler) GetParticipants(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	p, err := h.Engine.Participants(r.Context(), betId, callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.ParticipantList{
		Participants: mapping.ToApiParticipants(p.Stakes),
		Totals:       mapping.ToApiTotals(p.Totals),
	})
}

// GetMyStake reports whether the caller holds a stake on the bet.
func (h *StakesHandler) GetMyStake(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	stake, err := h.Engine.GetStake(r.Context(), betId, callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	out := api.MyStake{HasStake: stake != nil}
	if stake != nil {
		p := mapping.ToApiParticipant(stake)
		out.Stake = &p
	}
	respond.JSON(w, http.StatusOK, out)
}
