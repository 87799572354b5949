package bets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/handlers/respond"
	"github.com/chris/aura-wagers/pkg/mapping"
	"github.com/chris/aura-wagers/pkg/middleware"
	"github.com/chris/aura-wagers/pkg/models"
)

// Engine is the part of the wagering engine the bet handlers use.
type Engine interface {
	CreateBet(ctx context.Context, creatorID string, in aura.CreateBetInput) (*models.Bet, error)
	BetDetail(ctx context.Context, betID, callerID string) (*aura.BetDetail, error)
	ListBetsByChat(ctx context.Context, chatID string, status models.BetStatus, limit int) ([]models.Bet, error)
	Resolve(ctx context.Context, betID, resolvedBy string, outcome models.Outcome, notes string) (*aura.ResolveResult, error)
	GetResolution(ctx context.Context, betID string) (*models.Resolution, error)
	AutoExpire(ctx context.Context) (int, error)
}

// BetsHandler holds the dependencies for bet lifecycle handlers.
type BetsHandler struct {
	Engine Engine
}

// NewBetsHandler creates a new BetsHandler.
func NewBetsHandler(engine Engine) *BetsHandler {
	return &BetsHandler{Engine: engine}
}

// CreateBet opens a bet for the caller.
func (h *BetsHandler) CreateBet(w http.ResponseWriter, r *http.Request) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var newBet api.NewBet
	if !respond.Decode(w, r, &newBet) {
		return
	}

	bet, err := h.Engine.CreateBet(r.Context(), callerID, mapping.ToDomainNewBet(&newBet))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiBet(bet))
}

// GetBet returns the bet with its participants, totals and the caller's stake.
func (h *BetsHandler) GetBet(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	detail, err := h.Engine.BetDetail(r.Context(), betId, callerID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiBetDetail(detail))
}

// ListChatBets lists a chat's bets newest first.
func (h *BetsHandler) ListChatBets(w http.ResponseWriter, r *http.Request, chatId string, params api.ListChatBetsParams) {
	limit := mapping.Limit(params.Limit)
	status := models.BetStatus(mapping.Value(params.Status))

	bets, err := h.Engine.ListBetsByChat(r.Context(), chatId, status, limit)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.BetList{Bets: mapping.ToApiBets(bets), Count: len(bets)})
}

// ResolveBet records the outcome and pays out.
func (h *BetsHandler) ResolveBet(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var req api.ResolveRequest
	if !respond.Decode(w, r, &req) {
		return
	}

	result, err := h.Engine.Resolve(r.Context(), betId, callerID, models.Outcome(req.Outcome), mapping.Value(req.Notes))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, mapping.ToApiResolveResponse(result))
}

// GetResolution returns the bet's resolution, or null while it is open.
func (h *BetsHandler) GetResolution(w http.ResponseWriter, r *http.Request, betId string) {
	res, err := h.Engine.GetResolution(r.Context(), betId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	var out api.ResolutionResponse
	if res != nil {
		apiRes := mapping.ToApiResolution(res)
		out.Resolution = &apiRes
	}
	respond.JSON(w, http.StatusOK, out)
}

// AutoExpireBets runs the expiry sweep on demand. Admin only.
func (h *BetsHandler) AutoExpireBets(w http.ResponseWriter, r *http.Request) {
	if !middleware.IsAdmin(r.Context()) {
		respond.Error(w, r, aura.ErrNotAuthorized.WithMessage("auto-expire requires the admin role"))
		return
	}

	expired, err := h.Engine.AutoExpire(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "expiry sweep finished with failures", "expired", expired, "error", err)
	}
	respond.JSON(w, http.StatusOK, api.AutoExpireResponse{Success: err == nil, ExpiredCount: expired})
}
