package proofs

import (
	"context"
	"net/http"

	"github.com/chris/aura-wagers/pkg/api"
	"github.com/chris/aura-wagers/pkg/aura"
	"github.com/chris/aura-wagers/pkg/handlers/respond"
	"github.com/chris/aura-wagers/pkg/mapping"
	"github.com/chris/aura-wagers/pkg/models"
)

// Engine is the part of the wagering engine the proof handlers use.
type Engine interface {
	SubmitProof(ctx context.Context, betID, userID string, in aura.SubmitProofInput) (*models.Proof, error)
	ListProofs(ctx context.Context, betID string) ([]models.Proof, error)
	DeleteProof(ctx context.Context, proofID, userID string) error
}

// ProofsHandler holds the dependencies for proof handlers.
type ProofsHandler struct {
	Engine Engine
}

// NewProofsHandler creates a new ProofsHandler.
func NewProofsHandler(engine Engine) *ProofsHandler {
	return &ProofsHandler{Engine: engine}
}

// SubmitProof attaches media evidence to a bet.
func (h *ProofsHandler) SubmitProof(w http.ResponseWriter, r *http.Request, betId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	var req api.NewProof
	if !respond.Decode(w, r, &req) {
		return
	}

	proof, err := h.Engine.SubmitProof(r.Context(), betId, callerID, mapping.ToDomainNewProof(&req))
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, mapping.ToApiProof(proof))
}

// ListProofs lists a bet's proofs newest first.
func (h *ProofsHandler) ListProofs(w http.ResponseWriter, r *http.Request, betId string) {
	proofs, err := h.Engine.ListProofs(r.Context(), betId)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.ProofList{Proofs: mapping.ToApiProofs(proofs), Count: len(proofs)})
}

// DeleteProof removes one of the caller's proofs while the bet is open.
func (h *ProofsHandler) DeleteProof(w http.ResponseWriter, r *http.Request, proofId string) {
	callerID, ok := respond.Caller(w, r)
	if !ok {
		return
	}
	if err := h.Engine.DeleteProof(r.Context(), proofId, callerID); err != nil {
		respond.Error(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, api.SuccessResponse{Success: true})
}
