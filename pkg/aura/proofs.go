package aura

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

// SubmitProofInput describes uploaded evidence. URLs and keys are opaque to the engine.
type SubmitProofInput struct {
	MediaType    models.MediaType
	MediaURL     string
	MediaKey     string
	ThumbnailURL string
	ThumbnailKey string
	Caption      string
}

// SubmitProof attaches evidence to an open bet. Only the bet's actor may submit.
func (e *Engine) SubmitProof(ctx context.Context, betID, userID string, in SubmitProofInput) (*models.Proof, error) {
	bet, err := e.getBet(ctx, betID)
	if err != nil {
		return nil, err
	}
	if bet.Status.Terminal() || e.now().After(bet.Deadline) {
		return nil, ErrCannotSubmitProof
	}
	if userID == "" || userID != bet.Actor() {
		return nil, ErrNotAuthorized.WithMessage("only the person doing the bet can submit proof")
	}
	if !in.MediaType.Valid() {
		return nil, ErrInvalidMediaType
	}
	if strings.TrimSpace(in.MediaURL) == "" || strings.TrimSpace(in.MediaKey) == "" {
		return nil, ErrInvalidMedia
	}
	if utf8.RuneCountInString(in.Caption) > e.policy.MaxCaption {
		return nil, ErrInvalidCaption
	}

	proof := &models.Proof{
		ProofID:      e.newID(),
		BetID:        betID,
		UserID:       userID,
		MediaType:    in.MediaType,
		MediaURL:     in.MediaURL,
		MediaKey:     in.MediaKey,
		ThumbnailURL: in.ThumbnailURL,
		ThumbnailKey: in.ThumbnailKey,
		Caption:      in.Caption,
	}
	now := e.now()
	proof.CreatedAt = now
	err = e.store.CreateProof(ctx, proof, now)
	if errors.Is(err, storage.ErrBetNotActive) {
		return nil, ErrCannotSubmitProof
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create proof: %w", err)
	}
	e.logger.InfoContext(ctx, "proof submitted", "betId", betID, "proofId", proof.ProofID, "mediaType", proof.MediaType)
	return proof, nil
}

// ListProofs returns a bet's proofs newest first.
func (e *Engine) ListProofs(ctx context.Context, betID string) ([]models.Proof, error) {
	if _, err := e.getBet(ctx, betID); err != nil {
		return nil, err
	}
	proofs, err := e.store.ListProofs(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list proofs: %w", err)
	}
	return proofs, nil
}

// DeleteProof removes a proof its author no longer wants, while the bet is still open.
func (e *Engine) DeleteProof(ctx context.Context, proofID, userID string) error {
	proof, err := e.store.GetProof(ctx, proofID)
	if errors.Is(err, storage.ErrProofNotFound) {
		return ErrProofNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get proof: %w", err)
	}
	if proof.UserID != userID {
		return ErrNotAuthorized.WithMessage("only the author can delete a proof")
	}
	bet, err := e.getBet(ctx, proof.BetID)
	if err != nil {
		return err
	}
	if bet.Status.Terminal() {
		return ErrAlreadyResolved.WithMessage("cannot delete proof from a resolved bet")
	}

	err = e.store.DeleteProof(ctx, proof)
	switch {
	case errors.Is(err, storage.ErrProofNotFound):
		return ErrProofNotFound
	case errors.Is(err, storage.ErrBetNotActive):
		return ErrAlreadyResolved.WithMessage("cannot delete proof from a resolved bet")
	case err != nil:
		return fmt.Errorf("failed to delete proof: %w", err)
	}
	return nil
}
