package storage

import (
	"context"
	"time"

	"github.com/chris/aura-wagers/pkg/models"
)

// ProofStore defines the interface for the proof log.
type ProofStore interface {
	// CreateProof stores a proof if its bet is still active and before its deadline at now.
	CreateProof(ctx context.Context, proof *models.Proof, now time.Time) error

	// GetProof retrieves a proof by its ID.
	GetProof(ctx context.Context, proofID string) (*models.Proof, error)

	// ListProofs retrieves a bet's proofs newest first.
	ListProofs(ctx context.Context, betID string) ([]models.Proof, error)

	// DeleteProof removes a proof if its bet is still active.
	DeleteProof(ctx context.Context, proof *models.Proof) error
}
