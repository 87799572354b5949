package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/chris/aura-wagers/pkg/models"
	"github.com/chris/aura-wagers/pkg/storage"
)

const proofColumns = "proof_id, bet_id, user_id, media_type, media_url, media_key, thumbnail_url, thumbnail_key, caption, created_at"

func scanProof(row pgx.Row) (models.Proof, error) {
	var p models.Proof
	err := row.Scan(&p.ProofID, &p.BetID, &p.UserID, &p.MediaType, &p.MediaURL, &p.MediaKey,
		&p.ThumbnailURL, &p.ThumbnailKey, &p.Caption, &p.CreatedAt)
	return p, err
}

// lockActiveBet takes a share lock on the bet if it is active and, when deadline is set,
// not past it. Resolution waits for the lock to be released.
func lockActiveBet(ctx context.Context, tx pgx.Tx, betID string, now *time.Time) error {
	var id string
	err := tx.QueryRow(ctx,
		`SELECT bet_id FROM bets
		  WHERE bet_id = $1 AND status = $2 AND ($3::timestamptz IS NULL OR deadline >= $3::timestamptz)
		  FOR SHARE`,
		betID, string(models.BetStatusActive), now,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrBetNotActive
		}
		return fmt.Errorf("failed to lock bet: %w", err)
	}
	return nil
}

// CreateProof stores a proof if its bet is still active and before its deadline at now.
func (s *Store) CreateProof(ctx context.Context, proof *models.Proof, now time.Time) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockActiveBet(ctx, tx, proof.BetID, &now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			"INSERT INTO proofs ("+proofColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
			proof.ProofID, proof.BetID, proof.UserID, string(proof.MediaType), proof.MediaURL, proof.MediaKey,
			proof.ThumbnailURL, proof.ThumbnailKey, proof.Caption, proof.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("proof insert failed: %w", err)
		}
		return nil
	})
}

// GetProof retrieves a proof by its ID.
func (s *Store) GetProof(ctx context.Context, proofID string) (*models.Proof, error) {
	p, err := scanProof(s.Db.QueryRow(ctx, "SELECT "+proofColumns+" FROM proofs WHERE proof_id = $1", proofID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrProofNotFound
		}
		return nil, fmt.Errorf("failed to get proof: %w", err)
	}
	return &p, nil
}

// ListProofs retrieves a bet's proofs newest first.
func (s *Store) ListProofs(ctx context.Context, betID string) ([]models.Proof, error) {
	rows, err := s.Db.Query(ctx,
		"SELECT "+proofColumns+" FROM proofs WHERE bet_id = $1 ORDER BY created_at DESC", betID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proofs: %w", err)
	}
	proofs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Proof, error) {
		return scanProof(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan proofs: %w", err)
	}
	return proofs, nil
}

// DeleteProof removes a proof if its bet is still active.
func (s *Store) DeleteProof(ctx context.Context, proof *models.Proof) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		if err := lockActiveBet(ctx, tx, proof.BetID, nil); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, "DELETE FROM proofs WHERE proof_id = $1", proof.ProofID)
		if err != nil {
			return fmt.Errorf("proof delete failed: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return storage.ErrProofNotFound
		}
		return nil
	})
}
