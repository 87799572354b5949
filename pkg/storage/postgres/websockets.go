package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// AddConnection saves a websocket connection ID.
func (s *Store) AddConnection(ctx context.Context, connectionID string) error {
	_, err := s.Db.Exec(ctx, "INSERT INTO connections (connection_id) VALUES ($1) ON CONFLICT DO NOTHING", connectionID)
	if err != nil {
		return fmt.Errorf("failed to add connection: %w", err)
	}
	return nil
}

// RemoveConnection deletes a websocket connection ID.
func (s *Store) RemoveConnection(ctx context.Context, connectionID string) error {
	_, err := s.Db.Exec(ctx, "DELETE FROM connections WHERE connection_id = $1", connectionID)
	if err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

// GetAllConnections lists websocket connection IDs.
func (s *Store) GetAllConnections(ctx context.Context) ([]string, error) {
	rows, err := s.Db.Query(ctx, "SELECT connection_id FROM connections ORDER BY connection_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan connections: %w", err)
	}
	return ids, nil
}
