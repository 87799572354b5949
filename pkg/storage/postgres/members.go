package postgres

import (
	"context"
	"fmt"
)

// IsUserInChat reports whether userID is registered in chatID.
func (s *Store) IsUserInChat(ctx context.Context, userID, chatID string) (bool, error) {
	var ok bool
	err := s.Db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = $1 AND user_id = $2)", chatID, userID,
	).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("failed to check chat membership: %w", err)
	}
	return ok, nil
}

// AddChatMember registers userID in chatID. The chat service owns membership; this exists for
// seeding and tests.
func (s *Store) AddChatMember(ctx context.Context, chatID, userID string) error {
	_, err := s.Db.Exec(ctx,
		"INSERT INTO chat_members (chat_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", chatID, userID)
	if err != nil {
		return fmt.Errorf("failed to add chat member: %w", err)
	}
	return nil
}
