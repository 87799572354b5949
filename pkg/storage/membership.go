package storage

import "context"

// MembershipChecker answers whether a user belongs to a chat.
// Membership is owned by the chat service; the engine only reads it.
type MembershipChecker interface {
	IsUserInChat(ctx context.Context, userID, chatID string) (bool, error)
}
