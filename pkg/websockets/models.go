package websockets

// MessageType defines the type of a WebSocket message.
type MessageType string

const (
	// MessageTypeAuraUpdate is for messages that update aura balances.
	MessageTypeAuraUpdate MessageType = "auraUpdate"
	// MessageTypeBetResolved announces that a bet reached a terminal state.
	MessageTypeBetResolved MessageType = "betResolved"
)

// Message represents a generic WebSocket message.
type Message struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// AuraUpdatePayload is the payload for an auraUpdate message.
type AuraUpdatePayload struct {
	UserID        string `json:"userId"`
	TransactionID string `json:"transactionId"`
	Type          string `json:"type"`
	Change        int64  `json:"change"`
	NewBalance    int64  `json:"newBalance"`
}

// BetResolvedPayload is the payload for a betResolved message.
type BetResolvedPayload struct {
	BetID    string `json:"betId"`
	ChatID   string `json:"chatId"`
	Outcome  string `json:"outcome"`
	Status   string `json:"status"`
	TotalPot int64  `json:"totalPot"`
}
