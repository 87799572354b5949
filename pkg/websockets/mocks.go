package websockets

import (
	"context"
	"sync"
)

// NoOpPublisher is a publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, message Message) error {
	return nil
}

// RecordingPublisher keeps every published message. Useful in tests.
type RecordingPublisher struct {
	mu       sync.Mutex
	Messages []Message
}

// Publish records the message.
func (p *RecordingPublisher) Publish(ctx context.Context, message Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Messages = append(p.Messages, message)
	return nil
}

// OfType returns the recorded messages of type t.
func (p *RecordingPublisher) OfType(t MessageType) []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Message
	for _, m := range p.Messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
