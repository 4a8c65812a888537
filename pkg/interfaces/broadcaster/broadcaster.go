package broadcaster

import "context"

// Event carries domain notifications destined for external pub/sub channels.
type Event struct {
	ID      string
	Topic   string
	Name    string
	Payload any
}

// Broadcaster pushes events to IoT topics, WebSocket bridges, webhooks, etc.
type Broadcaster interface {
	Broadcast(ctx context.Context, event Event) error
}

// Nop broadcaster discards events.
type Nop struct{}

var _ Broadcaster = (*Nop)(nil)

func (n *Nop) Broadcast(ctx context.Context, event Event) error { return nil }
