package broadcaster

import (
	"context"
	"errors"
)

// Func adapts a function to the Broadcaster interface.
type Func func(ctx context.Context, event Event) error

// Broadcast satisfies the Broadcaster interface.
func (f Func) Broadcast(ctx context.Context, event Event) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

// Fanout multicasts config events to several channels, e.g. an IoT topic
// plus an audit sink. Delivery is best effort: every channel sees the event
// even when an earlier one fails.
type Fanout struct {
	channels []Broadcaster
}

var _ Broadcaster = (*Fanout)(nil)

// NewFanout composes the given channels into one broadcaster. Nil entries
// are skipped so callers can pass optional channels unconditionally.
func NewFanout(channels ...Broadcaster) *Fanout {
	out := &Fanout{channels: make([]Broadcaster, 0, len(channels))}
	for _, ch := range channels {
		if ch != nil {
			out.channels = append(out.channels, ch)
		}
	}
	return out
}

// Compose collapses a channel list to the cheapest equivalent broadcaster:
// none becomes a Nop, a single channel is returned as is.
func Compose(channels ...Broadcaster) Broadcaster {
	filtered := make([]Broadcaster, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			filtered = append(filtered, ch)
		}
	}
	switch len(filtered) {
	case 0:
		return &Nop{}
	case 1:
		return filtered[0]
	default:
		return NewFanout(filtered...)
	}
}

// Broadcast delivers the event to every channel and joins whatever errors
// came back after all deliveries were attempted.
func (f *Fanout) Broadcast(ctx context.Context, event Event) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Broadcast(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
