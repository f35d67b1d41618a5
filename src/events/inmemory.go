package events

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// subscriberBuffer is the channel capacity per subscriber. A subscriber that
// falls further behind than this loses the oldest-pending messages rather
// than blocking the publisher: a refresh must never stall on a slow UI.
const subscriberBuffer = 64

// InMemoryBus is a process-local fan-out implementation of Bus.
type InMemoryBus struct {
	mu     sync.Mutex
	subs   map[string][]chan Message
	closed bool
}

// NewInMemoryBus creates an empty in-memory bus.
func NewInMemoryBus() *InMemoryBus {
	return &InMemoryBus{
		subs: make(map[string][]chan Message),
	}
}

// Publish delivers the message to every current subscriber of the topic.
func (b *InMemoryBus) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("bus is closed")
	}

	msg := Message{
		Topic:     topic,
		Key:       key,
		Value:     value,
		Timestamp: time.Now().UnixMilli(),
	}
	for _, ch := range b.subs[topic] {
		select {
		case ch <- msg:
		default:
			// Drop for this subscriber; see subscriberBuffer.
		}
	}
	return nil
}

// Subscribe registers a new subscriber channel for the topic. groupID is
// ignored in memory.
func (b *InMemoryBus) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	ch := make(chan Message, subscriberBuffer)
	b.subs[topic] = append(b.subs[topic], ch)
	return ch, nil
}

// Close closes all subscriber channels. Further publishes fail.
func (b *InMemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, chans := range b.subs {
		for _, ch := range chans {
			close(ch)
		}
	}
	b.subs = nil
	return nil
}
