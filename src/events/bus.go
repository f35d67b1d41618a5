// Package events defines the pub/sub bus the coordinator publishes refresh
// results and build transitions to, with in-memory and Redpanda backends.
package events

import "context"

// Bus abstracts message publishing and consumption. The TUI consumes from
// the in-memory bus; the Redpanda bus exists for downstream automation in
// headless mode. Nothing in this application consumes bus messages to drive
// state: publishing is outward-only and best-effort.
type Bus interface {
	// Publish sends a message to a topic. The key is used for partition
	// assignment on Kafka-compatible backends and ignored in memory.
	Publish(ctx context.Context, topic string, key string, value []byte) error

	// Subscribe returns a channel of messages for a topic. groupID is the
	// consumer group on Kafka-compatible backends and ignored in memory.
	Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error)

	// Close shuts the bus down; subscriber channels are closed.
	Close() error
}

// Message is one consumed bus message.
type Message struct {
	Topic     string
	Key       string
	Value     []byte
	Offset    int64
	Partition int32
	Timestamp int64
}
