package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/twmb/franz-go/pkg/kgo"
)

// RedpandaBus is a Kafka-compatible Bus backed by franz-go. The watcher uses
// it to publish build transitions for downstream automation when
// REDPANDA_BROKERS is set.
type RedpandaBus struct {
	client    *kgo.Client
	brokers   []string
	mu        sync.Mutex
	consumers []*kgo.Client
	closed    bool
}

// NewRedpandaBus connects a producer client to the given broker addresses
// (e.g. ["localhost:19092"]).
func NewRedpandaBus(brokers []string) (*RedpandaBus, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("at least one broker address is required")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka client: %w", err)
	}

	return &RedpandaBus{
		client:  client,
		brokers: brokers,
	}, nil
}

// Publish produces the record synchronously. Callers treat failures as
// log-and-continue; a refresh never fails because the bus is down.
func (b *RedpandaBus) Publish(ctx context.Context, topic string, key string, value []byte) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return fmt.Errorf("bus is closed")
	}

	record := &kgo.Record{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
	}
	if err := b.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}
	return nil
}

// Subscribe creates a consumer for the topic in the given group and returns
// its message channel. The consumer runs until ctx is cancelled or the bus
// is closed.
func (b *RedpandaBus) Subscribe(ctx context.Context, topic string, groupID string) (<-chan Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("bus is closed")
	}

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(b.brokers...),
		kgo.ConsumerGroup(groupID),
		kgo.ConsumeTopics(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %w", err)
	}
	b.consumers = append(b.consumers, consumer)

	ch := make(chan Message, subscriberBuffer)
	go consumeLoop(ctx, consumer, ch)
	return ch, nil
}

func consumeLoop(ctx context.Context, consumer *kgo.Client, ch chan<- Message) {
	defer close(ch)
	for {
		if ctx.Err() != nil {
			return
		}
		fetches := consumer.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return
		}
		fetches.EachRecord(func(record *kgo.Record) {
			msg := Message{
				Topic:     record.Topic,
				Key:       string(record.Key),
				Value:     record.Value,
				Offset:    record.Offset,
				Partition: record.Partition,
				Timestamp: record.Timestamp.UnixMilli(),
			}
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		})
	}
}

// Close shuts down the producer and all consumers.
func (b *RedpandaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, c := range b.consumers {
		c.Close()
	}
	b.client.Close()
	return nil
}
