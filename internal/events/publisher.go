package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// metadataPartitionKey names the message metadata that picks the Kafka
// partition. Events for one learner share a partition and stay ordered.
const metadataPartitionKey = "partition_key"

// EventPublisher publishes attempt lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, event *QuizEvent) error
	Close() error
}

// WatermillEventPublisher sends events as JSON messages through any
// Watermill publisher.
type WatermillEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{publisher: publisher, topic: topic, logger: logger}
}

// NewKafkaEventPublisher dials the brokers and partitions by learner.
func NewKafkaEventPublisher(brokers []string, topic string, logger *slog.Logger) (*WatermillEventPublisher, error) {
	partitioned := kafka.NewWithPartitioningMarshaler(func(_ string, msg *message.Message) (string, error) {
		if key := msg.Metadata.Get(metadataPartitionKey); key != "" {
			return key, nil
		}
		return msg.UUID, nil
	})

	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   brokers,
		Marshaler: partitioned,
	}, watermill.NewSlogLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewWatermillEventPublisher(publisher, topic, logger), nil
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event *QuizEvent) error {
	msg, err := toMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event %s: %w", event.Type, event.ID, err)
	}

	p.logger.Debug("Published quiz event",
		"event_id", event.ID,
		"event_type", event.Type,
		"topic", p.topic)
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

func toMessage(ctx context.Context, event *QuizEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("version", event.Version)
	msg.Metadata.Set("occurred_at", event.Timestamp.Format(time.RFC3339Nano))
	if learnerID, ok := event.Metadata["learner_id"].(string); ok {
		msg.Metadata.Set(metadataPartitionKey, learnerID)
	}
	return msg, nil
}

// ===== IN-MEMORY PUBLISHER =====

// MockEventPublisher keeps events in memory. It stands in when publishing is
// disabled and in tests. Setting Err makes every Publish fail.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []QuizEvent
	logger *slog.Logger
	Err    error
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(_ context.Context, event *QuizEvent) error {
	if m.Err != nil {
		return m.Err
	}

	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	m.logger.Debug("Recorded quiz event in memory", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

func (m *MockEventPublisher) GetPublishedEvents() []QuizEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]QuizEvent(nil), m.events...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}
