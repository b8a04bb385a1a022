// file: service/publisher.go

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"go-campus-api/common"
	"go-campus-api/logger"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Topics for domain events published to the broker.
const (
	TopicNotificationCreated = "notification.created"
	TopicNotificationRead    = "notification.read"
	TopicNotificationUpdated = "notification.updated"
)

// IEventPublisher is the slice of the publisher consumed by other services.
type IEventPublisher interface {
	Publish(ctx context.Context, topic string, payload interface{}) error
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// messageWriter abstracts the kafka writer for testing.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher performs durable at-least-once publication of domain events
// to Kafka. The connection is established lazily on first publish and
// re-established on demand after a failure; ensureConnected is idempotent.
// Per-topic ordering is whatever the broker's partitioning provides.
type EventPublisher struct {
	mu        sync.Mutex
	state     connState
	writer    messageWriter
	newWriter func() messageWriter
}

// NewEventPublisher creates a publisher for the given brokers. No connection
// is opened until the first Publish.
func NewEventPublisher(brokers []string) *EventPublisher {
	return &EventPublisher{
		state: stateDisconnected,
		newWriter: func() messageWriter {
			return &kafka.Writer{
				Addr:         kafka.TCP(brokers...),
				Balancer:     &kafka.LeastBytes{},
				BatchTimeout: 50 * time.Millisecond,
			}
		},
	}
}

// ensureConnected transitions Disconnected -> Connecting -> Connected,
// creating the writer if needed. Calling it while connected is a no-op.
func (p *EventPublisher) ensureConnected() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateConnected && p.writer != nil {
		return p.writer
	}

	p.state = stateConnecting
	if p.writer == nil {
		p.writer = p.newWriter()
	}
	p.state = stateConnected
	logger.Log.Info("Event publisher connected to broker")
	return p.writer
}

// markDisconnected tears the connection down so the next publish redials.
func (p *EventPublisher) markDisconnected() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close broker writer")
		}
		p.writer = nil
	}
	p.state = stateDisconnected
}

// Publish serializes payload as JSON and sends it to topic. The caller's
// own write must already be committed: a publish failure surfaces as
// ErrUnavailable and never rolls anything back.
func (p *EventPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	writer := p.ensureConnected()

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = writer.WriteMessages(writeCtx, kafka.Message{
		Topic: topic,
		Value: data,
	})
	if err != nil {
		logger.Log.WithError(err).WithField("topic", topic).Error("Failed to publish event")
		p.markDisconnected()
		return fmt.Errorf("%w: broker publish failed: %v", common.ErrUnavailable, err)
	}

	logger.Log.WithField("topic", topic).Debug("Event published")
	return nil
}

// Close shuts the publisher down. Safe to call multiple times.
func (p *EventPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = stateDisconnected
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
