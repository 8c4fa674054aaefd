// Package events publishes order lifecycle events to Kafka.
//
// Messages are keyed by order number so that every event for one order lands
// on the same partition and is consumed in order. The value is the JSON
// encoded order.Event and the event type is repeated in the "event-type"
// header for consumers that route without decoding.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/jsamuelsen11/storefront-service/internal/domain/order"
	"github.com/jsamuelsen11/storefront-service/internal/platform/config"
	"github.com/jsamuelsen11/storefront-service/internal/ports"
)

// HeaderEventType carries the order.EventType of a message.
const HeaderEventType = "event-type"

var (
	_ ports.OrderEventPublisher = (*KafkaPublisher)(nil)
	_ ports.OrderEventPublisher = NoopPublisher{}
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter builds a Kafka writer for cfg. Writes wait for the partition
// leader's acknowledgement.
func NewWriter(cfg *config.EventsConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: cfg.WriteTimeout,
	}
}

// KafkaPublisher publishes order events through a MessageWriter.
type KafkaPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher that writes through w.
func NewKafkaPublisher(w MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// PublishOrderEvent writes one message for event.
func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event order.Event) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing %s for order %s: %w", event.Type, event.OrderNumber, err)
	}

	p.logger.DebugContext(ctx, "order event published",
		slog.String("event_type", string(event.Type)),
		slog.Int64("order_id", event.OrderID),
	)
	return nil
}

// Message encodes event as a Kafka message.
func Message(event order.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding %s event: %w", event.Type, err)
	}

	return kafka.Message{
		Key:   []byte(event.OrderNumber),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventType, Value: []byte(event.Type)},
		},
	}, nil
}

// NoopPublisher drops every event. It is used when events are disabled.
type NoopPublisher struct{}

// PublishOrderEvent does nothing.
func (NoopPublisher) PublishOrderEvent(context.Context, order.Event) error {
	return nil
}

// Checker reports whether a Kafka broker accepts connections.
type Checker struct {
	brokers []string
}

// NewChecker creates a Checker that dials the given brokers.
func NewChecker(brokers []string) *Checker {
	return &Checker{brokers: brokers}
}

// Name returns "kafka".
func (c *Checker) Name() string {
	return "kafka"
}

// HealthCheck succeeds as soon as one broker accepts a connection.
func (c *Checker) HealthCheck(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return errors.New("kafka: no brokers configured")
	}

	var errs []error
	for _, broker := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("kafka: %w", errors.Join(errs...))
}
