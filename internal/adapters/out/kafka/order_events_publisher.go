// Package kafka publishes order lifecycle events to the order-changed topic for downstream
// consumers. Courier location samples stay on the in-process hub and are never published here.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker/v2"
)

// OrderEventMessage is the wire format of the order-changed topic. The message key is the
// order id, so all events of one order land on one partition in order.
type OrderEventMessage struct {
	Event        string    `json:"event"`
	OrderID      string    `json:"orderId"`
	CustomerID   string    `json:"customerId"`
	RestaurantID string    `json:"restaurantId"`
	CourierID    string    `json:"courierId,omitempty"`
	From         string    `json:"from,omitempty"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
	ActorRole    string    `json:"actorRole,omitempty"`
	At           time.Time `json:"at"`
}

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventsPublisher writes order events behind a circuit breaker: while the broker is
// failing, publishes fail fast with gobreaker.ErrOpenState instead of stalling commits.
type OrderEventsPublisher struct {
	writer  MessageWriter
	breaker *gobreaker.CircuitBreaker[struct{}]
	logger  *slog.Logger
}

func NewOrderEventsWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewOrderEventsPublisher(writer MessageWriter, logger *slog.Logger) *OrderEventsPublisher {
	logger = logger.With("component", "order_events_publisher")

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "kafka-order-events",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &OrderEventsPublisher{writer: writer, breaker: breaker, logger: logger}
}

func (p *OrderEventsPublisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		payload, ok := toMessage(event)
		if !ok {
			continue
		}
		value, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", event.EventName(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(payload.OrderID),
			Value: value,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventName())},
			},
		})
	}
	if len(msgs) == 0 {
		return nil
	}

	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msgs...)
	})
	if err != nil {
		return fmt.Errorf("publish order events: %w", err)
	}
	return nil
}

func (p *OrderEventsPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(event kernel.DomainEvent) (OrderEventMessage, bool) {
	switch e := event.(type) {
	case order.StatusChangedEvent:
		msg := OrderEventMessage{
			Event:        e.EventName(),
			OrderID:      e.OrderID.String(),
			CustomerID:   e.CustomerID.String(),
			RestaurantID: e.RestaurantID.String(),
			Status:       e.To.String(),
			Reason:       e.Reason.String(),
			ActorRole:    e.ActorRole.String(),
			At:           e.At,
		}
		if e.From != order.Unknown {
			msg.From = e.From.String()
		}
		if e.CourierID != nil {
			msg.CourierID = e.CourierID.String()
		}
		return msg, true
	case order.CourierAssignedEvent:
		return OrderEventMessage{
			Event:        e.EventName(),
			OrderID:      e.OrderID.String(),
			CustomerID:   e.CustomerID.String(),
			RestaurantID: e.RestaurantID.String(),
			CourierID:    e.CourierID.String(),
			Status:       e.Status.String(),
			At:           e.At,
		}, true
	default:
		return OrderEventMessage{}, false
	}
}
