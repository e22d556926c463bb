// Package rabbitmq fans customer notifications out through a RabbitMQ fanout exchange.
// Every status change of an order becomes one notification addressed to its customer;
// delivery channels (push, SMS, email) bind their own queues to the exchange.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// Notification is the message body on the notification exchange.
type Notification struct {
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	Message    string    `json:"message"`
	At         time.Time `json:"at"`
}

// Channel is the part of *amqp.Channel the notifier needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type Notifier struct {
	channel  Channel
	exchange string
	logger   *slog.Logger
}

// Connect dials the broker and declares the durable fanout exchange.
func Connect(url, exchange string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	if err = ch.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	return conn, ch, nil
}

func NewNotifier(channel Channel, exchange string, logger *slog.Logger) *Notifier {
	return &Notifier{
		channel:  channel,
		exchange: exchange,
		logger:   logger.With("component", "notifier"),
	}
}

// Publish sends one notification per status change and ignores every other event.
func (n *Notifier) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	for _, event := range events {
		changed, ok := event.(order.StatusChangedEvent)
		if !ok {
			continue
		}

		body, err := json.Marshal(notificationFor(changed))
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}

		publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err = n.channel.PublishWithContext(publishCtx, n.exchange, "", false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    fmt.Sprintf("%s:%s", changed.OrderID, changed.To),
			Timestamp:    changed.At,
			Body:         body,
		})
		cancel()
		if err != nil {
			return fmt.Errorf("publish notification for order %s: %w", changed.OrderID, err)
		}

		n.logger.DebugContext(ctx, "notification published",
			"order_id", changed.OrderID.String(), "status", changed.To.String())
	}
	return nil
}

func notificationFor(e order.StatusChangedEvent) Notification {
	return Notification{
		OrderID:    e.OrderID.String(),
		CustomerID: e.CustomerID.String(),
		Status:     e.To.String(),
		Reason:     e.Reason.String(),
		Message:    messageFor(e),
		At:         e.At,
	}
}

func messageFor(e order.StatusChangedEvent) string {
	switch e.To {
	case order.Placed:
		return "Your order has been placed."
	case order.Accepted:
		return "Your order has been accepted."
	case order.PickedUp:
		return "Your order is on its way."
	case order.Delivered:
		return "Your order has been delivered. Enjoy your meal!"
	case order.PaymentFailed:
		return "Your payment could not be completed."
	case order.Cancelled:
		if e.Reason == order.DispatchFailed {
			return "We could not find a delivery partner. Your order has been cancelled."
		}
		return "Your order has been cancelled."
	default:
		return "Your order has been updated."
	}
}
