// Package broadcast is the in-process Broadcast Channel: order-scoped topics with
// at-most-once, best-effort delivery to live subscribers.
//
// Every websocket connection owns its subscriptions; the hub never keeps per-client state
// beyond them. A subscriber that falls behind loses events instead of slowing the publisher,
// and recovers by re-reading the order snapshot.
package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultBufferSize = 32

// Subscription is one subscriber's view of one order topic.
// Events is closed when the order reaches a terminal status, or after Close.
type Subscription struct {
	orderID kernel.UUID
	events  chan kernel.DomainEvent
	hub     *Hub
	closed  bool
}

func (s *Subscription) OrderID() kernel.UUID { return s.orderID }

func (s *Subscription) Events() <-chan kernel.DomainEvent { return s.events }

// Close detaches the subscription. It never affects the order. Safe to call twice.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s)
}

// Hub routes domain events to the subscriptions of their order. It implements
// ports.EventPublisher so the unit of work can hand it committed events directly.
type Hub struct {
	mu         sync.RWMutex
	topics     map[kernel.UUID]map[*Subscription]struct{}
	bufferSize int
	logger     *slog.Logger

	delivered metric.Int64Counter
	dropped   metric.Int64Counter
}

func NewHub(bufferSize int, logger *slog.Logger) (*Hub, error) {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	meter := otel.Meter("foodtrack/broadcast")
	delivered, err := meter.Int64Counter("broadcast.events.delivered",
		metric.WithDescription("Events handed to a subscriber buffer"))
	if err != nil {
		return nil, err
	}
	dropped, err := meter.Int64Counter("broadcast.events.dropped",
		metric.WithDescription("Events lost because a subscriber buffer was full"))
	if err != nil {
		return nil, err
	}

	return &Hub{
		topics:     make(map[kernel.UUID]map[*Subscription]struct{}),
		bufferSize: bufferSize,
		logger:     logger.With("component", "broadcast_hub"),
		delivered:  delivered,
		dropped:    dropped,
	}, nil
}

// Subscribe opens a stream for orderID. Authorization is the caller's job: only parties of
// the order may be subscribed.
func (h *Hub) Subscribe(orderID kernel.UUID) *Subscription {
	sub := &Subscription{
		orderID: orderID,
		events:  make(chan kernel.DomainEvent, h.bufferSize),
		hub:     h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.topics[orderID]
	if !ok {
		subs = make(map[*Subscription]struct{})
		h.topics[orderID] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Publish delivers each event to the current subscribers of its order without blocking.
// A terminal status event is delivered and then ends every stream of that order.
func (h *Hub) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	for _, event := range events {
		h.deliver(ctx, event)

		if changed, ok := event.(order.StatusChangedEvent); ok && changed.To.IsTerminal() {
			h.closeTopic(changed.OrderID)
		}
	}
	return nil
}

// SubscriberCount reports the live subscriptions of an order.
func (h *Hub) SubscriberCount(orderID kernel.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[orderID])
}

func (h *Hub) deliver(ctx context.Context, event kernel.DomainEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	attrs := metric.WithAttributes(attribute.String("event", event.EventName()))
	for sub := range h.topics[event.AggregateID()] {
		select {
		case sub.events <- event:
			h.delivered.Add(ctx, 1, attrs)
		default:
			h.dropped.Add(ctx, 1, attrs)
			h.logger.DebugContext(ctx, "subscriber buffer full, event dropped",
				"order_id", event.AggregateID().String(), "event", event.EventName())
		}
	}
}

func (h *Hub) closeTopic(orderID kernel.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.topics[orderID] {
		sub.closed = true
		close(sub.events)
	}
	delete(h.topics, orderID)
}

func (h *Hub) unsubscribe(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.events)

	subs := h.topics[sub.orderID]
	delete(subs, sub)
	if len(subs) == 0 {
		delete(h.topics, sub.orderID)
	}
}
