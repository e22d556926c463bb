package ports

import (
	"context"

	"foodtrack/internal/core/domain/model/kernel"
)

// EventPublisher delivers domain events to subscribers and external systems.
// Delivery is best-effort; an error is reported to the caller but never undoes the change
// that produced the event.
type EventPublisher interface {
	Publish(ctx context.Context, events ...kernel.DomainEvent) error
}
