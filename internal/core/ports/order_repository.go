package ports

import (
	"context"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	// The order must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	// The write is conditioned on (id, version, persisted status): the first writer wins and
	// a writer holding a stale copy gets a PreconditionFailedError and must re-read.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order aggregate with its items and history.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetAwaitingDispatch retrieves dispatchable orders without a courier, oldest first.
	GetAwaitingDispatch(ctx context.Context, limit int) ([]*order.Order, error)
}
