// Package ports defines the contracts between the core and its adapters: repositories,
// the cart and location stores and the event publisher.
package ports

import (
	"context"

	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/kernel"
)

// CourierRepository defines the persistence contract for courier aggregates.
type CourierRepository interface {
	// Add persists a new courier aggregate to storage.
	Add(ctx context.Context, courier *courier.Courier) error

	// Update persists changes to an existing courier aggregate.
	// The write is conditioned on the version the courier was loaded with; a concurrent
	// writer makes it fail with a PreconditionFailedError.
	Update(ctx context.Context, courier *courier.Courier) error

	// Get retrieves a courier aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*courier.Courier, error)

	// GetAllAvailable retrieves online couriers without an active order.
	//
	// Example:
	//   available, err := repo.GetAllAvailable(ctx)
	//   if err != nil {
	//       return fmt.Errorf("failed to get available couriers: %w", err)
	//   }
	GetAllAvailable(ctx context.Context) ([]*courier.Courier, error)
}
