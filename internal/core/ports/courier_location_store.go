package ports

import (
	"context"

	"foodtrack/internal/core/domain/model/kernel"
)

// CourierLocationStore keeps the latest location sample per courier.
// Samples are ephemeral and expire on their own.
type CourierLocationStore interface {
	// Save stores sample unless a newer one is already stored (last write by capture time wins).
	// It reports whether sample was stored.
	Save(ctx context.Context, courierID kernel.UUID, sample kernel.LocationSample) (bool, error)

	// Get returns nil when no sample is known.
	Get(ctx context.Context, courierID kernel.UUID) (*kernel.LocationSample, error)

	// GetMany returns the known samples keyed by courier id.
	GetMany(ctx context.Context, courierIDs []kernel.UUID) (map[kernel.UUID]kernel.LocationSample, error)
}
