package ports

import (
	"context"

	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/kernel"
)

// CartRepository stores one cart per customer. A missing cart reads as empty.
type CartRepository interface {
	Get(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error)
	// Claim atomically reads and removes the cart. Of two concurrent claims only one sees
	// the items; the other reads an empty cart.
	Claim(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Delete(ctx context.Context, customerID kernel.UUID) error
}
