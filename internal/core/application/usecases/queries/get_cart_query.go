package queries

import (
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetCartQueryIsNotConstructed = errors.New(
		"GetCartQuery must be created via NewGetCartQuery constructor",
	)
)

// GetCartQuery reads the caller's own cart. A customer without a cart gets an empty one.
type GetCartQuery struct {
	customerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCartQuery(customerID kernel.UUID) (GetCartQuery, error) {
	if err := customerID.Validate(); err != nil {
		return GetCartQuery{}, err
	}

	return GetCartQuery{
		customerID: customerID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (q GetCartQuery) Validate() error {
	return q.guard.Validate(ErrGetCartQueryIsNotConstructed)
}

func (q GetCartQuery) CustomerID() kernel.UUID { return q.customerID }

type GetCartQueryResponse struct {
	CustomerID   kernel.UUID
	RestaurantID *kernel.UUID
	Items        []CartItemView
	Subtotal     decimal.Decimal
}

type CartItemView struct {
	DishID    kernel.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	LineTotal decimal.Decimal
}
