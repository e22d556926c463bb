package queries

import (
	"errors"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetActiveOrdersQueryIsNotConstructed = errors.New(
		"GetActiveOrdersQuery must be created via NewGetActiveOrdersQuery constructor",
	)
)

// GetActiveOrdersQuery lists the non-terminal orders of a restaurant for its dashboard.
// Only a restaurant actor may ask, and only about itself.
type GetActiveOrdersQuery struct {
	restaurantID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetActiveOrdersQuery(actor kernel.Actor) (GetActiveOrdersQuery, error) {
	if actor.Role != kernel.RoleRestaurant {
		return GetActiveOrdersQuery{}, errs.NewAccessDeniedError(actor.String(), "restaurant orders")
	}
	if err := actor.ID.Validate(); err != nil {
		return GetActiveOrdersQuery{}, err
	}

	return GetActiveOrdersQuery{
		restaurantID: actor.ID,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (q GetActiveOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetActiveOrdersQueryIsNotConstructed)
}

func (q GetActiveOrdersQuery) RestaurantID() kernel.UUID { return q.restaurantID }

// GetActiveOrdersQueryResponse is one row of the restaurant dashboard.
type GetActiveOrdersQueryResponse struct {
	ID            kernel.UUID
	CustomerID    kernel.UUID
	CourierID     *kernel.UUID
	Status        order.Status
	PaymentMethod order.PaymentMethod
	PaymentStatus order.PaymentStatus
	Total         decimal.Decimal
	CreatedAt     time.Time
}
