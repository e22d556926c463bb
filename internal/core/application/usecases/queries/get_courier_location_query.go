package queries

import (
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/guard"
)

var (
	ErrGetCourierLocationQueryIsNotConstructed = errors.New(
		"GetCourierLocationQuery must be created via NewGetCourierLocationQuery constructor",
	)
)

// GetCourierLocationQuery reads the last known location of the courier carrying an order.
type GetCourierLocationQuery struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCourierLocationQuery(actor kernel.Actor, orderID kernel.UUID) (GetCourierLocationQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetCourierLocationQuery{}, err
	}

	return GetCourierLocationQuery{
		actor:   actor,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetCourierLocationQuery) Validate() error {
	return q.guard.Validate(ErrGetCourierLocationQueryIsNotConstructed)
}

func (q GetCourierLocationQuery) Actor() kernel.Actor { return q.actor }
func (q GetCourierLocationQuery) OrderID() kernel.UUID { return q.orderID }

// GetCourierLocationQueryResponse has a nil Sample when no courier is assigned yet or the
// courier has not reported recently.
type GetCourierLocationQueryResponse struct {
	OrderID   kernel.UUID
	CourierID *kernel.UUID
	Sample    *kernel.LocationSample
}
