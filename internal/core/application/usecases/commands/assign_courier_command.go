package commands

import (
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/guard"
)

var ErrAssignCourierCommandIsNotConstructed = errors.New(
	"AssignCourierCommand must be created via NewAssignCourierCommand constructor",
)

// AssignCourierCommand asks dispatch to find a courier for one order.
//
// Example:
//
//	cmd, _ := NewAssignCourierCommand(orderID)
//	courierID, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrNoCourierAvailable) {
//	    // retried by the dispatch job until the search window closes
//	}
type AssignCourierCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewAssignCourierCommand(orderID kernel.UUID) (AssignCourierCommand, error) {
	if err := orderID.Validate(); err != nil {
		return AssignCourierCommand{}, err
	}

	return AssignCourierCommand{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrAssignCourierCommandIsNotConstructed if validation fails.
func (c AssignCourierCommand) Validate() error {
	return c.guard.Validate(ErrAssignCourierCommandIsNotConstructed)
}

func (c AssignCourierCommand) OrderID() kernel.UUID {
	return c.orderID
}
