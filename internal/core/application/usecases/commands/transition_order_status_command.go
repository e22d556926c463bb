package commands

import (
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/guard"
)

var ErrTransitionOrderStatusCommandIsNotConstructed = errors.New(
	"TransitionOrderStatusCommand must be created via NewTransitionOrderStatusCommand constructor",
)

// TransitionOrderStatusCommand is a client request to move an order to a new status.
// The actor comes from the authentication layer, never from the request body.
type TransitionOrderStatusCommand struct {
	actor   kernel.Actor
	orderID kernel.UUID
	status  order.Status
	reason  order.CancelReason

	guard guard.ConstructorGuard
}

func NewTransitionOrderStatusCommand(
	actor kernel.Actor,
	orderID kernel.UUID,
	status order.Status,
	reason order.CancelReason,
) (TransitionOrderStatusCommand, error) {
	if err := errors.Join(
		orderID.Validate(),
		status.Validate(),
	); err != nil {
		return TransitionOrderStatusCommand{}, err
	}

	if _, err := order.ParseCancelReason(string(reason)); err != nil {
		return TransitionOrderStatusCommand{}, err
	}

	return TransitionOrderStatusCommand{
		actor:   actor,
		orderID: orderID,
		status:  status,
		reason:  reason,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionOrderStatusCommandIsNotConstructed)
}

func (c TransitionOrderStatusCommand) Actor() kernel.Actor { return c.actor }
func (c TransitionOrderStatusCommand) OrderID() kernel.UUID { return c.orderID }
func (c TransitionOrderStatusCommand) Status() order.Status { return c.status }
func (c TransitionOrderStatusCommand) Reason() order.CancelReason { return c.reason }
