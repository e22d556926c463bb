package commands

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/order"
)

// TransitionOrderStatusCommandHandler moves an order on behalf of an authenticated actor.
//
// The order update is conditioned on the status and version that were read, so of two
// concurrent requests on the same order exactly one wins and the other gets a
// PreconditionFailedError. When the order ends, its courier is released in the same
// transaction. The status event is published by the unit of work after commit.
type TransitionOrderStatusCommandHandler struct {
	uowFactory UoWFactory
}

func NewTransitionOrderStatusCommandHandler(uowFactory UoWFactory) TransitionOrderStatusCommandHandler {
	return TransitionOrderStatusCommandHandler{uowFactory: uowFactory}
}

func (h TransitionOrderStatusCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionOrderStatusCommand,
) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	if err = o.Transition(cmd.Actor(), cmd.Status(), cmd.Reason(), time.Now().UTC()); err != nil {
		return nil, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return nil, err
	}

	if err = releaseCourier(ctx, uow, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// releaseCourier frees the courier of an order that reached a terminal status.
func releaseCourier(ctx context.Context, uow CourierRepoFactory, o *order.Order) error {
	if !o.Status().IsTerminal() || o.Courier() == nil {
		return nil
	}

	courierRepo := uow.CourierRepository()
	c, err := courierRepo.Get(ctx, *o.Courier())
	if err != nil {
		return err
	}

	if !c.IsCarrying(o.ID()) {
		return nil
	}

	if err = c.ReleaseOrder(o.ID()); err != nil {
		return err
	}

	return courierRepo.Update(ctx, c)
}
