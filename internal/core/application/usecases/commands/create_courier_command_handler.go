package commands

import (
	"context"

	"foodtrack/internal/core/domain/model/courier"
)

// CreateCourierCommandHandler registers couriers. A new courier is offline and carries no
// order, so the dispatcher ignores them until they go online and publish a location.
type CreateCourierCommandHandler struct {
	uowFactory CourierUoWFactory
}

func NewCreateCourierCommandHandler(uowFactory CourierUoWFactory) CreateCourierCommandHandler {
	return CreateCourierCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle stores the courier under the ID carried by cmd. Nothing is published: registration
// is not an order event and no subscriber is waiting on it.
func (h *CreateCourierCommandHandler) Handle(ctx context.Context, cmd CreateCourierCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	registered, err := courier.NewCourier(cmd.CourierID(), cmd.Name())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.CourierRepository().Add(ctx, registered); err != nil {
		return err
	}
	return uow.Commit(ctx)
}
