package commands

import (
	"context"

	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/ports"
	"foodtrack/internal/pkg/errs"
)

// UpdateCourierLocationCommandHandler accepts a location publish from the courier carrying
// the order, stores it as the courier's latest sample and relays it to the order's
// subscribers. Publishes from anyone else fail with UnauthorizedPublisherError.
//
// A sample older than the stored one is dropped silently: stale GPS fixes are harmless.
type UpdateCourierLocationCommandHandler struct {
	uowFactory CourierUoWFactory
	locations  ports.CourierLocationStore
	publisher  ports.EventPublisher
}

func NewUpdateCourierLocationCommandHandler(
	uowFactory CourierUoWFactory,
	locations ports.CourierLocationStore,
	publisher ports.EventPublisher,
) UpdateCourierLocationCommandHandler {
	return UpdateCourierLocationCommandHandler{
		uowFactory: uowFactory,
		locations:  locations,
		publisher:  publisher,
	}
}

func (h UpdateCourierLocationCommandHandler) Handle(ctx context.Context, cmd UpdateCourierLocationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	c, err := uow.CourierRepository().Get(ctx, cmd.CourierID())
	if err != nil {
		return err
	}

	if !c.IsCarrying(cmd.OrderID()) {
		return errs.NewUnauthorizedPublisherError(cmd.CourierID().String(), cmd.OrderID().String())
	}

	stored, err := h.locations.Save(ctx, cmd.CourierID(), cmd.Sample())
	if err != nil || !stored {
		return err
	}

	// Broadcast is best-effort; the sample is already stored for snapshot reads.
	_ = h.publisher.Publish(ctx, order.CourierLocationEvent{
		OrderID:   cmd.OrderID(),
		CourierID: cmd.CourierID(),
		Sample:    cmd.Sample(),
	})
	return nil
}
