package commands

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/services"
	"foodtrack/internal/core/ports"
)

// AssignCourierCommandHandler orchestrates the courier assignment for one order.
// Loads available couriers and their last locations, lets OrderDispatcher pick the nearest
// and persists order and courier in a single transaction. Both writes are version-checked,
// so a courier raced away by another dispatch fails the whole assignment.
//
// Example:
//
//	handler := NewAssignCourierCommandHandler(uowFactory, locations, dispatcher)
//	courierID, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrNoCourierAvailable):
//	    log.Println("All couriers are busy")
//	case err != nil:
//	    log.Printf("Assignment failed: %v", err)
//	default:
//	    log.Printf("Courier %s assigned", courierID)
//	}
type AssignCourierCommandHandler struct {
	uowFactory UoWFactory
	locations  ports.CourierLocationStore
	dispatcher services.OrderDispatcher
}

// NewAssignCourierCommandHandler creates a handler for courier assignment operations.
func NewAssignCourierCommandHandler(
	uowFactory UoWFactory,
	locations ports.CourierLocationStore,
	dispatcher services.OrderDispatcher,
) AssignCourierCommandHandler {
	return AssignCourierCommandHandler{
		uowFactory: uowFactory,
		locations:  locations,
		dispatcher: dispatcher,
	}
}

// Handle returns the id of the assigned courier, or errs.ErrNoCourierAvailable.
func (h AssignCourierCommandHandler) Handle(ctx context.Context, command AssignCourierCommand) (kernel.UUID, error) {
	if err := command.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return kernel.UUID{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	courierRepo := uow.CourierRepository()
	ordersRepo := uow.OrderRepository()

	o, err := ordersRepo.Get(ctx, command.OrderID())
	if err != nil {
		return kernel.UUID{}, err
	}

	couriers, err := courierRepo.GetAllAvailable(ctx)
	if err != nil {
		return kernel.UUID{}, err
	}

	ids := make([]kernel.UUID, len(couriers))
	for i, c := range couriers {
		ids[i] = c.ID()
	}
	samples, err := h.locations.GetMany(ctx, ids)
	if err != nil {
		return kernel.UUID{}, err
	}

	candidates := make([]services.Candidate, len(couriers))
	for i, c := range couriers {
		candidates[i] = services.Candidate{Courier: c}
		if sample, ok := samples[c.ID()]; ok {
			candidates[i].Location = &sample
		}
	}

	assignedCourier, err := h.dispatcher.Dispatch(o, candidates, time.Now().UTC())
	if err != nil {
		return kernel.UUID{}, err
	}

	if err = ordersRepo.Update(ctx, o); err != nil {
		return kernel.UUID{}, err
	}

	if err = courierRepo.Update(ctx, assignedCourier); err != nil {
		return kernel.UUID{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return kernel.UUID{}, err
	}

	return assignedCourier.ID(), nil
}
