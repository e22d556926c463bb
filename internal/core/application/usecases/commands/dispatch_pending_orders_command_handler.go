package commands

import (
	"context"
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
)

// CourierAssigner is the single-order assignment used by a dispatch round.
type CourierAssigner interface {
	Handle(ctx context.Context, command AssignCourierCommand) (kernel.UUID, error)
}

// DispatchReport summarizes one dispatch round.
type DispatchReport struct {
	Considered int
	Assigned   int
	Conflicts  int
}

// DispatchPendingOrdersCommandHandler tries to assign a courier to every order awaiting
// dispatch, oldest first. Each order is assigned in its own transaction.
// The round stops at the first NoCourierAvailable because the pool cannot grow within a round.
type DispatchPendingOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
	assigner   CourierAssigner
}

func NewDispatchPendingOrdersCommandHandler(
	uowFactory OrderUoWFactory,
	assigner CourierAssigner,
) DispatchPendingOrdersCommandHandler {
	return DispatchPendingOrdersCommandHandler{
		uowFactory: uowFactory,
		assigner:   assigner,
	}
}

func (h DispatchPendingOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd DispatchPendingOrdersCommand,
) (DispatchReport, error) {
	var report DispatchReport
	if err := cmd.Validate(); err != nil {
		return report, err
	}

	pending, err := loadAwaitingDispatch(ctx, h.uowFactory, cmd.BatchSize())
	if err != nil {
		return report, err
	}
	report.Considered = len(pending)

	var failures error
	for _, o := range pending {
		assign, cmdErr := NewAssignCourierCommand(o.ID())
		if cmdErr != nil {
			return report, cmdErr
		}

		_, err = h.assigner.Handle(ctx, assign)
		switch {
		case err == nil:
			report.Assigned++
		case errors.Is(err, errs.ErrNoCourierAvailable):
			return report, failures
		case errors.Is(err, errs.ErrPreconditionFailed), errors.Is(err, order.ErrOrderNotDispatchable):
			report.Conflicts++
		default:
			failures = errors.Join(failures, err)
		}
	}

	return report, failures
}

func loadAwaitingDispatch(ctx context.Context, uowFactory OrderUoWFactory, limit int) ([]*order.Order, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	return uow.OrderRepository().GetAwaitingDispatch(ctx, limit)
}
