package commands

import (
	"context"
	"errors"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
)

// ExpireUndispatchedOrdersCommandHandler ends the courier search for orders that waited
// longer than the dispatch window: they are cancelled by the system with reason
// dispatch_failed. The customer learns about it through the status event.
type ExpireUndispatchedOrdersCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewExpireUndispatchedOrdersCommandHandler(uowFactory OrderUoWFactory) ExpireUndispatchedOrdersCommandHandler {
	return ExpireUndispatchedOrdersCommandHandler{uowFactory: uowFactory}
}

// Handle returns the ids of the cancelled orders.
func (h ExpireUndispatchedOrdersCommandHandler) Handle(
	ctx context.Context,
	cmd ExpireUndispatchedOrdersCommand,
) ([]kernel.UUID, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	pending, err := loadAwaitingDispatch(ctx, h.uowFactory, cmd.BatchSize())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	expired := make([]kernel.UUID, 0)
	var failures error
	for _, o := range pending {
		if !o.DispatchWindowElapsed(now, cmd.Timeout()) {
			continue
		}

		cancelled, expireErr := h.expire(ctx, o.ID(), cmd.Timeout(), now)
		switch {
		case expireErr == nil:
			if cancelled {
				expired = append(expired, o.ID())
			}
		case errors.Is(expireErr, errs.ErrPreconditionFailed):
			// assigned or cancelled concurrently
		default:
			failures = errors.Join(failures, expireErr)
		}
	}

	return expired, failures
}

func (h ExpireUndispatchedOrdersCommandHandler) expire(
	ctx context.Context,
	orderID kernel.UUID,
	timeout time.Duration,
	now time.Time,
) (bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	if !o.DispatchWindowElapsed(now, timeout) {
		return false, nil
	}

	if err = o.Cancel(kernel.SystemActor(), order.DispatchFailed, now); err != nil {
		return false, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}
