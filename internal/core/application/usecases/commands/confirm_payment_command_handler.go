package commands

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/domain/services"
)

// ConfirmPaymentCommandHandler applies a payment callback to a prepaid order.
//
// A confirmed capture is accepted only when the captured amount equals the order total and a
// fresh pricing of the order's frozen items reproduces the stored fare. Anything else is
// treated as a failed capture, so a tampered client-side total never unlocks dispatch.
// Redelivered callbacks are harmless: both outcomes are idempotent on the aggregate.
type ConfirmPaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	pricing    services.PricingEngine
}

func NewConfirmPaymentCommandHandler(uowFactory OrderUoWFactory, pricing services.PricingEngine) ConfirmPaymentCommandHandler {
	return ConfirmPaymentCommandHandler{
		uowFactory: uowFactory,
		pricing:    pricing,
	}
}

// Handle returns the resulting payment status.
func (h ConfirmPaymentCommandHandler) Handle(ctx context.Context, cmd ConfirmPaymentCommand) (order.PaymentStatus, error) {
	if err := cmd.Validate(); err != nil {
		return order.UnknownPaymentStatus, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return order.UnknownPaymentStatus, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return order.UnknownPaymentStatus, err
	}

	now := time.Now().UTC()
	if cmd.Outcome() == PaymentOutcomeConfirmed && h.verify(o, cmd) {
		err = o.ConfirmPayment(now)
	} else {
		err = o.FailPayment(now)
	}
	if err != nil {
		return order.UnknownPaymentStatus, err
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return order.UnknownPaymentStatus, err
	}

	if err = uow.Commit(ctx); err != nil {
		return order.UnknownPaymentStatus, err
	}

	return o.PaymentStatus(), nil
}

func (h ConfirmPaymentCommandHandler) verify(o *order.Order, cmd ConfirmPaymentCommand) bool {
	if !cmd.Amount().Equal(o.Fare().Total()) {
		return false
	}

	repriced, err := h.pricing.ComputeTotal(o.Lines(), services.PricingOptions{
		Tip:        o.Fare().Tip(),
		CouponCode: o.Fare().CouponCode(),
	})
	return err == nil && repriced.Equal(o.Fare())
}
