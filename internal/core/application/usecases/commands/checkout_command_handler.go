package commands

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/domain/services"
	"foodtrack/internal/core/ports"
	"foodtrack/internal/pkg/errs"
)

// CheckoutCommandHandler claims the customer's cart, prices it and creates the order in
// placed status. The claim removes the cart atomically, so two concurrent checkouts of one
// cart place one order; the loser sees an empty cart. If pricing or persistence fails the
// cart is put back. The order gets a copy of the cart items, so later cart edits never
// reach it.
//
// Example:
//
//	handler := NewCheckoutCommandHandler(carts, pricing, uowFactory)
//	o, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrEmptyCart):
//	    // nothing to order
//	case errors.Is(err, errs.ErrCouponNotApplicable):
//	    // fees unchanged, ask the customer to drop the coupon
//	}
type CheckoutCommandHandler struct {
	carts      ports.CartRepository
	pricing    services.PricingEngine
	uowFactory OrderUoWFactory
}

func NewCheckoutCommandHandler(
	carts ports.CartRepository,
	pricing services.PricingEngine,
	uowFactory OrderUoWFactory,
) CheckoutCommandHandler {
	return CheckoutCommandHandler{
		carts:      carts,
		pricing:    pricing,
		uowFactory: uowFactory,
	}
}

func (h CheckoutCommandHandler) Handle(ctx context.Context, cmd CheckoutCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c, err := h.carts.Claim(ctx, cmd.CustomerID())
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, errs.NewEmptyCartError()
	}

	placed := false
	defer func() {
		if !placed {
			_ = h.carts.Save(context.WithoutCancel(ctx), c)
		}
	}()

	breakdown, err := h.pricing.ComputeTotal(c.Lines(), services.PricingOptions{
		Tip:        cmd.Tip(),
		CouponCode: cmd.CouponCode(),
	})
	if err != nil {
		return nil, err
	}

	cartItems := c.Items()
	items := make([]order.Item, len(cartItems))
	for i, item := range cartItems {
		items[i] = order.Item{DishID: item.DishID(), Name: item.Name(), Line: item.Line()}
	}

	o, err := order.NewOrder(order.Draft{
		ID:            kernel.NewUUID(),
		CustomerID:    cmd.CustomerID(),
		RestaurantID:  *c.RestaurantID(),
		Items:         items,
		Fare:          breakdown,
		PaymentMethod: cmd.PaymentMethod(),
		Pickup:        cmd.Pickup(),
		Dropoff:       order.Address{Line: cmd.DeliveryAddress(), Point: cmd.Dropoff()},
	}, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	placed = true

	return o, nil
}
