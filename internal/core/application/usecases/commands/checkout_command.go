package commands

import (
	"errors"
	"strings"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCheckoutCommandIsNotConstructed = errors.New(
		"CheckoutCommand must be created via NewCheckoutCommand constructor",
	)
	ErrDeliveryAddressIsRequired = errs.NewValueIsRequiredError("deliveryAddress")
)

// CheckoutCommand turns the customer's cart into an order.
//
// Example:
//
//	cmd, err := NewCheckoutCommand(CheckoutParams{
//	    CustomerID:      customerID,
//	    PaymentMethod:   order.Prepaid,
//	    DeliveryAddress: "12 MG Road",
//	    Dropoff:         dropoff,
//	    Pickup:          restaurantLocation,
//	    Tip:             decimal.NewFromInt(20),
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//
//	o, err := handler.Handle(ctx, cmd)
type CheckoutCommand struct { //nolint:recvcheck //using for validation
	params CheckoutParams

	guard guard.ConstructorGuard
}

// CheckoutParams are the caller's checkout choices. Pickup is the restaurant location from
// the menu snapshot.
type CheckoutParams struct {
	CustomerID      kernel.UUID
	PaymentMethod   order.PaymentMethod
	DeliveryAddress string
	Dropoff         kernel.GeoPoint
	Pickup          kernel.GeoPoint
	Tip             decimal.Decimal
	CouponCode      string
}

func NewCheckoutCommand(params CheckoutParams) (CheckoutCommand, error) {
	command := CheckoutCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		params.CustomerID.Validate(),
		params.PaymentMethod.Validate(),
		command.setDeliveryAddress(params.DeliveryAddress),
		params.Dropoff.Validate(),
		params.Pickup.Validate(),
		command.setTip(params.Tip),
	); err != nil {
		return CheckoutCommand{}, err
	}

	command.params.CustomerID = params.CustomerID
	command.params.PaymentMethod = params.PaymentMethod
	command.params.Dropoff = params.Dropoff
	command.params.Pickup = params.Pickup
	command.params.CouponCode = strings.TrimSpace(params.CouponCode)
	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CheckoutCommand) Validate() error {
	return c.guard.Validate(ErrCheckoutCommandIsNotConstructed)
}

func (c CheckoutCommand) CustomerID() kernel.UUID { return c.params.CustomerID }
func (c CheckoutCommand) PaymentMethod() order.PaymentMethod { return c.params.PaymentMethod }
func (c CheckoutCommand) DeliveryAddress() string { return c.params.DeliveryAddress }
func (c CheckoutCommand) Dropoff() kernel.GeoPoint { return c.params.Dropoff }
func (c CheckoutCommand) Pickup() kernel.GeoPoint { return c.params.Pickup }
func (c CheckoutCommand) Tip() decimal.Decimal { return c.params.Tip }
func (c CheckoutCommand) CouponCode() string { return c.params.CouponCode }

func (c *CheckoutCommand) setDeliveryAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return ErrDeliveryAddressIsRequired
	}

	c.params.DeliveryAddress = address
	return nil
}

func (c *CheckoutCommand) setTip(tip decimal.Decimal) error {
	if tip.IsNegative() {
		return errs.NewValueIsOutOfRangeError("tip", tip.String(), 0, "unbounded")
	}

	c.params.Tip = tip
	return nil
}
