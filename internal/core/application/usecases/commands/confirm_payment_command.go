package commands

import (
	"errors"
	"fmt"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrConfirmPaymentCommandIsNotConstructed = errors.New(
	"ConfirmPaymentCommand must be created via NewConfirmPaymentCommand constructor",
)

// PaymentOutcome is what the payment collaborator reports for a capture.
type PaymentOutcome string

const (
	PaymentOutcomeConfirmed PaymentOutcome = "confirmed"
	PaymentOutcomeFailed    PaymentOutcome = "failed"
)

func ParsePaymentOutcome(s string) (PaymentOutcome, error) {
	switch o := PaymentOutcome(s); o {
	case PaymentOutcomeConfirmed, PaymentOutcomeFailed:
		return o, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("outcome", fmt.Errorf("%q is not a payment outcome", s))
	}
}

// ConfirmPaymentCommand carries a payment callback keyed by order id.
// Amount is the captured amount and is checked against a fresh pricing of the order.
type ConfirmPaymentCommand struct {
	orderID kernel.UUID
	outcome PaymentOutcome
	amount  decimal.Decimal

	guard guard.ConstructorGuard
}

func NewConfirmPaymentCommand(orderID kernel.UUID, outcome PaymentOutcome, amount decimal.Decimal) (ConfirmPaymentCommand, error) {
	_, outcomeErr := ParsePaymentOutcome(string(outcome))

	var amountErr error
	if amount.IsNegative() {
		amountErr = errs.NewValueIsOutOfRangeError("amount", amount.String(), 0, "unbounded")
	}

	if err := errors.Join(orderID.Validate(), outcomeErr, amountErr); err != nil {
		return ConfirmPaymentCommand{}, err
	}

	return ConfirmPaymentCommand{
		orderID: orderID,
		outcome: outcome,
		amount:  amount,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (c ConfirmPaymentCommand) Validate() error {
	return c.guard.Validate(ErrConfirmPaymentCommandIsNotConstructed)
}

func (c ConfirmPaymentCommand) OrderID() kernel.UUID { return c.orderID }
func (c ConfirmPaymentCommand) Outcome() PaymentOutcome { return c.outcome }
func (c ConfirmPaymentCommand) Amount() decimal.Decimal { return c.amount }
