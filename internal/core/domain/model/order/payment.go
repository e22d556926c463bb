package order

import (
	"fmt"

	"foodtrack/internal/pkg/errs"
)

// PaymentMethod decides whether dispatch waits for a payment confirmation.
type PaymentMethod int

const (
	UnknownPaymentMethod PaymentMethod = iota
	CashOnDelivery
	Prepaid
)

func getPaymentMethodStrings() map[PaymentMethod]string {
	return map[PaymentMethod]string{
		UnknownPaymentMethod: "unknown",
		CashOnDelivery:       "cash_on_delivery",
		Prepaid:              "prepaid",
	}
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for m, str := range getPaymentMethodStrings() {
		if m != UnknownPaymentMethod && str == s {
			return m, nil
		}
	}
	return UnknownPaymentMethod, errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%q is not a payment method", s))
}

func (m PaymentMethod) String() string {
	if str, ok := getPaymentMethodStrings()[m]; ok {
		return str
	}
	return "unknown"
}

func (m PaymentMethod) Validate() error {
	if m != CashOnDelivery && m != Prepaid {
		return errs.NewValueIsInvalidErrorWithCause("paymentMethod", fmt.Errorf("%d is not a payment method", m))
	}
	return nil
}

// PaymentStatus tracks the capture of a prepaid order. Cash orders stay Pending until delivery.
type PaymentStatus int

const (
	UnknownPaymentStatus PaymentStatus = iota
	PaymentPending
	PaymentConfirmed
	PaymentFailedStatus
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		UnknownPaymentStatus: "unknown",
		PaymentPending:       "pending",
		PaymentConfirmed:     "confirmed",
		PaymentFailedStatus:  "failed",
	}
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, str := range getPaymentStatusStrings() {
		if status != UnknownPaymentStatus && str == s {
			return status, nil
		}
	}
	return UnknownPaymentStatus, errs.NewValueIsInvalidErrorWithCause(
		"paymentStatus", fmt.Errorf("%q is not a payment status", s))
}

func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "unknown"
}

func (p PaymentStatus) Validate() error {
	if p != PaymentPending && p != PaymentConfirmed && p != PaymentFailedStatus {
		return errs.NewValueIsInvalidErrorWithCause("paymentStatus", fmt.Errorf("%d is not a payment status", p))
	}
	return nil
}

// CancelReason explains a Cancelled order.
type CancelReason string

const (
	NoCancelReason     CancelReason = ""
	CustomerRequest    CancelReason = "customer_request"
	RestaurantDeclined CancelReason = "restaurant_declined"
	DispatchFailed     CancelReason = "dispatch_failed"
)

func ParseCancelReason(s string) (CancelReason, error) {
	switch r := CancelReason(s); r {
	case NoCancelReason, CustomerRequest, RestaurantDeclined, DispatchFailed:
		return r, nil
	default:
		return NoCancelReason, errs.NewValueIsInvalidErrorWithCause("reason", fmt.Errorf("%q is not a cancel reason", s))
	}
}

func (r CancelReason) String() string {
	return string(r)
}
