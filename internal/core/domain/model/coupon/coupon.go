// Package coupon defines the pluggable coupon rules evaluated at checkout.
//
// A rule is a code, a predicate over the priced cart and an effect. The two effects are a
// fixed discount (clamped to what it targets) and a delivery fee waiver; an order carries at
// most one coupon, so effects never stack. Rules are configuration: the Catalog is built at
// startup from definitions, not from hardcoded code matches.
package coupon

import (
	"fmt"
	"strings"

	"foodtrack/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Kind is the effect of a coupon.
type Kind int

const (
	UnknownKind Kind = iota
	FixedDiscountKind
	DeliveryFeeWaiverKind
)

func getKindStrings() map[Kind]string {
	return map[Kind]string{
		UnknownKind:           "unknown",
		FixedDiscountKind:     "fixed_discount",
		DeliveryFeeWaiverKind: "delivery_fee_waiver",
	}
}

func (k Kind) String() string {
	if s, ok := getKindStrings()[k]; ok {
		return s
	}
	return "unknown"
}

// ParseKind reads the configuration spelling of a kind.
func ParseKind(s string) (Kind, error) {
	for k, str := range getKindStrings() {
		if k != UnknownKind && str == s {
			return k, nil
		}
	}
	return UnknownKind, errs.NewValueIsInvalidErrorWithCause("coupon kind", fmt.Errorf("%q is not a coupon kind", s))
}

// Quote is what a rule sees: the cart subtotal and the base fees computed before any discount.
type Quote struct {
	Subtotal         decimal.Decimal
	DeliveryFee      decimal.Decimal
	PreDiscountTotal decimal.Decimal
}

// Rule evaluates one coupon against a Quote. Discount returns a CouponNotApplicableError
// when the predicate rejects the quote.
type Rule interface {
	Code() string
	Kind() Kind
	Discount(q Quote) (decimal.Decimal, error)
}

// NormalizeCode is the canonical spelling used for catalog lookups.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// FixedDiscount subtracts a fixed amount from the total once the subtotal reaches minSubtotal.
type FixedDiscount struct {
	code        string
	amount      decimal.Decimal
	minSubtotal decimal.Decimal
}

func NewFixedDiscount(code string, amount, minSubtotal decimal.Decimal) (FixedDiscount, error) {
	code = NormalizeCode(code)
	if code == "" {
		return FixedDiscount{}, errs.NewValueIsRequiredError("coupon code")
	}
	if !amount.IsPositive() {
		return FixedDiscount{}, errs.NewValueIsInvalidErrorWithCause("coupon amount", fmt.Errorf("%s is not positive", amount))
	}
	if minSubtotal.IsNegative() {
		return FixedDiscount{}, errs.NewValueIsInvalidErrorWithCause("coupon minSubtotal", fmt.Errorf("%s is negative", minSubtotal))
	}
	return FixedDiscount{code: code, amount: amount, minSubtotal: minSubtotal}, nil
}

func (r FixedDiscount) Code() string { return r.code }
func (r FixedDiscount) Kind() Kind { return FixedDiscountKind }

// Discount never exceeds the pre-discount total, so the payable total stays >= 0.
func (r FixedDiscount) Discount(q Quote) (decimal.Decimal, error) {
	if q.Subtotal.LessThan(r.minSubtotal) {
		return decimal.Zero, errs.NewCouponNotApplicableError(r.code, fmt.Sprintf("subtotal below %s", r.minSubtotal))
	}
	return decimal.Min(r.amount, decimal.Max(q.PreDiscountTotal, decimal.Zero)), nil
}

// DeliveryFeeWaiver refunds the whole delivery fee once the subtotal reaches minSubtotal.
type DeliveryFeeWaiver struct {
	code        string
	minSubtotal decimal.Decimal
}

func NewDeliveryFeeWaiver(code string, minSubtotal decimal.Decimal) (DeliveryFeeWaiver, error) {
	code = NormalizeCode(code)
	if code == "" {
		return DeliveryFeeWaiver{}, errs.NewValueIsRequiredError("coupon code")
	}
	if minSubtotal.IsNegative() {
		return DeliveryFeeWaiver{}, errs.NewValueIsInvalidErrorWithCause("coupon minSubtotal", fmt.Errorf("%s is negative", minSubtotal))
	}
	return DeliveryFeeWaiver{code: code, minSubtotal: minSubtotal}, nil
}

func (r DeliveryFeeWaiver) Code() string { return r.code }
func (r DeliveryFeeWaiver) Kind() Kind { return DeliveryFeeWaiverKind }

func (r DeliveryFeeWaiver) Discount(q Quote) (decimal.Decimal, error) {
	if q.Subtotal.LessThan(r.minSubtotal) {
		return decimal.Zero, errs.NewCouponNotApplicableError(r.code, fmt.Sprintf("subtotal below %s", r.minSubtotal))
	}
	return q.DeliveryFee, nil
}
