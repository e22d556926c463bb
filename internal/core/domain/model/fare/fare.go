// Package fare holds the value objects of order pricing: the fee schedule the service is
// configured with, priced lines, and the itemized Breakdown an order stores.
package fare

import (
	"errors"
	"fmt"

	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrFeeScheduleIsNotConstructed = errors.New("FeeSchedule must be created via NewFeeSchedule")
	ErrBreakdownIsNotConstructed   = errors.New("Breakdown must be created via NewBreakdown")
)

// Line is one priced position: unit price in currency units and a positive quantity.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Validate enforces unitPrice >= 0 and quantity >= 1.
func (l Line) Validate() error {
	if l.UnitPrice.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("unitPrice", fmt.Errorf("%s is negative", l.UnitPrice))
	}
	if l.Quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", l.Quantity))
	}
	return nil
}

func (l Line) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// FeeSchedule is the distance-independent flat fee configuration.
type FeeSchedule struct {
	packagingFee          decimal.Decimal
	platformRate          decimal.Decimal
	platformMinimum       decimal.Decimal
	deliveryFee           decimal.Decimal
	freeDeliveryThreshold decimal.Decimal
	guard                 guard.ConstructorGuard
}

// NewFeeSchedule validates that every amount is non-negative and the rate lies in [0, 1].
func NewFeeSchedule(
	packagingFee, platformRate, platformMinimum, deliveryFee, freeDeliveryThreshold decimal.Decimal,
) (FeeSchedule, error) {
	var rangeErr error
	if platformRate.IsNegative() || platformRate.GreaterThan(decimal.NewFromInt(1)) {
		rangeErr = errs.NewValueIsOutOfRangeError("platformRate", platformRate, 0, 1)
	}

	if err := errors.Join(
		nonNegative("packagingFee", packagingFee),
		rangeErr,
		nonNegative("platformMinimum", platformMinimum),
		nonNegative("deliveryFee", deliveryFee),
		nonNegative("freeDeliveryThreshold", freeDeliveryThreshold),
	); err != nil {
		return FeeSchedule{}, err
	}

	return FeeSchedule{
		packagingFee:          packagingFee,
		platformRate:          platformRate,
		platformMinimum:       platformMinimum,
		deliveryFee:           deliveryFee,
		freeDeliveryThreshold: freeDeliveryThreshold,
		guard:                 guard.NewConstructorGuard(),
	}, nil
}

func (s FeeSchedule) Validate() error {
	return s.guard.Validate(ErrFeeScheduleIsNotConstructed)
}

func (s FeeSchedule) PackagingFee() decimal.Decimal { return s.packagingFee }
func (s FeeSchedule) PlatformRate() decimal.Decimal { return s.platformRate }
func (s FeeSchedule) PlatformMinimum() decimal.Decimal { return s.platformMinimum }
func (s FeeSchedule) DeliveryFee() decimal.Decimal { return s.deliveryFee }
func (s FeeSchedule) FreeDeliveryThreshold() decimal.Decimal { return s.freeDeliveryThreshold }

// Components are the inputs of a Breakdown; the total is always derived from them.
type Components struct {
	Subtotal       decimal.Decimal
	PackagingFee   decimal.Decimal
	PlatformFee    decimal.Decimal
	DeliveryFee    decimal.Decimal
	Tip            decimal.Decimal
	CouponCode     string
	CouponDiscount decimal.Decimal
}

// Breakdown is the itemized payable total of an order.
// Total = max(0, subtotal + packaging + platform + delivery + tip - couponDiscount) holds by construction.
type Breakdown struct {
	components Components
	total      decimal.Decimal
	guard      guard.ConstructorGuard
}

func NewBreakdown(c Components) (Breakdown, error) {
	if err := errors.Join(
		nonNegative("subtotal", c.Subtotal),
		nonNegative("packagingFee", c.PackagingFee),
		nonNegative("platformFee", c.PlatformFee),
		nonNegative("deliveryFee", c.DeliveryFee),
		nonNegative("tip", c.Tip),
		nonNegative("couponDiscount", c.CouponDiscount),
	); err != nil {
		return Breakdown{}, err
	}
	if c.CouponCode == "" && !c.CouponDiscount.IsZero() {
		return Breakdown{}, errs.NewValueIsInvalidErrorWithCause("couponDiscount", errors.New("discount without a coupon code"))
	}

	total := c.Subtotal.
		Add(c.PackagingFee).
		Add(c.PlatformFee).
		Add(c.DeliveryFee).
		Add(c.Tip).
		Sub(c.CouponDiscount)

	return Breakdown{
		components: c,
		total:      decimal.Max(total, decimal.Zero),
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (b Breakdown) Validate() error {
	return b.guard.Validate(ErrBreakdownIsNotConstructed)
}

func (b Breakdown) Components() Components { return b.components }
func (b Breakdown) Subtotal() decimal.Decimal { return b.components.Subtotal }
func (b Breakdown) PackagingFee() decimal.Decimal { return b.components.PackagingFee }
func (b Breakdown) PlatformFee() decimal.Decimal { return b.components.PlatformFee }
func (b Breakdown) DeliveryFee() decimal.Decimal { return b.components.DeliveryFee }
func (b Breakdown) Tip() decimal.Decimal { return b.components.Tip }
func (b Breakdown) CouponCode() string { return b.components.CouponCode }
func (b Breakdown) CouponDiscount() decimal.Decimal { return b.components.CouponDiscount }
func (b Breakdown) Total() decimal.Decimal { return b.total }

// Equal compares amounts numerically, so 11 and 11.00 are the same fee.
func (b Breakdown) Equal(other Breakdown) bool {
	x, y := b.components, other.components
	return x.Subtotal.Equal(y.Subtotal) &&
		x.PackagingFee.Equal(y.PackagingFee) &&
		x.PlatformFee.Equal(y.PlatformFee) &&
		x.DeliveryFee.Equal(y.DeliveryFee) &&
		x.Tip.Equal(y.Tip) &&
		x.CouponCode == y.CouponCode &&
		x.CouponDiscount.Equal(y.CouponDiscount) &&
		b.total.Equal(other.total)
}

func nonNegative(name string, v decimal.Decimal) error {
	if v.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%s is negative", v))
	}
	return nil
}
