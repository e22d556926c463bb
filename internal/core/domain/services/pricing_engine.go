package services

import (
	"github.com/shopspring/decimal"

	"foodtrack/internal/core/domain/model/coupon"
	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/pkg/errs"
)

// PricingOptions are the caller-chosen inputs to a fare besides the cart lines.
type PricingOptions struct {
	Tip        decimal.Decimal
	CouponCode string
}

// PricingEngine computes fare breakdowns from cart lines, a fee schedule and a coupon catalog.
//
// The computation is a pure function of its inputs: the same lines and options always
// yield the same breakdown, which lets payment capture re-verify a total later.
//
// Algorithm:
//   - subtotal is the sum of unitPrice * quantity
//   - packaging fee applies only when subtotal > 0
//   - platform fee is max(subtotal * rate, minimum), rounded half-up to 2 places
//   - delivery fee is waived once subtotal reaches the free-delivery threshold
//   - a coupon, if given, is evaluated after base fees and yields the discount
//   - total is clamped at zero by fare.NewBreakdown
type PricingEngine struct {
	schedule fare.FeeSchedule
	coupons  coupon.Catalog
}

// NewPricingEngine creates a PricingEngine instance.
//
// Parameters:
//   - schedule: validated fee schedule
//   - coupons: catalog used to resolve coupon codes
func NewPricingEngine(schedule fare.FeeSchedule, coupons coupon.Catalog) (PricingEngine, error) {
	if err := schedule.Validate(); err != nil {
		return PricingEngine{}, err
	}
	return PricingEngine{schedule: schedule, coupons: coupons}, nil
}

// ComputeTotal prices lines with opts.
//
// Returns:
//   - fare.Breakdown: the itemized fare
//   - error: EmptyCartError for no lines, CouponNotFoundError for an unknown code,
//     CouponNotApplicableError when the coupon's predicate fails, validation errors otherwise
func (p PricingEngine) ComputeTotal(lines []fare.Line, opts PricingOptions) (fare.Breakdown, error) {
	if len(lines) == 0 {
		return fare.Breakdown{}, errs.NewEmptyCartError()
	}
	if opts.Tip.IsNegative() {
		return fare.Breakdown{}, errs.NewValueIsOutOfRangeError("tip", opts.Tip.String(), 0, "unbounded")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if err := line.Validate(); err != nil {
			return fare.Breakdown{}, err
		}
		subtotal = subtotal.Add(line.Amount())
	}

	components := fare.Components{
		Subtotal:     subtotal,
		PackagingFee: p.packagingFee(subtotal),
		PlatformFee:  p.platformFee(subtotal),
		DeliveryFee:  p.deliveryFee(subtotal),
		Tip:          opts.Tip,
	}

	if code := coupon.NormalizeCode(opts.CouponCode); code != "" {
		rule, err := p.coupons.Find(code)
		if err != nil {
			return fare.Breakdown{}, err
		}

		discount, err := rule.Discount(coupon.Quote{
			Subtotal:         subtotal,
			DeliveryFee:      components.DeliveryFee,
			PreDiscountTotal: preDiscountTotal(components),
		})
		if err != nil {
			return fare.Breakdown{}, err
		}

		components.CouponCode = rule.Code()
		components.CouponDiscount = discount
	}

	return fare.NewBreakdown(components)
}

func (p PricingEngine) packagingFee(subtotal decimal.Decimal) decimal.Decimal {
	if !subtotal.IsPositive() {
		return decimal.Zero
	}
	return p.schedule.PackagingFee()
}

func (p PricingEngine) platformFee(subtotal decimal.Decimal) decimal.Decimal {
	return decimal.Max(subtotal.Mul(p.schedule.PlatformRate()), p.schedule.PlatformMinimum()).Round(2)
}

func (p PricingEngine) deliveryFee(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.schedule.FreeDeliveryThreshold()) {
		return decimal.Zero
	}
	return p.schedule.DeliveryFee()
}

func preDiscountTotal(c fare.Components) decimal.Decimal {
	return c.Subtotal.Add(c.PackagingFee).Add(c.PlatformFee).Add(c.DeliveryFee).Add(c.Tip)
}
