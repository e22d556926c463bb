package coupon

import (
	"fmt"

	"foodtrack/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Definition is the configuration form of a rule.
type Definition struct {
	Code        string `yaml:"code"`
	Kind        string `yaml:"kind"`
	Amount      string `yaml:"amount"`
	MinSubtotal string `yaml:"minSubtotal"`
}

// Catalog is an immutable code -> rule table. It is safe for concurrent reads.
type Catalog struct {
	rules map[string]Rule
}

func NewCatalog(rules ...Rule) (Catalog, error) {
	c := Catalog{rules: make(map[string]Rule, len(rules))}
	for _, r := range rules {
		if _, exists := c.rules[r.Code()]; exists {
			return Catalog{}, errs.NewValueIsInvalidErrorWithCause("coupon code", fmt.Errorf("%s is defined twice", r.Code()))
		}
		c.rules[r.Code()] = r
	}
	return c, nil
}

// NewCatalogFromDefinitions builds the rules described by configuration.
func NewCatalogFromDefinitions(defs []Definition) (Catalog, error) {
	rules := make([]Rule, 0, len(defs))
	for _, def := range defs {
		rule, err := def.Rule()
		if err != nil {
			return Catalog{}, fmt.Errorf("coupon %q: %w", def.Code, err)
		}
		rules = append(rules, rule)
	}
	return NewCatalog(rules...)
}

// Find looks a code up case-insensitively and returns a CouponNotFoundError for unknown codes.
func (c Catalog) Find(code string) (Rule, error) {
	rule, ok := c.rules[NormalizeCode(code)]
	if !ok {
		return nil, errs.NewCouponNotFoundError(code)
	}
	return rule, nil
}

func (d Definition) Rule() (Rule, error) {
	kind, err := ParseKind(d.Kind)
	if err != nil {
		return nil, err
	}

	minSubtotal, err := parseAmount("minSubtotal", d.MinSubtotal)
	if err != nil {
		return nil, err
	}

	switch kind {
	case FixedDiscountKind:
		amount, amountErr := parseAmount("amount", d.Amount)
		if amountErr != nil {
			return nil, amountErr
		}
		return NewFixedDiscount(d.Code, amount, minSubtotal)
	case DeliveryFeeWaiverKind:
		return NewDeliveryFeeWaiver(d.Code, minSubtotal)
	default:
		return nil, errs.NewValueIsInvalidError("coupon kind")
	}
}

func parseAmount(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return v, nil
}
