package errs

import "errors"

// Kind is the stable, machine-readable classification of an error sent to clients.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindNotFound              Kind = "not_found"
	KindInvalidTransition     Kind = "invalid_transition"
	KindForbidden             Kind = "forbidden"
	KindPreconditionFailed    Kind = "precondition_failed"
	KindUnauthorizedPublisher Kind = "unauthorized_publisher"
	KindEmptyCart             Kind = "empty_cart"
	KindCouponNotFound        Kind = "coupon_not_found"
	KindCouponNotApplicable   Kind = "coupon_not_applicable"
	KindNoCourierAvailable    Kind = "no_courier_available"
	KindInternal              Kind = "internal"
)

var kinds = []struct {
	sentinel error
	kind     Kind
}{
	{ErrEmptyCart, KindEmptyCart},
	{ErrCouponNotFound, KindCouponNotFound},
	{ErrCouponNotApplicable, KindCouponNotApplicable},
	{ErrInvalidTransition, KindInvalidTransition},
	{ErrForbiddenTransition, KindForbidden},
	{ErrAccessDenied, KindForbidden},
	{ErrUnauthorizedPublisher, KindUnauthorizedPublisher},
	{ErrPreconditionFailed, KindPreconditionFailed},
	{ErrVersionIsInvalid, KindPreconditionFailed},
	{ErrNoCourierAvailable, KindNoCourierAvailable},
	{ErrObjectNotFound, KindNotFound},
	{ErrValueIsRequired, KindValidation},
	{ErrValueIsInvalid, KindValidation},
	{ErrValueIsOutOfRange, KindValidation},
}

// KindOf classifies err. Errors outside the taxonomy are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindInternal
}

// IsSecurityRelevant reports whether err is an authorization failure worth an audit log line.
func IsSecurityRelevant(err error) bool {
	return errors.Is(err, ErrForbiddenTransition) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrUnauthorizedPublisher)
}
