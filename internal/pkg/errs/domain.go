package errs

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrForbiddenTransition   = errors.New("forbidden transition")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrUnauthorizedPublisher = errors.New("unauthorized publisher")
	ErrAccessDenied          = errors.New("access denied")
	ErrEmptyCart             = errors.New("cart is empty")
	ErrCouponNotFound        = errors.New("coupon not found")
	ErrCouponNotApplicable   = errors.New("coupon not applicable")
	ErrNoCourierAvailable    = errors.New("no courier available")
)

// InvalidTransitionError names the rejected from -> to pair.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func NewInvalidTransitionError(from, to fmt.Stringer) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String()}
}

// NewInvalidTransitionErrorWithReason is used when the pair is in the graph but a guard failed.
func NewInvalidTransitionErrorWithReason(from, to fmt.Stringer, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from.String(), To: to.String(), Reason: reason}
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s -> %s (%s)", ErrInvalidTransition, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ForbiddenTransitionError is returned when the caller's role may not move an order to To.
type ForbiddenTransitionError struct {
	Role string
	To   string
}

func NewForbiddenTransitionError(role, to fmt.Stringer) *ForbiddenTransitionError {
	return &ForbiddenTransitionError{Role: role.String(), To: to.String()}
}

func (e *ForbiddenTransitionError) Error() string {
	return fmt.Sprintf("%s: role %s cannot move order to %s", ErrForbiddenTransition, e.Role, e.To)
}

func (e *ForbiddenTransitionError) Unwrap() error {
	return ErrForbiddenTransition
}

// PreconditionFailedError is returned by conditional writes that observed a stale record.
type PreconditionFailedError struct {
	Resource string
	ID       string
	Expected string
}

func NewPreconditionFailedError(resource, id, expected string) *PreconditionFailedError {
	return &PreconditionFailedError{Resource: resource, ID: id, Expected: expected}
}

func (e *PreconditionFailedError) Error() string {
	return fmt.Sprintf("%s: %s %s is no longer %s", ErrPreconditionFailed, e.Resource, e.ID, e.Expected)
}

func (e *PreconditionFailedError) Unwrap() error {
	return ErrPreconditionFailed
}

// UnauthorizedPublisherError rejects a location sample from a courier not assigned to the order.
type UnauthorizedPublisherError struct {
	PublisherID string
	OrderID     string
}

func NewUnauthorizedPublisherError(publisherID, orderID string) *UnauthorizedPublisherError {
	return &UnauthorizedPublisherError{PublisherID: publisherID, OrderID: orderID}
}

func (e *UnauthorizedPublisherError) Error() string {
	return fmt.Sprintf("%s: %s is not the courier of order %s", ErrUnauthorizedPublisher, e.PublisherID, e.OrderID)
}

func (e *UnauthorizedPublisherError) Unwrap() error {
	return ErrUnauthorizedPublisher
}

// AccessDeniedError is returned when a subject is not a party of the resource it reads.
type AccessDeniedError struct {
	Subject  string
	Resource string
}

func NewAccessDeniedError(subject, resource string) *AccessDeniedError {
	return &AccessDeniedError{Subject: subject, Resource: resource}
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("%s: %s may not access %s", ErrAccessDenied, e.Subject, e.Resource)
}

func (e *AccessDeniedError) Unwrap() error {
	return ErrAccessDenied
}

// EmptyCartError is returned when pricing or checkout is attempted on a cart without items.
type EmptyCartError struct{}

func NewEmptyCartError() *EmptyCartError {
	return &EmptyCartError{}
}

func (e *EmptyCartError) Error() string {
	return ErrEmptyCart.Error()
}

func (e *EmptyCartError) Unwrap() error {
	return ErrEmptyCart
}

type CouponNotFoundError struct {
	Code string
}

func NewCouponNotFoundError(code string) *CouponNotFoundError {
	return &CouponNotFoundError{Code: code}
}

func (e *CouponNotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCouponNotFound, e.Code)
}

func (e *CouponNotFoundError) Unwrap() error {
	return ErrCouponNotFound
}

// CouponNotApplicableError is returned when a known coupon's predicate rejects the cart.
type CouponNotApplicableError struct {
	Code   string
	Reason string
}

func NewCouponNotApplicableError(code, reason string) *CouponNotApplicableError {
	return &CouponNotApplicableError{Code: code, Reason: reason}
}

func (e *CouponNotApplicableError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", ErrCouponNotApplicable, e.Code, e.Reason)
}

func (e *CouponNotApplicableError) Unwrap() error {
	return ErrCouponNotApplicable
}
