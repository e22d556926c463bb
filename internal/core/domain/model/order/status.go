package order

import (
	"fmt"
	"slices"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	(prepaid capture failed)
//	PaymentFailed <── Placed ──> Accepted ──> PickedUp ──> Delivered
//	                    │           │
//	                    └───────────┴──> Cancelled
//
// Delivered, Cancelled and PaymentFailed are terminal. Status never moves backwards.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// Placed is the status of a freshly checked-out order.
	Placed

	// Accepted means the restaurant or automatic dispatch took the order.
	Accepted

	// PickedUp means the courier collected the food; cancellation is no longer possible.
	PickedUp

	// Delivered is the terminal success state.
	Delivered

	// Cancelled is terminal; the order carries a CancelReason.
	Cancelled

	// PaymentFailed is terminal for prepaid orders whose capture failed.
	PaymentFailed
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:       "unknown",
		Placed:        "placed",
		Accepted:      "accepted",
		PickedUp:      "picked_up",
		Delivered:     "delivered",
		Cancelled:     "cancelled",
		PaymentFailed: "payment_failed",
	}
}

// getTransitions is the complete transition graph. Anything not listed is rejected.
func getTransitions() map[Status][]Status {
	//nolint:exhaustive // terminal statuses have no outgoing edges
	return map[Status][]Status{
		Placed:   {Accepted, Cancelled, PaymentFailed},
		Accepted: {PickedUp, Cancelled},
		PickedUp: {Delivered},
	}
}

// getAllowedRoles lists which roles may request a move into each target status.
// RoleSystem covers automatic dispatch, dispatch timeouts and payment callbacks.
func getAllowedRoles() map[Status][]kernel.Role {
	//nolint:exhaustive // Unknown and Placed are never transition targets
	return map[Status][]kernel.Role{
		Accepted:      {kernel.RoleRestaurant, kernel.RoleSystem},
		PickedUp:      {kernel.RoleCourier},
		Delivered:     {kernel.RoleCourier},
		Cancelled:     {kernel.RoleCustomer, kernel.RoleRestaurant, kernel.RoleSystem},
		PaymentFailed: {kernel.RoleSystem},
	}
}

// ParseStatus reads the wire spelling ("picked_up") of a status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if status != Unknown && str == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values read from storage or clients.
func (s Status) Validate() error {
	if _, ok := getStatusStrings()[s]; !ok || s == Unknown {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled || s == PaymentFailed
}

// CanTransitionTo reports whether s -> to is an edge of the graph.
func (s Status) CanTransitionTo(to Status) bool {
	return slices.Contains(getTransitions()[s], to)
}

// ValidateTransition returns an InvalidTransitionError naming the pair when s -> to is not an edge.
func (s Status) ValidateTransition(to Status) error {
	if !s.CanTransitionTo(to) {
		return errs.NewInvalidTransitionError(s, to)
	}
	return nil
}

// ValidateRole returns a ForbiddenTransitionError when role may never request a move into s.
func (s Status) ValidateRole(role kernel.Role) error {
	if !slices.Contains(getAllowedRoles()[s], role) {
		return errs.NewForbiddenTransitionError(role, s)
	}
	return nil
}
