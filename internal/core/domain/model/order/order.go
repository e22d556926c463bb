package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	ErrCourierAlreadyAssigned = errs.NewValueIsInvalidErrorWithCause("courierId", errors.New("order already has a courier"))
	ErrOrderNotDispatchable   = errs.NewValueIsInvalidErrorWithCause("order", errors.New("order is not awaiting dispatch"))
	ErrNotPrepaid             = errs.NewValueIsInvalidErrorWithCause("paymentMethod", errors.New("order is not prepaid"))
)

// Item is an immutable copy of a cart line taken at checkout.
type Item struct {
	DishID kernel.UUID
	Name   string
	Line   fare.Line
}

// Address is the drop-off point of an order.
type Address struct {
	Line  string
	Point kernel.GeoPoint
}

// Draft carries everything checkout knows about a new order.
type Draft struct {
	ID            kernel.UUID
	CustomerID    kernel.UUID
	RestaurantID  kernel.UUID
	Items         []Item
	Fare          fare.Breakdown
	PaymentMethod PaymentMethod
	Pickup        kernel.GeoPoint
	Dropoff       Address
}

// Snapshot is the full persisted state of an order, used by repositories to restore it.
type Snapshot struct {
	Draft
	CourierID         *kernel.UUID
	PaymentStatus     PaymentStatus
	Status            Status
	CancelReason      CancelReason
	CreatedAt         time.Time
	DispatchableSince *time.Time
	History           []HistoryEntry
	Version           int64
}

// Order is the aggregate root of one order's lifecycle.
//
// Invariants:
//   - items and fare never change after creation
//   - status only moves along the transition graph; every move appends to history
//   - at most one courier is ever attached
//   - prepaid orders are not accepted before their payment is confirmed
//
// Concurrency is optimistic: version and persistedStatus are the values read from storage,
// and repositories condition their write on them.
type Order struct {
	id            kernel.UUID
	customerID    kernel.UUID
	restaurantID  kernel.UUID
	courierID     *kernel.UUID
	items         []Item
	fare          fare.Breakdown
	paymentMethod PaymentMethod
	paymentStatus PaymentStatus
	pickup        kernel.GeoPoint
	dropoff       Address
	status        Status
	cancelReason  CancelReason
	createdAt     time.Time

	// dispatchableSince is when dispatch may start: creation for cash orders, payment
	// confirmation for prepaid ones. Nil while a prepaid order awaits its payment.
	dispatchableSince *time.Time

	history []HistoryEntry
	events  []kernel.DomainEvent

	version         int64
	persistedStatus Status

	isConstructed bool
}

// NewOrder creates an order in Placed status from a checkout draft.
// The creation is the first history entry and is announced by a StatusChangedEvent.
func NewOrder(d Draft, now time.Time) (*Order, error) {
	o := &Order{
		paymentStatus: PaymentPending,
		status:        Placed,
		createdAt:     now,
		isConstructed: true,
	}

	if err := o.setDraft(d); err != nil {
		return nil, err
	}

	if o.paymentMethod == CashOnDelivery {
		o.dispatchableSince = &now
	}

	o.history = []HistoryEntry{{Status: Placed, At: now, ActorRole: kernel.RoleCustomer}}
	o.persistedStatus = Unknown
	o.recordStatusChange(Unknown, Placed, kernel.RoleCustomer, now)
	return o, nil
}

// RestoreOrder rebuilds an order from storage without recording events.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{isConstructed: true}

	if err := errors.Join(
		o.setDraft(s.Draft),
		s.Status.Validate(),
		s.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if s.CourierID != nil {
		if err := s.CourierID.Validate(); err != nil {
			return nil, err
		}
	}
	if s.CourierID == nil && (s.Status == PickedUp || s.Status == Delivered) {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid", fmt.Errorf("%s is not a valid status to have no courier", s.Status))
	}
	if len(s.History) == 0 {
		return nil, errs.NewValueIsRequiredError("history")
	}

	o.courierID = s.CourierID
	o.paymentStatus = s.PaymentStatus
	o.status = s.Status
	o.cancelReason = s.CancelReason
	o.createdAt = s.CreatedAt
	o.dispatchableSince = s.DispatchableSince
	o.history = append(make([]HistoryEntry, 0, len(s.History)), s.History...)
	o.version = s.Version
	o.persistedStatus = s.Status
	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID { return o.id }
func (o *Order) CustomerID() kernel.UUID { return o.customerID }
func (o *Order) RestaurantID() kernel.UUID { return o.restaurantID }
func (o *Order) Courier() *kernel.UUID { return o.courierID }
func (o *Order) Fare() fare.Breakdown { return o.fare }
func (o *Order) PaymentMethod() PaymentMethod { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) Pickup() kernel.GeoPoint { return o.pickup }
func (o *Order) Dropoff() Address { return o.dropoff }
func (o *Order) Status() Status { return o.status }
func (o *Order) CancelReason() CancelReason { return o.cancelReason }
func (o *Order) CreatedAt() time.Time { return o.createdAt }
func (o *Order) DispatchableSince() *time.Time { return o.dispatchableSince }
func (o *Order) Version() int64 { return o.version }
func (o *Order) PersistedStatus() Status { return o.persistedStatus }

func (o *Order) Items() []Item {
	return append(make([]Item, 0, len(o.items)), o.items...)
}

// Lines are the priced lines the fare was computed from.
func (o *Order) Lines() []fare.Line {
	lines := make([]fare.Line, len(o.items))
	for i, item := range o.items {
		lines[i] = item.Line
	}
	return lines
}

func (o *Order) History() []HistoryEntry {
	return append(make([]HistoryEntry, 0, len(o.history)), o.history...)
}

// PullDomainEvents returns the recorded events and forgets them.
func (o *Order) PullDomainEvents() []kernel.DomainEvent {
	events := o.events
	o.events = nil
	return events
}

// IsParty reports whether actor is the customer, the restaurant or the assigned courier of
// the order. The service itself and admins may read every order.
func (o *Order) IsParty(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleSystem, kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return actor.ID.IsEqual(o.customerID)
	case kernel.RoleRestaurant:
		return actor.ID.IsEqual(o.restaurantID)
	case kernel.RoleCourier:
		return o.courierID != nil && actor.ID.IsEqual(*o.courierID)
	default:
		return false
	}
}

// IsAwaitingDispatch reports whether the dispatcher should look for a courier.
func (o *Order) IsAwaitingDispatch() bool {
	return o.courierID == nil &&
		o.dispatchableSince != nil &&
		(o.status == Placed || o.status == Accepted)
}

// DispatchWindowElapsed reports whether the courier search has run longer than timeout.
func (o *Order) DispatchWindowElapsed(now time.Time, timeout time.Duration) bool {
	return o.IsAwaitingDispatch() && now.Sub(*o.dispatchableSince) >= timeout
}

// Transition moves the order to status `to` on behalf of actor.
//
// Checks, in order:
//   - the actor's role may request `to` at all (ForbiddenTransitionError)
//   - current -> to is an edge of the graph (InvalidTransitionError)
//   - the edge's guard holds: confirmed payment before acceptance, a courier before pickup
//   - the actor is the order's own customer, restaurant or assigned courier (ForbiddenTransitionError)
//   - a cancel reason, when given, is the one the actor's role records (ValueIsInvalidError)
//
// Cancellation checks the graph first, so cancelling a picked up order is an
// InvalidTransitionError for every role.
//
// A rejected transition changes nothing. reason is only meaningful for Cancelled and
// defaults from the actor's role.
func (o *Order) Transition(actor kernel.Actor, to Status, reason CancelReason, now time.Time) error {
	if err := to.Validate(); err != nil {
		return err
	}
	if to == Cancelled {
		if err := o.status.ValidateTransition(to); err != nil {
			return err
		}
	}
	if err := to.ValidateRole(actor.Role); err != nil {
		return err
	}
	if err := o.status.ValidateTransition(to); err != nil {
		return err
	}
	if err := o.validateGuard(to); err != nil {
		return err
	}
	if actor.Role != kernel.RoleSystem && !o.IsParty(actor) {
		return errs.NewForbiddenTransitionError(actor.Role, to)
	}

	if to == Cancelled {
		var err error
		if reason, err = cancelReasonFor(actor.Role, reason); err != nil {
			return err
		}
	} else {
		reason = NoCancelReason
	}

	o.apply(to, actor.Role, reason, now)
	return nil
}

// Accept is the restaurant's acceptance.
func (o *Order) Accept(actor kernel.Actor, now time.Time) error {
	return o.Transition(actor, Accepted, NoCancelReason, now)
}

func (o *Order) PickUp(actor kernel.Actor, now time.Time) error {
	return o.Transition(actor, PickedUp, NoCancelReason, now)
}

func (o *Order) Deliver(actor kernel.Actor, now time.Time) error {
	return o.Transition(actor, Delivered, NoCancelReason, now)
}

func (o *Order) Cancel(actor kernel.Actor, reason CancelReason, now time.Time) error {
	return o.Transition(actor, Cancelled, reason, now)
}

// AssignCourier attaches the dispatched courier. Acceptance is automatic: a Placed order
// moves to Accepted in the same step, an order the restaurant already accepted keeps its
// status and records a CourierAssignedEvent.
func (o *Order) AssignCourier(courierID kernel.UUID, now time.Time) error {
	if err := courierID.Validate(); err != nil {
		return err
	}
	if o.courierID != nil {
		return ErrCourierAlreadyAssigned
	}
	if !o.IsAwaitingDispatch() {
		return ErrOrderNotDispatchable
	}

	o.courierID = &courierID

	if o.status == Placed {
		o.apply(Accepted, kernel.RoleSystem, NoCancelReason, now)
		return nil
	}

	o.events = append(o.events, CourierAssignedEvent{
		OrderID:      o.id,
		CustomerID:   o.customerID,
		RestaurantID: o.restaurantID,
		CourierID:    courierID,
		Status:       o.status,
		At:           now,
	})
	return nil
}

// ConfirmPayment records a successful prepaid capture and opens dispatch.
// A repeated confirmation is a no-op so redelivered callbacks are harmless.
func (o *Order) ConfirmPayment(now time.Time) error {
	if o.paymentMethod != Prepaid {
		return ErrNotPrepaid
	}
	if o.paymentStatus == PaymentConfirmed {
		return nil
	}
	if o.status != Placed || o.paymentStatus != PaymentPending {
		return errs.NewInvalidTransitionErrorWithReason(o.status, Accepted, "payment can no longer be confirmed")
	}

	o.paymentStatus = PaymentConfirmed
	o.dispatchableSince = &now
	return nil
}

// FailPayment records a failed prepaid capture; the order ends in PaymentFailed.
// A repeated failure is a no-op.
func (o *Order) FailPayment(now time.Time) error {
	if o.paymentMethod != Prepaid {
		return ErrNotPrepaid
	}
	if o.status == PaymentFailed {
		return nil
	}
	if err := o.Transition(kernel.SystemActor(), PaymentFailed, NoCancelReason, now); err != nil {
		return err
	}
	o.paymentStatus = PaymentFailedStatus
	return nil
}

func (o *Order) validateGuard(to Status) error {
	switch to {
	case Accepted:
		if o.paymentMethod == Prepaid && o.paymentStatus != PaymentConfirmed {
			return errs.NewInvalidTransitionErrorWithReason(o.status, to, "payment is not confirmed")
		}
	case PickedUp:
		if o.courierID == nil {
			return errs.NewInvalidTransitionErrorWithReason(o.status, to, "no courier assigned")
		}
	case PaymentFailed:
		if o.paymentMethod != Prepaid || o.paymentStatus == PaymentConfirmed {
			return errs.NewInvalidTransitionErrorWithReason(o.status, to, "payment is not pending")
		}
	}
	return nil
}

// cancelReasonFor pins the reason to the role that cancels, so the audit trail never blames
// another party.
func cancelReasonFor(role kernel.Role, requested CancelReason) (CancelReason, error) {
	var own CancelReason
	switch role {
	case kernel.RoleCustomer:
		own = CustomerRequest
	case kernel.RoleRestaurant:
		own = RestaurantDeclined
	default:
		own = DispatchFailed
	}

	if requested != NoCancelReason && requested != own {
		return NoCancelReason, errs.NewValueIsInvalidErrorWithCause("reason",
			fmt.Errorf("role %s cannot cancel with reason %s", role, requested))
	}
	return own, nil
}

func (o *Order) apply(to Status, role kernel.Role, reason CancelReason, now time.Time) {
	from := o.status
	o.status = to
	o.cancelReason = reason
	o.history = append(o.history, HistoryEntry{Status: to, At: now, ActorRole: role, Reason: reason})
	o.recordStatusChange(from, to, role, now)
}

func (o *Order) recordStatusChange(from, to Status, role kernel.Role, now time.Time) {
	var courierID *kernel.UUID
	if o.courierID != nil {
		id := *o.courierID
		courierID = &id
	}
	o.events = append(o.events, StatusChangedEvent{
		OrderID:      o.id,
		CustomerID:   o.customerID,
		RestaurantID: o.restaurantID,
		CourierID:    courierID,
		From:         from,
		To:           to,
		Reason:       o.cancelReason,
		ActorRole:    role,
		At:           now,
	})
}

func (o *Order) setDraft(d Draft) error {
	var itemsErr error
	if len(d.Items) == 0 {
		itemsErr = errs.NewValueIsRequiredError("items")
	}
	for _, item := range d.Items {
		if err := errors.Join(item.DishID.Validate(), item.Line.Validate()); err != nil {
			itemsErr = errors.Join(itemsErr, err)
		}
	}

	var dropoffErr error
	if strings.TrimSpace(d.Dropoff.Line) == "" {
		dropoffErr = errs.NewValueIsRequiredError("deliveryAddress")
	}

	if err := errors.Join(
		d.ID.Validate(),
		d.CustomerID.Validate(),
		d.RestaurantID.Validate(),
		itemsErr,
		d.Fare.Validate(),
		d.PaymentMethod.Validate(),
		d.Pickup.Validate(),
		d.Dropoff.Point.Validate(),
		dropoffErr,
	); err != nil {
		return err
	}

	o.id = d.ID
	o.customerID = d.CustomerID
	o.restaurantID = d.RestaurantID
	o.items = append(make([]Item, 0, len(d.Items)), d.Items...)
	o.fare = d.Fare
	o.paymentMethod = d.PaymentMethod
	o.pickup = d.Pickup
	o.dropoff = d.Dropoff
	return nil
}
