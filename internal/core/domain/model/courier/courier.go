package courier

import (
	"errors"
	"strings"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"
)

// Domain errors for courier operations.
var (
	// ErrNameIsRequired is returned when attempting to create a courier without a name.
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrCourierIsNotConstructed is returned when using an improperly initialized Courier.
	ErrCourierIsNotConstructed = errors.New("Courier must be created via NewCourier constructor")
	// ErrCourierIsNotAvailable is returned when an offline or busy courier is offered an order.
	ErrCourierIsNotAvailable = errs.NewValueIsInvalidErrorWithCause(
		"courier", errors.New("courier is offline or already carries an order"))
	// ErrCourierHasActiveOrder is returned when a courier tries to go offline mid-delivery.
	ErrCourierHasActiveOrder = errs.NewValueIsInvalidErrorWithCause(
		"courier", errors.New("courier carries an active order"))
	// ErrOrderIsNotHeld is returned when releasing an order the courier does not carry.
	ErrOrderIsNotHeld = errs.NewValueIsInvalidErrorWithCause(
		"orderId", errors.New("courier does not carry this order"))
)

// Courier represents a delivery courier in the system.
// It is an aggregate root that tracks whether the courier takes work and which order,
// if any, the courier currently carries.
//
// Key responsibilities:
//   - Managing courier identity (ID, name)
//   - Tracking the online flag the courier toggles from the app
//   - Holding at most one active order between dispatch and delivery
//
// Business rules:
//   - Courier must have a valid UUID and a non-empty name
//   - Only an online courier without an active order can take an order
//   - A courier cannot go offline while carrying an order
//   - Only the courier holding an order may publish locations for it
//
// Concurrency is optimistic: version is the value read from storage and the repository
// conditions its write on it, so two dispatch runs never hand one courier two orders.
//
// Example usage:
//
//	courier, err := NewCourier(kernel.NewUUID(), "John Doe")
//	if err != nil {
//	    // Handle construction error
//	}
//	_ = courier.SetOnline(true)
type Courier struct {
	// id uniquely identifies the courier
	id kernel.UUID
	// name is the human-readable name of the courier
	name string
	// online is true while the courier accepts dispatch
	online bool
	// activeOrderID is the order the courier currently carries
	activeOrderID *kernel.UUID
	// version is the persisted version used for optimistic locking
	version int64
	// guard ensures the courier was properly constructed
	guard guard.ConstructorGuard
}

// NewCourier creates a new offline Courier.
// This is the only way to create a valid Courier instance from scratch.
//
// Parameters:
//   - id: Unique identifier for the courier (must be valid UUID)
//   - name: Human-readable name (must be non-empty)
//
// Returns:
//   - *Courier: A fully initialized courier, offline and without an order
//   - error: Validation error if any parameter is invalid (aggregated errors for multiple issues)
func NewCourier(id kernel.UUID, name string) (*Courier, error) {
	courier := &Courier{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// RestoreCourier reconstructs a Courier aggregate from persistent storage.
// Unlike NewCourier, it accepts the persisted online flag, active order and version.
//
// Examples:
//
//	courier, err := RestoreCourier(courierID, "Alice Johnson", true, &orderID, 4)
//	if err != nil {
//	    return fmt.Errorf("restoration failed: %w", err)
//	}
func RestoreCourier(
	id kernel.UUID,
	name string,
	online bool,
	activeOrderID *kernel.UUID,
	version int64,
) (*Courier, error) {
	courier := &Courier{
		guard:   guard.NewConstructorGuard(),
		online:  online,
		version: version,
	}

	if err := errors.Join(
		courier.setID(id),
		courier.setName(name),
		courier.setActiveOrder(activeOrderID),
	); err != nil {
		return nil, err
	}

	return courier, nil
}

// IsEqual compares two couriers for equality based on their unique identifiers.
func (c *Courier) IsEqual(other *Courier) bool {
	if other == nil {
		return false
	}
	return c.id.IsEqual(other.id)
}

// Validate checks if the Courier was properly constructed.
// The zero value of Courier is invalid and will fail this validation.
func (c *Courier) Validate() error {
	if c == nil {
		return ErrCourierIsNotConstructed
	}
	return c.guard.Validate(ErrCourierIsNotConstructed)
}

// ID returns the unique identifier of the courier.
func (c *Courier) ID() kernel.UUID {
	return c.id
}

// Name returns the human-readable name of the courier.
func (c *Courier) Name() string {
	return c.name
}

// IsOnline reports whether the courier accepts dispatch.
func (c *Courier) IsOnline() bool {
	return c.online
}

// ActiveOrder returns the order the courier carries, or nil.
// The returned pointer is a copy.
func (c *Courier) ActiveOrder() *kernel.UUID {
	if c.activeOrderID == nil {
		return nil
	}
	id := *c.activeOrderID
	return &id
}

// Version returns the version the courier was loaded with.
func (c *Courier) Version() int64 {
	return c.version
}

// IsAvailable reports whether the courier may be offered an order.
//
// Returns:
//   - bool: true if the courier is online and carries nothing
func (c *Courier) IsAvailable() bool {
	return c.online && c.activeOrderID == nil
}

// IsCarrying reports whether the courier is the one delivering orderID.
// Location publishes for an order are accepted only from this courier.
func (c *Courier) IsCarrying(orderID kernel.UUID) bool {
	return c.activeOrderID != nil && c.activeOrderID.IsEqual(orderID)
}

// SetOnline toggles the online flag.
//
// Business rules:
//   - Going offline is refused while the courier carries an order
//   - Setting the current value again is a no-op
func (c *Courier) SetOnline(online bool) error {
	if !online && c.activeOrderID != nil {
		return ErrCourierHasActiveOrder
	}
	c.online = online
	return nil
}

// TakeOrder commits the courier to orderID.
//
// Returns:
//   - error: ErrCourierIsNotAvailable if offline or busy, validation error for a bad id
//
// State changes:
//   - The courier becomes unavailable until ReleaseOrder is called
func (c *Courier) TakeOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if !c.IsAvailable() {
		return ErrCourierIsNotAvailable
	}

	c.activeOrderID = &orderID
	return nil
}

// ReleaseOrder frees the courier once orderID is delivered or cancelled.
//
// Returns:
//   - error: ErrOrderIsNotHeld if the courier does not carry orderID
func (c *Courier) ReleaseOrder(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if !c.IsCarrying(orderID) {
		return ErrOrderIsNotHeld
	}

	c.activeOrderID = nil
	return nil
}

// setID sets the courier's unique identifier with validation.
func (c *Courier) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.id = id
	return nil
}

// setName sets the courier's name with validation.
func (c *Courier) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}

func (c *Courier) setActiveOrder(orderID *kernel.UUID) error {
	if orderID == nil {
		return nil
	}
	if err := orderID.Validate(); err != nil {
		return err
	}

	id := *orderID
	c.activeOrderID = &id
	return nil
}
