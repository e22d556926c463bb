package order

import (
	"time"

	"foodtrack/internal/core/domain/model/kernel"
)

const (
	StatusChangedEventName   = "order.status_changed"
	CourierAssignedEventName = "order.courier_assigned"
	CourierLocationEventName = "order.courier_location"
)

// StatusChangedEvent is recorded for every accepted transition, including creation (From is Unknown).
type StatusChangedEvent struct {
	OrderID      kernel.UUID
	CustomerID   kernel.UUID
	RestaurantID kernel.UUID
	CourierID    *kernel.UUID
	From         Status
	To           Status
	Reason       CancelReason
	ActorRole    kernel.Role
	At           time.Time
}

func (e StatusChangedEvent) EventName() string { return StatusChangedEventName }
func (e StatusChangedEvent) AggregateID() kernel.UUID { return e.OrderID }
func (e StatusChangedEvent) OccurredAt() time.Time { return e.At }

// CourierAssignedEvent is recorded when dispatch attaches a courier to an order the
// restaurant had already accepted, so no status change announces it.
type CourierAssignedEvent struct {
	OrderID      kernel.UUID
	CustomerID   kernel.UUID
	RestaurantID kernel.UUID
	CourierID    kernel.UUID
	Status       Status
	At           time.Time
}

func (e CourierAssignedEvent) EventName() string { return CourierAssignedEventName }
func (e CourierAssignedEvent) AggregateID() kernel.UUID { return e.OrderID }
func (e CourierAssignedEvent) OccurredAt() time.Time { return e.At }

// CourierLocationEvent relays a courier GPS sample to the subscribers of the order the
// courier carries. It is never persisted with the order.
type CourierLocationEvent struct {
	OrderID   kernel.UUID
	CourierID kernel.UUID
	Sample    kernel.LocationSample
}

func (e CourierLocationEvent) EventName() string { return CourierLocationEventName }
func (e CourierLocationEvent) AggregateID() kernel.UUID { return e.OrderID }
func (e CourierLocationEvent) OccurredAt() time.Time { return e.Sample.CapturedAt }

// HistoryEntry is one line of the append-only audit trail. At is always server time.
type HistoryEntry struct {
	Status    Status
	At        time.Time
	ActorRole kernel.Role
	Reason    CancelReason
}
