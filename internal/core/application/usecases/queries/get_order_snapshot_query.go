package queries

import (
	"errors"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetOrderSnapshotQueryIsNotConstructed = errors.New(
		"GetOrderSnapshotQuery must be created via NewGetOrderSnapshotQuery constructor",
	)
)

// GetOrderSnapshotQuery reads the full current state of one order on behalf of a party.
// It backs both GET /orders/{orderId} and the catch-up frame sent on a websocket subscribe.
type GetOrderSnapshotQuery struct {
	actor   kernel.Actor
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetOrderSnapshotQuery(actor kernel.Actor, orderID kernel.UUID) (GetOrderSnapshotQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderSnapshotQuery{}, err
	}

	return GetOrderSnapshotQuery{
		actor:   actor,
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderSnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderSnapshotQueryIsNotConstructed)
}

func (q GetOrderSnapshotQuery) Actor() kernel.Actor { return q.actor }
func (q GetOrderSnapshotQuery) OrderID() kernel.UUID { return q.orderID }

// OrderSnapshot is the read model of an order.
// CourierLocation is the last known sample of the assigned courier, if any.
type OrderSnapshot struct {
	ID              kernel.UUID
	CustomerID      kernel.UUID
	RestaurantID    kernel.UUID
	CourierID       *kernel.UUID
	Status          order.Status
	CancelReason    order.CancelReason
	PaymentMethod   order.PaymentMethod
	PaymentStatus   order.PaymentStatus
	Fare            FareView
	Items           []ItemView
	History         []order.HistoryEntry
	Pickup          kernel.GeoPoint
	DropoffAddress  string
	Dropoff         kernel.GeoPoint
	CourierLocation *kernel.LocationSample
	CreatedAt       time.Time
	Version         int64
}

type FareView struct {
	Subtotal       decimal.Decimal
	PackagingFee   decimal.Decimal
	PlatformFee    decimal.Decimal
	DeliveryFee    decimal.Decimal
	Tip            decimal.Decimal
	CouponCode     string
	CouponDiscount decimal.Decimal
	Total          decimal.Decimal
}

type ItemView struct {
	DishID    kernel.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}
