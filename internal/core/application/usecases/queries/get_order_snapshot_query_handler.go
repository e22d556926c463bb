package queries

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/ports"
	"foodtrack/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type orderRow struct {
	ID                 uuid.UUID
	CustomerID         uuid.UUID
	RestaurantID       uuid.UUID
	CourierID          *uuid.UUID
	Status             string
	CancelReason       string
	PaymentMethod      string
	PaymentStatus      string
	FareSubtotal       decimal.Decimal
	FarePackagingFee   decimal.Decimal
	FarePlatformFee    decimal.Decimal
	FareDeliveryFee    decimal.Decimal
	FareTip            decimal.Decimal
	FareCouponCode     string
	FareCouponDiscount decimal.Decimal
	FareTotal          decimal.Decimal
	PickupLat          float64
	PickupLng          float64
	DropoffLat         float64
	DropoffLng         float64
	DropoffAddress     string
	CreatedAt          time.Time
	Version            int64
}

type itemRow struct {
	DishID    uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

type historyRow struct {
	Status    string
	At        time.Time
	ActorRole string
	Reason    string
}

// GetOrderSnapshotQueryHandler assembles an order snapshot from the orders, order_items and
// order_history tables plus the courier location store.
type GetOrderSnapshotQueryHandler struct {
	db        *gorm.DB
	locations ports.CourierLocationStore
}

func NewGetOrderSnapshotQueryHandler(db *gorm.DB, locations ports.CourierLocationStore) (*GetOrderSnapshotQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	if locations == nil {
		return nil, errs.NewValueIsRequiredError("locations")
	}

	return &GetOrderSnapshotQueryHandler{db: db, locations: locations}, nil
}

// Handle returns the snapshot if the actor is a party to the order.
// A location store failure degrades to a snapshot without courier location.
func (h *GetOrderSnapshotQueryHandler) Handle(ctx context.Context, query GetOrderSnapshotQuery) (*OrderSnapshot, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	if _, err := authorizeOrderRead(ctx, h.db, query.Actor(), query.OrderID()); err != nil {
		return nil, err
	}

	db := h.db.WithContext(ctx)
	id := query.OrderID().Bytes()

	var row orderRow
	result := db.Raw(`
		SELECT
			id, customer_id, restaurant_id, courier_id,
			status, cancel_reason, payment_method, payment_status,
			fare_subtotal, fare_packaging_fee, fare_platform_fee, fare_delivery_fee,
			fare_tip, fare_coupon_code, fare_coupon_discount, fare_total,
			pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, dropoff_address,
			created_at, version
		FROM orders
		WHERE id = ?
	`, id).Scan(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.NewObjectNotFoundError("order", query.OrderID())
	}

	var items []itemRow
	if err := db.Raw(`
		SELECT dish_id, name, unit_price, quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY position
	`, id).Scan(&items).Error; err != nil {
		return nil, err
	}

	var history []historyRow
	if err := db.Raw(`
		SELECT status, at, actor_role, reason
		FROM order_history
		WHERE order_id = ?
		ORDER BY seq
	`, id).Scan(&history).Error; err != nil {
		return nil, err
	}

	snapshot, err := row.toSnapshot(items, history)
	if err != nil {
		return nil, err
	}

	if snapshot.CourierID != nil {
		// The location is advisory; a store outage must not hide the order itself.
		if sample, err := h.locations.Get(ctx, *snapshot.CourierID); err == nil {
			snapshot.CourierLocation = sample
		}
	}

	return snapshot, nil
}

func (r orderRow) toSnapshot(items []itemRow, history []historyRow) (*OrderSnapshot, error) {
	var err error
	s := &OrderSnapshot{
		CancelReason:   order.CancelReason(r.CancelReason),
		DropoffAddress: r.DropoffAddress,
		CreatedAt:      r.CreatedAt.UTC(),
		Version:        r.Version,
		Fare: FareView{
			Subtotal:       r.FareSubtotal,
			PackagingFee:   r.FarePackagingFee,
			PlatformFee:    r.FarePlatformFee,
			DeliveryFee:    r.FareDeliveryFee,
			Tip:            r.FareTip,
			CouponCode:     r.FareCouponCode,
			CouponDiscount: r.FareCouponDiscount,
			Total:          r.FareTotal,
		},
	}

	if s.ID, err = kernel.UUIDFromBytes(r.ID[:]); err != nil {
		return nil, err
	}
	if s.CustomerID, err = kernel.UUIDFromBytes(r.CustomerID[:]); err != nil {
		return nil, err
	}
	if s.RestaurantID, err = kernel.UUIDFromBytes(r.RestaurantID[:]); err != nil {
		return nil, err
	}
	if s.CourierID, err = optionalUUID(r.CourierID); err != nil {
		return nil, err
	}
	if s.Status, err = order.ParseStatus(r.Status); err != nil {
		return nil, err
	}
	if s.PaymentMethod, err = order.ParsePaymentMethod(r.PaymentMethod); err != nil {
		return nil, err
	}
	if s.PaymentStatus, err = order.ParsePaymentStatus(r.PaymentStatus); err != nil {
		return nil, err
	}
	if s.Pickup, err = kernel.NewGeoPoint(r.PickupLat, r.PickupLng); err != nil {
		return nil, err
	}
	if s.Dropoff, err = kernel.NewGeoPoint(r.DropoffLat, r.DropoffLng); err != nil {
		return nil, err
	}

	s.Items = make([]ItemView, 0, len(items))
	for _, it := range items {
		dishID, err := kernel.UUIDFromBytes(it.DishID[:])
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, ItemView{
			DishID:    dishID,
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
		})
	}

	s.History = make([]order.HistoryEntry, 0, len(history))
	for _, h := range history {
		status, err := order.ParseStatus(h.Status)
		if err != nil {
			return nil, err
		}
		s.History = append(s.History, order.HistoryEntry{
			Status:    status,
			At:        h.At.UTC(),
			ActorRole: kernel.Role(h.ActorRole),
			Reason:    order.CancelReason(h.Reason),
		})
	}

	return s, nil
}
