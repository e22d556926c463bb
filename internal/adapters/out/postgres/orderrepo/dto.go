// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored as one orders row plus its frozen items and append-only history rows.
package orderrepo

import (
	"time"

	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Version and status together form the optimistic-concurrency precondition of updates.
type OrderDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	CustomerID        uuid.UUID  `gorm:"type:uuid;index;not null"`
	RestaurantID      uuid.UUID  `gorm:"type:uuid;index;not null"`
	CourierID         *uuid.UUID `gorm:"type:uuid;index"`
	Status            string     `gorm:"size:32;index;not null"`
	CancelReason      string     `gorm:"size:32;not null;default:''"`
	PaymentMethod     string     `gorm:"size:32;not null"`
	PaymentStatus     string     `gorm:"size:32;not null"`
	Fare              FareDTO    `gorm:"embedded;embeddedPrefix:fare_"`
	PickupLat         float64    `gorm:"not null"`
	PickupLng         float64    `gorm:"not null"`
	DropoffLat        float64    `gorm:"not null"`
	DropoffLng        float64    `gorm:"not null"`
	DropoffAddress    string     `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"autoCreateTime:false;not null"`
	DispatchableSince *time.Time `gorm:"index"`
	Version           int64      `gorm:"not null"`

	Items   []ItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History []HistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// FareDTO is the embedded itemized fare. Total is stored for read queries only; the domain
// always derives it from the components.
type FareDTO struct {
	Subtotal       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PackagingFee   decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PlatformFee    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	DeliveryFee    decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Tip            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	CouponCode     string          `gorm:"size:64;not null;default:''"`
	CouponDiscount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Total          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

// ItemDTO is one frozen order line.
type ItemDTO struct {
	OrderID   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Position  int             `gorm:"primaryKey"`
	DishID    uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity  int             `gorm:"not null"`
}

func (ItemDTO) TableName() string {
	return "order_items"
}

// HistoryDTO is one audit trail row. Seq is the entry's index in the history.
type HistoryDTO struct {
	OrderID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq       int       `gorm:"primaryKey"`
	Status    string    `gorm:"size:32;not null"`
	At        time.Time `gorm:"not null"`
	ActorRole string    `gorm:"size:32;not null"`
	Reason    string    `gorm:"size:32;not null;default:''"`
}

func (HistoryDTO) TableName() string {
	return "order_history"
}

func fromDomain(o *order.Order) OrderDTO {
	id := o.ID().Bytes()

	var courierID *uuid.UUID
	if c := o.Courier(); c != nil {
		raw := c.Bytes()
		courierID = &raw
	}

	f := o.Fare()
	items := o.Items()
	itemDTOs := make([]ItemDTO, len(items))
	for i, item := range items {
		itemDTOs[i] = ItemDTO{
			OrderID:   id,
			Position:  i,
			DishID:    item.DishID.Bytes(),
			Name:      item.Name,
			UnitPrice: item.Line.UnitPrice,
			Quantity:  item.Line.Quantity,
		}
	}

	return OrderDTO{
		ID:            id,
		CustomerID:    o.CustomerID().Bytes(),
		RestaurantID:  o.RestaurantID().Bytes(),
		CourierID:     courierID,
		Status:        o.Status().String(),
		CancelReason:  o.CancelReason().String(),
		PaymentMethod: o.PaymentMethod().String(),
		PaymentStatus: o.PaymentStatus().String(),
		Fare: FareDTO{
			Subtotal:       f.Subtotal(),
			PackagingFee:   f.PackagingFee(),
			PlatformFee:    f.PlatformFee(),
			DeliveryFee:    f.DeliveryFee(),
			Tip:            f.Tip(),
			CouponCode:     f.CouponCode(),
			CouponDiscount: f.CouponDiscount(),
			Total:          f.Total(),
		},
		PickupLat:         o.Pickup().Lat(),
		PickupLng:         o.Pickup().Lng(),
		DropoffLat:        o.Dropoff().Point.Lat(),
		DropoffLng:        o.Dropoff().Point.Lng(),
		DropoffAddress:    o.Dropoff().Line,
		CreatedAt:         o.CreatedAt(),
		DispatchableSince: o.DispatchableSince(),
		Version:           o.Version(),
		Items:             itemDTOs,
		History:           historyFromDomain(id, o.History()),
	}
}

func historyFromDomain(orderID uuid.UUID, history []order.HistoryEntry) []HistoryDTO {
	dtos := make([]HistoryDTO, 0, len(history))
	for seq, entry := range history {
		dtos = append(dtos, HistoryDTO{
			OrderID:   orderID,
			Seq:       seq,
			Status:    entry.Status.String(),
			At:        entry.At,
			ActorRole: entry.ActorRole.String(),
			Reason:    entry.Reason.String(),
		})
	}
	return dtos
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	customerID, err := kernel.UUIDFromBytes(dto.CustomerID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	var courierID *kernel.UUID
	if dto.CourierID != nil {
		cID, courierErr := kernel.UUIDFromBytes((*dto.CourierID)[:])
		if courierErr != nil {
			return nil, courierErr
		}
		courierID = &cID
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	cancelReason, err := order.ParseCancelReason(dto.CancelReason)
	if err != nil {
		return nil, err
	}
	paymentMethod, err := order.ParsePaymentMethod(dto.PaymentMethod)
	if err != nil {
		return nil, err
	}
	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}

	breakdown, err := fare.NewBreakdown(fare.Components{
		Subtotal:       dto.Fare.Subtotal,
		PackagingFee:   dto.Fare.PackagingFee,
		PlatformFee:    dto.Fare.PlatformFee,
		DeliveryFee:    dto.Fare.DeliveryFee,
		Tip:            dto.Fare.Tip,
		CouponCode:     dto.Fare.CouponCode,
		CouponDiscount: dto.Fare.CouponDiscount,
	})
	if err != nil {
		return nil, err
	}

	pickup, err := kernel.NewGeoPoint(dto.PickupLat, dto.PickupLng)
	if err != nil {
		return nil, err
	}
	dropoff, err := kernel.NewGeoPoint(dto.DropoffLat, dto.DropoffLng)
	if err != nil {
		return nil, err
	}

	items, err := itemsToDomain(dto.Items)
	if err != nil {
		return nil, err
	}
	history, err := historyToDomain(dto.History)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(order.Snapshot{
		Draft: order.Draft{
			ID:            id,
			CustomerID:    customerID,
			RestaurantID:  restaurantID,
			Items:         items,
			Fare:          breakdown,
			PaymentMethod: paymentMethod,
			Pickup:        pickup,
			Dropoff:       order.Address{Line: dto.DropoffAddress, Point: dropoff},
		},
		CourierID:         courierID,
		PaymentStatus:     paymentStatus,
		Status:            status,
		CancelReason:      cancelReason,
		CreatedAt:         dto.CreatedAt,
		DispatchableSince: dto.DispatchableSince,
		History:           history,
		Version:           dto.Version,
	})
}

func itemsToDomain(dtos []ItemDTO) ([]order.Item, error) {
	items := make([]order.Item, len(dtos))
	for i, dto := range dtos {
		dishID, err := kernel.UUIDFromBytes(dto.DishID[:])
		if err != nil {
			return nil, err
		}
		items[i] = order.Item{
			DishID: dishID,
			Name:   dto.Name,
			Line:   fare.Line{UnitPrice: dto.UnitPrice, Quantity: dto.Quantity},
		}
	}
	return items, nil
}

func historyToDomain(dtos []HistoryDTO) ([]order.HistoryEntry, error) {
	history := make([]order.HistoryEntry, len(dtos))
	for i, dto := range dtos {
		status, err := order.ParseStatus(dto.Status)
		if err != nil {
			return nil, err
		}
		reason, err := order.ParseCancelReason(dto.Reason)
		if err != nil {
			return nil, err
		}
		history[i] = order.HistoryEntry{
			Status:    status,
			At:        dto.At,
			ActorRole: kernel.Role(dto.ActorRole),
			Reason:    reason,
		}
	}
	return history, nil
}
