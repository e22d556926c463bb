package queries

import (
	"context"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderParties are the identities allowed to read an order.
type orderParties struct {
	customerID   kernel.UUID
	restaurantID kernel.UUID
	courierID    *kernel.UUID
}

func (p orderParties) admits(actor kernel.Actor) bool {
	switch actor.Role {
	case kernel.RoleSystem, kernel.RoleAdmin:
		return true
	case kernel.RoleCustomer:
		return actor.ID.IsEqual(p.customerID)
	case kernel.RoleRestaurant:
		return actor.ID.IsEqual(p.restaurantID)
	case kernel.RoleCourier:
		return p.courierID != nil && actor.ID.IsEqual(*p.courierID)
	default:
		return false
	}
}

// authorizeOrderRead loads the parties of an order and rejects actors outside them.
// A missing order and a foreign order are reported differently: the caller already knows the id.
func authorizeOrderRead(ctx context.Context, db *gorm.DB, actor kernel.Actor, orderID kernel.UUID) (orderParties, error) {
	var row struct {
		CustomerID   uuid.UUID
		RestaurantID uuid.UUID
		CourierID    *uuid.UUID
	}

	result := db.WithContext(ctx).Raw(`
		SELECT customer_id, restaurant_id, courier_id
		FROM orders
		WHERE id = ?
	`, orderID.Bytes()).Scan(&row)
	if result.Error != nil {
		return orderParties{}, result.Error
	}
	if result.RowsAffected == 0 {
		return orderParties{}, errs.NewObjectNotFoundError("order", orderID)
	}

	var err error
	parties := orderParties{}
	if parties.customerID, err = kernel.UUIDFromBytes(row.CustomerID[:]); err != nil {
		return orderParties{}, err
	}
	if parties.restaurantID, err = kernel.UUIDFromBytes(row.RestaurantID[:]); err != nil {
		return orderParties{}, err
	}
	if parties.courierID, err = optionalUUID(row.CourierID); err != nil {
		return orderParties{}, err
	}

	if !parties.admits(actor) {
		return orderParties{}, errs.NewAccessDeniedError(actor.String(), "order "+orderID.String())
	}
	return parties, nil
}
