package queries

import (
	"context"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetActiveOrdersQueryHandler reads a restaurant's placed, accepted and picked-up orders.
type GetActiveOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetActiveOrdersQueryHandler(db *gorm.DB) GetActiveOrdersQueryHandler {
	return GetActiveOrdersQueryHandler{db: db}
}

// Handle returns the active orders oldest first.
func (h GetActiveOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetActiveOrdersQuery,
) ([]GetActiveOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	active := []string{order.Placed.String(), order.Accepted.String(), order.PickedUp.String()}
	orders := make([]GetActiveOrdersQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_id,
			courier_id,
			status,
			payment_method,
			payment_status,
			fare_total,
			created_at
		FROM orders
		WHERE restaurant_id = ? AND status IN ?
		ORDER BY created_at, id
	`, query.RestaurantID().Bytes(), active).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			resp                                GetActiveOrdersQueryResponse
			id, customerID                      uuid.UUID
			courierID                           *uuid.UUID
			status, paymentMethod, paymentState string
			total                               decimal.Decimal
			createdAt                           time.Time
		)

		if err = rows.Scan(&id, &customerID, &courierID, &status, &paymentMethod, &paymentState, &total, &createdAt); err != nil {
			return nil, err
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
			return nil, err
		}
		if resp.CourierID, err = optionalUUID(courierID); err != nil {
			return nil, err
		}
		if resp.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if resp.PaymentMethod, err = order.ParsePaymentMethod(paymentMethod); err != nil {
			return nil, err
		}
		if resp.PaymentStatus, err = order.ParsePaymentStatus(paymentState); err != nil {
			return nil, err
		}
		resp.Total = total
		resp.CreatedAt = createdAt.UTC()

		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
