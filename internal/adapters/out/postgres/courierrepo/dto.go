// Package courierrepo provides data transfer objects and mapping functions for courier persistence.
package courierrepo

import (
	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// CourierDTO represents the database structure for persisting courier aggregates.
// ActiveOrderID is unique so one order can never be held by two couriers.
type CourierDTO struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name          string     `gorm:"not null"`
	Online        bool       `gorm:"not null;index"`
	ActiveOrderID *uuid.UUID `gorm:"type:uuid;uniqueIndex"`
	Version       int64      `gorm:"not null"`
}

func (CourierDTO) TableName() string {
	return "couriers"
}

func fromDomain(c *courier.Courier) CourierDTO {
	var activeOrderID *uuid.UUID
	if id := c.ActiveOrder(); id != nil {
		raw := id.Bytes()
		activeOrderID = &raw
	}

	return CourierDTO{
		ID:            c.ID().Bytes(),
		Name:          c.Name(),
		Online:        c.IsOnline(),
		ActiveOrderID: activeOrderID,
		Version:       c.Version(),
	}
}

func toDomain(dto CourierDTO) (*courier.Courier, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var activeOrderID *kernel.UUID
	if dto.ActiveOrderID != nil {
		orderID, orderErr := kernel.UUIDFromBytes((*dto.ActiveOrderID)[:])
		if orderErr != nil {
			return nil, orderErr
		}
		activeOrderID = &orderID
	}

	return courier.RestoreCourier(id, dto.Name, dto.Online, activeOrderID, dto.Version)
}
