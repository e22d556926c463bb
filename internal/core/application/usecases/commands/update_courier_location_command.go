package commands

import (
	"errors"
	"time"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/guard"
)

var ErrUpdateCourierLocationCommandIsNotConstructed = errors.New(
	"UpdateCourierLocationCommand must be created via NewUpdateCourierLocationCommand constructor",
)

// UpdateCourierLocationCommand is a GPS sample a courier publishes for the order it carries.
// capturedAt is the server receive time.
type UpdateCourierLocationCommand struct {
	courierID kernel.UUID
	orderID   kernel.UUID
	sample    kernel.LocationSample

	guard guard.ConstructorGuard
}

func NewUpdateCourierLocationCommand(
	courierID, orderID kernel.UUID,
	lat, lng float64,
	capturedAt time.Time,
) (UpdateCourierLocationCommand, error) {
	point, pointErr := kernel.NewGeoPoint(lat, lng)
	if err := errors.Join(courierID.Validate(), orderID.Validate(), pointErr); err != nil {
		return UpdateCourierLocationCommand{}, err
	}

	return UpdateCourierLocationCommand{
		courierID: courierID,
		orderID:   orderID,
		sample:    kernel.LocationSample{Point: point, CapturedAt: capturedAt},
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCourierLocationCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCourierLocationCommandIsNotConstructed)
}

func (c UpdateCourierLocationCommand) CourierID() kernel.UUID { return c.courierID }
func (c UpdateCourierLocationCommand) OrderID() kernel.UUID { return c.orderID }
func (c UpdateCourierLocationCommand) Sample() kernel.LocationSample { return c.sample }
