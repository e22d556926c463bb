package commands

import (
	"errors"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/guard"
)

var ErrSetCourierAvailabilityCommandIsNotConstructed = errors.New(
	"SetCourierAvailabilityCommand must be created via NewSetCourierAvailabilityCommand constructor",
)

// SetCourierAvailabilityCommand toggles whether a courier takes dispatch.
type SetCourierAvailabilityCommand struct {
	courierID kernel.UUID
	online    bool

	guard guard.ConstructorGuard
}

func NewSetCourierAvailabilityCommand(courierID kernel.UUID, online bool) (SetCourierAvailabilityCommand, error) {
	if err := courierID.Validate(); err != nil {
		return SetCourierAvailabilityCommand{}, err
	}

	return SetCourierAvailabilityCommand{
		courierID: courierID,
		online:    online,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c SetCourierAvailabilityCommand) Validate() error {
	return c.guard.Validate(ErrSetCourierAvailabilityCommandIsNotConstructed)
}

func (c SetCourierAvailabilityCommand) CourierID() kernel.UUID { return c.courierID }
func (c SetCourierAvailabilityCommand) Online() bool { return c.online }
