package commands

import (
	"errors"
	"strings"

	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"
)

var (
	ErrCreateCourierCommandIsNotConstructed = errors.New(
		"CreateCourierCommand must be created via NewCreateCourierCommand constructor",
	)
	ErrNameIsRequired = errs.NewValueIsRequiredError("name")
)

// CreateCourierCommand adds a courier to the fleet. The ID is minted here so the HTTP
// handler can answer with it before the dispatcher ever sees the courier.
//
// Example:
//
//	cmd, err := NewCreateCourierCommand("  Ravi K  ")
//	if err != nil {
//	    return err // ErrNameIsRequired for a blank name
//	}
//	_ = handler.Handle(ctx, cmd)
//	location := "/api/v1/couriers/" + cmd.CourierID().String()
type CreateCourierCommand struct { //nolint:recvcheck //using for validation
	courierID kernel.UUID
	name      string

	guard guard.ConstructorGuard
}

// NewCreateCourierCommand trims the name and assigns a fresh courier ID.
func NewCreateCourierCommand(name string) (CreateCourierCommand, error) {
	command := CreateCourierCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setCourierID(kernel.NewUUID()),
		command.setName(name),
	); err != nil {
		return CreateCourierCommand{}, err
	}

	return command, nil
}

func (c CreateCourierCommand) Validate() error {
	return c.guard.Validate(ErrCreateCourierCommandIsNotConstructed)
}

func (c CreateCourierCommand) CourierID() kernel.UUID {
	return c.courierID
}

// Name is already trimmed.
func (c CreateCourierCommand) Name() string {
	return c.name
}

func (c *CreateCourierCommand) setCourierID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.courierID = id
	return nil
}

func (c *CreateCourierCommand) setName(name string) error {
	if name = strings.TrimSpace(name); name == "" {
		return ErrNameIsRequired
	}

	c.name = name
	return nil
}
