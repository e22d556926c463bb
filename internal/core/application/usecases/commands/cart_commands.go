package commands

import (
	"errors"

	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrAddCartItemCommandIsNotConstructed = errors.New(
		"AddCartItemCommand must be created via NewAddCartItemCommand constructor",
	)
	ErrUpdateCartItemCommandIsNotConstructed = errors.New(
		"UpdateCartItemCommand must be created via NewUpdateCartItemCommand constructor",
	)
	ErrRemoveCartItemCommandIsNotConstructed = errors.New(
		"RemoveCartItemCommand must be created via NewRemoveCartItemCommand constructor",
	)
	ErrClearCartCommandIsNotConstructed = errors.New(
		"ClearCartCommand must be created via NewClearCartCommand constructor",
	)
	ErrQuantityIsInvalid = errs.NewValueIsInvalidErrorWithCause("quantity", errors.New("quantity must be at least 1"))
)

// AddCartItemCommand adds a dish, priced from the menu snapshot, to a customer's cart.
type AddCartItemCommand struct {
	customerID kernel.UUID
	item       cart.Item

	guard guard.ConstructorGuard
}

func NewAddCartItemCommand(
	customerID, dishID, restaurantID kernel.UUID,
	name string,
	unitPrice decimal.Decimal,
	quantity int,
) (AddCartItemCommand, error) {
	item, err := cart.NewItem(dishID, restaurantID, name, unitPrice, quantity)
	if err = errors.Join(customerID.Validate(), err); err != nil {
		return AddCartItemCommand{}, err
	}

	return AddCartItemCommand{
		customerID: customerID,
		item:       item,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c AddCartItemCommand) Validate() error {
	return c.guard.Validate(ErrAddCartItemCommandIsNotConstructed)
}

func (c AddCartItemCommand) CustomerID() kernel.UUID { return c.customerID }
func (c AddCartItemCommand) Item() cart.Item { return c.item }

// UpdateCartItemCommand sets the quantity of a dish already in the cart.
type UpdateCartItemCommand struct {
	customerID kernel.UUID
	dishID     kernel.UUID
	quantity   int

	guard guard.ConstructorGuard
}

func NewUpdateCartItemCommand(customerID, dishID kernel.UUID, quantity int) (UpdateCartItemCommand, error) {
	var quantityErr error
	if quantity < 1 {
		quantityErr = ErrQuantityIsInvalid
	}

	if err := errors.Join(customerID.Validate(), dishID.Validate(), quantityErr); err != nil {
		return UpdateCartItemCommand{}, err
	}

	return UpdateCartItemCommand{
		customerID: customerID,
		dishID:     dishID,
		quantity:   quantity,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c UpdateCartItemCommand) Validate() error {
	return c.guard.Validate(ErrUpdateCartItemCommandIsNotConstructed)
}

func (c UpdateCartItemCommand) CustomerID() kernel.UUID { return c.customerID }
func (c UpdateCartItemCommand) DishID() kernel.UUID { return c.dishID }
func (c UpdateCartItemCommand) Quantity() int { return c.quantity }

// RemoveCartItemCommand drops a dish from the cart.
type RemoveCartItemCommand struct {
	customerID kernel.UUID
	dishID     kernel.UUID

	guard guard.ConstructorGuard
}

func NewRemoveCartItemCommand(customerID, dishID kernel.UUID) (RemoveCartItemCommand, error) {
	if err := errors.Join(customerID.Validate(), dishID.Validate()); err != nil {
		return RemoveCartItemCommand{}, err
	}

	return RemoveCartItemCommand{
		customerID: customerID,
		dishID:     dishID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RemoveCartItemCommand) Validate() error {
	return c.guard.Validate(ErrRemoveCartItemCommandIsNotConstructed)
}

func (c RemoveCartItemCommand) CustomerID() kernel.UUID { return c.customerID }
func (c RemoveCartItemCommand) DishID() kernel.UUID { return c.dishID }

// ClearCartCommand empties the cart.
type ClearCartCommand struct {
	customerID kernel.UUID

	guard guard.ConstructorGuard
}

func NewClearCartCommand(customerID kernel.UUID) (ClearCartCommand, error) {
	if err := customerID.Validate(); err != nil {
		return ClearCartCommand{}, err
	}

	return ClearCartCommand{customerID: customerID, guard: guard.NewConstructorGuard()}, nil
}

func (c ClearCartCommand) Validate() error {
	return c.guard.Validate(ErrClearCartCommandIsNotConstructed)
}

func (c ClearCartCommand) CustomerID() kernel.UUID { return c.customerID }
