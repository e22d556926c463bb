// Package cart holds the customer's pending selection before checkout.
//
// A Cart belongs to exactly one customer and may only contain dishes of one restaurant.
// Prices are the menu snapshot taken when the dish was added; checkout copies the items
// into an order, so later cart changes never reach a placed order.
package cart

import (
	"errors"
	"fmt"
	"strings"

	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrCartIsNotConstructed = errors.New("Cart must be created via NewCart or RestoreCart")
	ErrItemIsNotConstructed = errors.New("Item must be created via NewItem")

	// ErrMixedRestaurants is returned when a dish of a second restaurant is added.
	ErrMixedRestaurants = errs.NewValueIsInvalidErrorWithCause(
		"restaurantId", errors.New("cart already holds dishes of another restaurant"))
)

// Item is one dish line of a cart.
type Item struct {
	dishID       kernel.UUID
	restaurantID kernel.UUID
	name         string
	unitPrice    decimal.Decimal
	quantity     int
	guard        guard.ConstructorGuard
}

func NewItem(dishID, restaurantID kernel.UUID, name string, unitPrice decimal.Decimal, quantity int) (Item, error) {
	name = strings.TrimSpace(name)

	var nameErr error
	if name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}

	if err := errors.Join(
		dishID.Validate(),
		restaurantID.Validate(),
		nameErr,
		fare.Line{UnitPrice: unitPrice, Quantity: quantity}.Validate(),
	); err != nil {
		return Item{}, err
	}

	return Item{
		dishID:       dishID,
		restaurantID: restaurantID,
		name:         name,
		unitPrice:    unitPrice,
		quantity:     quantity,
		guard:        guard.NewConstructorGuard(),
	}, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) DishID() kernel.UUID { return i.dishID }
func (i Item) RestaurantID() kernel.UUID { return i.restaurantID }
func (i Item) Name() string { return i.name }
func (i Item) UnitPrice() decimal.Decimal { return i.unitPrice }
func (i Item) Quantity() int { return i.quantity }
func (i Item) Line() fare.Line { return fare.Line{UnitPrice: i.unitPrice, Quantity: i.quantity} }

func (i Item) withQuantity(quantity int) Item {
	i.quantity = quantity
	return i
}

// Cart is the aggregate root of a customer's selection.
type Cart struct {
	customerID kernel.UUID
	items      []Item
	guard      guard.ConstructorGuard
}

// NewCart returns an empty cart for the customer.
func NewCart(customerID kernel.UUID) (*Cart, error) {
	if err := customerID.Validate(); err != nil {
		return nil, err
	}
	return &Cart{customerID: customerID, items: make([]Item, 0), guard: guard.NewConstructorGuard()}, nil
}

// RestoreCart rebuilds a stored cart and re-checks the single-restaurant invariant.
func RestoreCart(customerID kernel.UUID, items []Item) (*Cart, error) {
	c, err := NewCart(customerID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if err = c.Add(item); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Cart) Validate() error {
	if c == nil {
		return ErrCartIsNotConstructed
	}
	return c.guard.Validate(ErrCartIsNotConstructed)
}

func (c *Cart) CustomerID() kernel.UUID {
	return c.customerID
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// RestaurantID is nil for an empty cart.
func (c *Cart) RestaurantID() *kernel.UUID {
	if c.IsEmpty() {
		return nil
	}
	id := c.items[0].restaurantID
	return &id
}

func (c *Cart) Lines() []fare.Line {
	lines := make([]fare.Line, len(c.items))
	for i, item := range c.items {
		lines[i] = item.Line()
	}
	return lines
}

func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range c.items {
		subtotal = subtotal.Add(item.Line().Amount())
	}
	return subtotal
}

// Add appends the dish or, when it is already in the cart, adds to its quantity and
// refreshes the price snapshot.
func (c *Cart) Add(item Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	if restaurantID := c.RestaurantID(); restaurantID != nil && !restaurantID.IsEqual(item.restaurantID) {
		return ErrMixedRestaurants
	}

	if idx := c.indexOf(item.dishID); idx >= 0 {
		merged := item.withQuantity(c.items[idx].quantity + item.quantity)
		c.items[idx] = merged
		return nil
	}

	c.items = append(c.items, item)
	return nil
}

// UpdateQuantity sets the quantity of a dish already in the cart.
func (c *Cart) UpdateQuantity(dishID kernel.UUID, quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", quantity))
	}
	idx := c.indexOf(dishID)
	if idx < 0 {
		return errs.NewObjectNotFoundError("dishId", dishID.String())
	}
	c.items[idx] = c.items[idx].withQuantity(quantity)
	return nil
}

func (c *Cart) Remove(dishID kernel.UUID) error {
	idx := c.indexOf(dishID)
	if idx < 0 {
		return errs.NewObjectNotFoundError("dishId", dishID.String())
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return nil
}

func (c *Cart) Clear() {
	c.items = c.items[:0]
}

func (c *Cart) indexOf(dishID kernel.UUID) int {
	for i, item := range c.items {
		if item.dishID.IsEqual(dishID) {
			return i
		}
	}
	return -1
}
