package commands

import (
	"context"

	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/ports"
)

// AddCartItemCommandHandler adds a dish to the customer's cart and returns the new cart.
// A missing cart is created on the first add.
type AddCartItemCommandHandler struct {
	carts ports.CartRepository
}

func NewAddCartItemCommandHandler(carts ports.CartRepository) AddCartItemCommandHandler {
	return AddCartItemCommandHandler{carts: carts}
}

func (h AddCartItemCommandHandler) Handle(ctx context.Context, cmd AddCartItemCommand) (*cart.Cart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c, err := h.carts.Get(ctx, cmd.CustomerID())
	if err != nil {
		return nil, err
	}

	if err = c.Add(cmd.Item()); err != nil {
		return nil, err
	}

	if err = h.carts.Save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// UpdateCartItemCommandHandler changes the quantity of one cart line.
type UpdateCartItemCommandHandler struct {
	carts ports.CartRepository
}

func NewUpdateCartItemCommandHandler(carts ports.CartRepository) UpdateCartItemCommandHandler {
	return UpdateCartItemCommandHandler{carts: carts}
}

func (h UpdateCartItemCommandHandler) Handle(ctx context.Context, cmd UpdateCartItemCommand) (*cart.Cart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c, err := h.carts.Get(ctx, cmd.CustomerID())
	if err != nil {
		return nil, err
	}

	if err = c.UpdateQuantity(cmd.DishID(), cmd.Quantity()); err != nil {
		return nil, err
	}

	if err = h.carts.Save(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// RemoveCartItemCommandHandler drops one cart line.
type RemoveCartItemCommandHandler struct {
	carts ports.CartRepository
}

func NewRemoveCartItemCommandHandler(carts ports.CartRepository) RemoveCartItemCommandHandler {
	return RemoveCartItemCommandHandler{carts: carts}
}

func (h RemoveCartItemCommandHandler) Handle(ctx context.Context, cmd RemoveCartItemCommand) (*cart.Cart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	c, err := h.carts.Get(ctx, cmd.CustomerID())
	if err != nil {
		return nil, err
	}

	if err = c.Remove(cmd.DishID()); err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		err = h.carts.Delete(ctx, cmd.CustomerID())
	} else {
		err = h.carts.Save(ctx, c)
	}
	if err != nil {
		return nil, err
	}

	return c, nil
}

// ClearCartCommandHandler deletes the stored cart and returns an empty one.
type ClearCartCommandHandler struct {
	carts ports.CartRepository
}

func NewClearCartCommandHandler(carts ports.CartRepository) ClearCartCommandHandler {
	return ClearCartCommandHandler{carts: carts}
}

func (h ClearCartCommandHandler) Handle(ctx context.Context, cmd ClearCartCommand) (*cart.Cart, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if err := h.carts.Delete(ctx, cmd.CustomerID()); err != nil {
		return nil, err
	}

	return cart.NewCart(cmd.CustomerID())
}
