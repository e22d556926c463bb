package queries

import (
	"context"

	"foodtrack/internal/core/ports"
	"foodtrack/internal/pkg/errs"
)

// GetCartQueryHandler reads carts from the cart store; carts never live in the database.
type GetCartQueryHandler struct {
	carts ports.CartRepository
}

func NewGetCartQueryHandler(carts ports.CartRepository) (*GetCartQueryHandler, error) {
	if carts == nil {
		return nil, errs.NewValueIsRequiredError("carts")
	}
	return &GetCartQueryHandler{carts: carts}, nil
}

func (h *GetCartQueryHandler) Handle(ctx context.Context, query GetCartQuery) (GetCartQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCartQueryResponse{}, err
	}

	c, err := h.carts.Get(ctx, query.CustomerID())
	if err != nil {
		return GetCartQueryResponse{}, err
	}

	resp := GetCartQueryResponse{
		CustomerID:   c.CustomerID(),
		RestaurantID: c.RestaurantID(),
		Items:        make([]CartItemView, 0, len(c.Items())),
		Subtotal:     c.Subtotal(),
	}
	for _, item := range c.Items() {
		resp.Items = append(resp.Items, CartItemView{
			DishID:    item.DishID(),
			Name:      item.Name(),
			UnitPrice: item.UnitPrice(),
			Quantity:  item.Quantity(),
			LineTotal: item.Line().Amount(),
		})
	}
	return resp, nil
}
