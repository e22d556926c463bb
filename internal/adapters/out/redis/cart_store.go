// Package redis keeps the ephemeral state of the service in Redis: customer carts and the
// latest location sample of each courier. Both expire on their own.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/kernel"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// cartDTO is the JSON document stored under cart:<customerId>.
type cartDTO struct {
	CustomerID kernel.UUID   `json:"customerId"`
	Items      []cartItemDTO `json:"items"`
}

type cartItemDTO struct {
	DishID       kernel.UUID     `json:"dishId"`
	RestaurantID kernel.UUID     `json:"restaurantId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
}

// CartStore implements ports.CartRepository. Every save refreshes the TTL, so an abandoned
// cart disappears after ttl of inactivity.
type CartStore struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

func NewCartStore(client goredis.UniversalClient, ttl time.Duration) *CartStore {
	return &CartStore{client: client, ttl: ttl}
}

// Get returns an empty cart when the customer has none.
func (s *CartStore) Get(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return cart.NewCart(customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return decodeCart(customerID, data)
}

// Claim takes the cart out with GETDEL, so a cart is checked out at most once.
func (s *CartStore) Claim(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error) {
	data, err := s.client.GetDel(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return cart.NewCart(customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("redis claim cart: %w", err)
	}
	return decodeCart(customerID, data)
}

func decodeCart(customerID kernel.UUID, data []byte) (*cart.Cart, error) {
	var dto cartDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	items := make([]cart.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, err := cart.NewItem(it.DishID, it.RestaurantID, it.Name, it.UnitPrice, it.Quantity)
		if err != nil {
			return nil, fmt.Errorf("restore cart item %s: %w", it.DishID, err)
		}
		items = append(items, item)
	}

	return cart.RestoreCart(customerID, items)
}

func (s *CartStore) Save(ctx context.Context, c *cart.Cart) error {
	dto := cartDTO{CustomerID: c.CustomerID(), Items: make([]cartItemDTO, 0, len(c.Items()))}
	for _, it := range c.Items() {
		dto.Items = append(dto.Items, cartItemDTO{
			DishID:       it.DishID(),
			RestaurantID: it.RestaurantID(),
			Name:         it.Name(),
			UnitPrice:    it.UnitPrice(),
			Quantity:     it.Quantity(),
		})
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	if err = s.client.Set(ctx, cartKey(c.CustomerID()), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

func (s *CartStore) Delete(ctx context.Context, customerID kernel.UUID) error {
	if err := s.client.Del(ctx, cartKey(customerID)).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

func cartKey(customerID kernel.UUID) string {
	return "cart:" + customerID.String()
}
