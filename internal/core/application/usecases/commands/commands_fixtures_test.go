package commands_test

import (
	"testing"
	"time"

	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/coupon"
	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/domain/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

// createPricingEngine prices 550 worth of food at 573: packaging 12, platform 11, free delivery.
func createPricingEngine(t *testing.T) services.PricingEngine {
	t.Helper()

	schedule, err := fare.NewFeeSchedule(d("12"), d("0.02"), d("10"), d("30"), d("499"))
	require.NoError(t, err)

	waiver, err := coupon.NewDeliveryFeeWaiver("FREEDEL", d("0"))
	require.NoError(t, err)
	catalog, err := coupon.NewCatalog(waiver)
	require.NoError(t, err)

	engine, err := services.NewPricingEngine(schedule, catalog)
	require.NoError(t, err)
	return engine
}

func createCart(t *testing.T, customerID kernel.UUID) *cart.Cart {
	t.Helper()

	restaurantID := kernel.NewUUID()
	biryani, err := cart.NewItem(kernel.NewUUID(), restaurantID, "Biryani", d("200"), 2)
	require.NoError(t, err)
	raita, err := cart.NewItem(kernel.NewUUID(), restaurantID, "Raita", d("150"), 1)
	require.NoError(t, err)

	c, err := cart.RestoreCart(customerID, []cart.Item{biryani, raita})
	require.NoError(t, err)
	return c
}

func createDraft(t *testing.T, method order.PaymentMethod) order.Draft {
	t.Helper()

	breakdown, err := fare.NewBreakdown(fare.Components{
		Subtotal:     d("550"),
		PackagingFee: d("12"),
		PlatformFee:  d("11"),
	})
	require.NoError(t, err)

	return order.Draft{
		ID:           kernel.NewUUID(),
		CustomerID:   kernel.NewUUID(),
		RestaurantID: kernel.NewUUID(),
		Items: []order.Item{
			{DishID: kernel.NewUUID(), Name: "Biryani", Line: fare.Line{UnitPrice: d("200"), Quantity: 2}},
			{DishID: kernel.NewUUID(), Name: "Raita", Line: fare.Line{UnitPrice: d("150"), Quantity: 1}},
		},
		Fare:          breakdown,
		PaymentMethod: method,
		Pickup:        point(t, 12.9716, 77.5946),
		Dropoff:       order.Address{Line: "12 MG Road", Point: point(t, 12.9352, 77.6245)},
	}
}

func createOrder(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()

	o, err := order.NewOrder(createDraft(t, method), time.Now().UTC())
	require.NoError(t, err)
	o.PullDomainEvents()
	return o
}

// restoreAwaitingOrder is a placed cash order whose courier search started at since.
func restoreAwaitingOrder(t *testing.T, since time.Time) *order.Order {
	t.Helper()

	o, err := order.RestoreOrder(order.Snapshot{
		Draft:             createDraft(t, order.CashOnDelivery),
		PaymentStatus:     order.PaymentPending,
		Status:            order.Placed,
		CreatedAt:         since,
		DispatchableSince: &since,
		History:           []order.HistoryEntry{{Status: order.Placed, At: since, ActorRole: kernel.RoleCustomer}},
		Version:           1,
	})
	require.NoError(t, err)
	return o
}

func createOnlineCourier(t *testing.T) *courier.Courier {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), "Ravi")
	require.NoError(t, err)
	require.NoError(t, c.SetOnline(true))
	return c
}

// createCarryingCourier returns a courier assigned to o, with o already accepted.
func createCarryingCourier(t *testing.T, o *order.Order) *courier.Courier {
	t.Helper()
	c := createOnlineCourier(t)
	require.NoError(t, c.TakeOrder(o.ID()))
	require.NoError(t, o.AssignCourier(c.ID(), time.Now().UTC()))
	o.PullDomainEvents()
	return c
}
