package services_test

import (
	"testing"
	"time"

	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/domain/services"
	"foodtrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

func createDispatchableOrder(t *testing.T) *order.Order {
	t.Helper()

	breakdown, err := fare.NewBreakdown(fare.Components{Subtotal: d("100")})
	require.NoError(t, err)

	o, err := order.NewOrder(order.Draft{
		ID:            kernel.NewUUID(),
		CustomerID:    kernel.NewUUID(),
		RestaurantID:  kernel.NewUUID(),
		Items:         []order.Item{{DishID: kernel.NewUUID(), Name: "Dosa", Line: fare.Line{UnitPrice: d("100"), Quantity: 1}}},
		Fare:          breakdown,
		PaymentMethod: order.CashOnDelivery,
		Pickup:        point(t, 12.9716, 77.5946),
		Dropoff:       order.Address{Line: "1 Main St", Point: point(t, 12.95, 77.60)},
	}, now)
	require.NoError(t, err)
	return o
}

func createCandidate(t *testing.T, name string, sample *kernel.LocationSample) services.Candidate {
	t.Helper()
	c, err := courier.NewCourier(kernel.NewUUID(), name)
	require.NoError(t, err)
	require.NoError(t, c.SetOnline(true))
	return services.Candidate{Courier: c, Location: sample}
}

func sampleAt(t *testing.T, lat, lng float64, at time.Time) *kernel.LocationSample {
	t.Helper()
	return &kernel.LocationSample{Point: point(t, lat, lng), CapturedAt: at}
}

func TestOrderDispatcher_Dispatch(t *testing.T) {
	dispatcher := services.NewOrderDispatcher(time.Minute)

	t.Run("should dispatch to nearest courier with fresh location", func(t *testing.T) {
		o := createDispatchableOrder(t)
		far := createCandidate(t, "Far", sampleAt(t, 13.10, 77.70, now))
		near := createCandidate(t, "Near", sampleAt(t, 12.972, 77.595, now))
		unknown := createCandidate(t, "Unknown", nil)

		result, err := dispatcher.Dispatch(o, []services.Candidate{far, unknown, near}, now)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(near.Courier), "should return nearest courier")
		assert.Equal(t, order.Accepted, o.Status())
		assert.True(t, o.Courier().IsEqual(near.Courier.ID()))
		assert.True(t, near.Courier.IsCarrying(o.ID()))
	})

	t.Run("should deprioritize stale location", func(t *testing.T) {
		o := createDispatchableOrder(t)
		stale := createCandidate(t, "Stale", sampleAt(t, 12.9716, 77.5946, now.Add(-time.Hour)))
		fresh := createCandidate(t, "Fresh", sampleAt(t, 13.20, 77.80, now))

		result, err := dispatcher.Dispatch(o, []services.Candidate{stale, fresh}, now)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(fresh.Courier))
	})

	t.Run("should fall back to couriers without location", func(t *testing.T) {
		o := createDispatchableOrder(t)
		only := createCandidate(t, "Solo", nil)

		result, err := dispatcher.Dispatch(o, []services.Candidate{only}, now)

		require.NoError(t, err)
		assert.True(t, result.IsEqual(only.Courier))
	})

	t.Run("should skip busy and offline couriers", func(t *testing.T) {
		o := createDispatchableOrder(t)
		busy := createCandidate(t, "Busy", sampleAt(t, 12.9716, 77.5946, now))
		require.NoError(t, busy.Courier.TakeOrder(kernel.NewUUID()))
		offline := createCandidate(t, "Offline", nil)
		require.NoError(t, offline.Courier.SetOnline(false))

		result, err := dispatcher.Dispatch(o, []services.Candidate{busy, offline}, now)

		require.ErrorIs(t, err, errs.ErrNoCourierAvailable)
		assert.Nil(t, result)
		assert.Nil(t, o.Courier())
		assert.Equal(t, order.Placed, o.Status())
	})

	t.Run("should return error for empty courier list", func(t *testing.T) {
		_, err := dispatcher.Dispatch(createDispatchableOrder(t), nil, now)

		require.ErrorIs(t, err, errs.ErrNoCourierAvailable)
	})

	t.Run("should refuse an order already assigned", func(t *testing.T) {
		o := createDispatchableOrder(t)
		require.NoError(t, o.AssignCourier(kernel.NewUUID(), now))

		_, err := dispatcher.Dispatch(o, []services.Candidate{createCandidate(t, "A", nil)}, now)

		require.ErrorIs(t, err, order.ErrOrderNotDispatchable)
	})

	t.Run("should return error for invalid courier", func(t *testing.T) {
		_, err := dispatcher.Dispatch(createDispatchableOrder(t), []services.Candidate{{Courier: &courier.Courier{}}}, now)

		require.ErrorIs(t, err, courier.ErrCourierIsNotConstructed)
	})
}
