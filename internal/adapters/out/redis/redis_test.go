package redis_test

import (
	"context"
	"testing"
	"time"

	redisadapter "foodtrack/internal/adapters/out/redis"
	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/kernel"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func sample(t *testing.T, lat, lng float64, at time.Time) kernel.LocationSample {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return kernel.LocationSample{Point: p, CapturedAt: at}
}

func TestCartStore(t *testing.T) {
	t.Run("should read a missing cart as empty", func(t *testing.T) {
		_, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Hour)
		customerID := kernel.NewUUID()

		c, err := store.Get(context.Background(), customerID)

		require.NoError(t, err)
		assert.True(t, c.IsEmpty())
		assert.Equal(t, customerID, c.CustomerID())
	})

	t.Run("should round trip items with exact prices", func(t *testing.T) {
		ctx := context.Background()
		_, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Hour)

		customerID := kernel.NewUUID()
		restaurantID := kernel.NewUUID()
		dishID := kernel.NewUUID()
		item, err := cart.NewItem(dishID, restaurantID, "Masala Dosa", decimal.RequireFromString("89.90"), 3)
		require.NoError(t, err)
		c, err := cart.RestoreCart(customerID, []cart.Item{item})
		require.NoError(t, err)

		require.NoError(t, store.Save(ctx, c))
		loaded, err := store.Get(ctx, customerID)
		require.NoError(t, err)

		require.Len(t, loaded.Items(), 1)
		got := loaded.Items()[0]
		assert.Equal(t, dishID, got.DishID())
		assert.Equal(t, restaurantID, got.RestaurantID())
		assert.Equal(t, "Masala Dosa", got.Name())
		assert.Equal(t, 3, got.Quantity())
		assert.True(t, decimal.RequireFromString("89.90").Equal(got.UnitPrice()))
		assert.True(t, decimal.RequireFromString("269.70").Equal(loaded.Subtotal()))
	})

	t.Run("should expire an abandoned cart", func(t *testing.T) {
		ctx := context.Background()
		mr, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Minute)

		customerID := kernel.NewUUID()
		item, err := cart.NewItem(kernel.NewUUID(), kernel.NewUUID(), "Idli", decimal.RequireFromString("40"), 2)
		require.NoError(t, err)
		c, err := cart.RestoreCart(customerID, []cart.Item{item})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, c))

		mr.FastForward(2 * time.Minute)

		loaded, err := store.Get(ctx, customerID)
		require.NoError(t, err)
		assert.True(t, loaded.IsEmpty())
	})

	t.Run("should delete a cart", func(t *testing.T) {
		ctx := context.Background()
		mr, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Hour)

		customerID := kernel.NewUUID()
		item, err := cart.NewItem(kernel.NewUUID(), kernel.NewUUID(), "Idli", decimal.RequireFromString("40"), 2)
		require.NoError(t, err)
		c, err := cart.RestoreCart(customerID, []cart.Item{item})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, c))

		require.NoError(t, store.Delete(ctx, customerID))
		assert.False(t, mr.Exists("cart:"+customerID.String()))
	})

	t.Run("should hand a claimed cart out only once", func(t *testing.T) {
		ctx := context.Background()
		mr, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Hour)

		customerID := kernel.NewUUID()
		item, err := cart.NewItem(kernel.NewUUID(), kernel.NewUUID(), "Dosa", decimal.RequireFromString("90"), 1)
		require.NoError(t, err)
		c, err := cart.RestoreCart(customerID, []cart.Item{item})
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx, c))

		first, err := store.Claim(ctx, customerID)
		require.NoError(t, err)
		second, err := store.Claim(ctx, customerID)
		require.NoError(t, err)

		assert.Len(t, first.Items(), 1)
		assert.True(t, second.IsEmpty())
		assert.False(t, mr.Exists("cart:"+customerID.String()))
	})

	t.Run("should report a corrupt document", func(t *testing.T) {
		mr, client := setupTestRedis(t)
		store := redisadapter.NewCartStore(client, time.Hour)
		customerID := kernel.NewUUID()
		require.NoError(t, mr.Set("cart:"+customerID.String(), "{not json"))

		_, err := store.Get(context.Background(), customerID)

		assert.Error(t, err)
	})
}

func TestLocationStore(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("should return nil for an unknown courier", func(t *testing.T) {
		_, client := setupTestRedis(t)
		store := redisadapter.NewLocationStore(client, time.Minute)

		got, err := store.Get(context.Background(), kernel.NewUUID())

		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should keep the most recent sample by capture time", func(t *testing.T) {
		ctx := context.Background()
		_, client := setupTestRedis(t)
		store := redisadapter.NewLocationStore(client, time.Minute)
		courierID := kernel.NewUUID()

		stored, err := store.Save(ctx, courierID, sample(t, 12.95, 77.60, base.Add(time.Second)))
		require.NoError(t, err)
		assert.True(t, stored)

		stored, err = store.Save(ctx, courierID, sample(t, 12.90, 77.50, base))
		require.NoError(t, err)
		assert.False(t, stored, "an older sample is discarded")

		got, err := store.Get(ctx, courierID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.InDelta(t, 12.95, got.Point.Lat(), 1e-9)
		assert.InDelta(t, 77.60, got.Point.Lng(), 1e-9)
		assert.True(t, base.Add(time.Second).Equal(got.CapturedAt))

		stored, err = store.Save(ctx, courierID, sample(t, 12.97, 77.61, base.Add(2*time.Second)))
		require.NoError(t, err)
		assert.True(t, stored)
	})

	t.Run("should forget samples after the ttl", func(t *testing.T) {
		ctx := context.Background()
		mr, client := setupTestRedis(t)
		store := redisadapter.NewLocationStore(client, 30*time.Second)
		courierID := kernel.NewUUID()

		_, err := store.Save(ctx, courierID, sample(t, 12.95, 77.60, base))
		require.NoError(t, err)
		mr.FastForward(time.Minute)

		got, err := store.Get(ctx, courierID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("should read many couriers at once skipping unknown ones", func(t *testing.T) {
		ctx := context.Background()
		_, client := setupTestRedis(t)
		store := redisadapter.NewLocationStore(client, time.Minute)

		first, second, unknown := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
		_, err := store.Save(ctx, first, sample(t, 12.95, 77.60, base))
		require.NoError(t, err)
		_, err = store.Save(ctx, second, sample(t, 13.01, 77.70, base))
		require.NoError(t, err)

		got, err := store.GetMany(ctx, []kernel.UUID{first, second, unknown})

		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.InDelta(t, 13.01, got[second].Point.Lat(), 1e-9)
		assert.NotContains(t, got, unknown)
	})

	t.Run("should return an empty map for no couriers", func(t *testing.T) {
		_, client := setupTestRedis(t)
		store := redisadapter.NewLocationStore(client, time.Minute)

		got, err := store.GetMany(context.Background(), nil)

		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
