package queries_test

import (
	"context"
	"testing"
	"time"

	"foodtrack/internal/adapters/out/postgres/courierrepo"
	"foodtrack/internal/adapters/out/postgres/orderrepo"
	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

type MockLocationStore struct {
	mock.Mock
}

func (m *MockLocationStore) Save(ctx context.Context, courierID kernel.UUID, sample kernel.LocationSample) (bool, error) {
	args := m.Called(ctx, courierID, sample)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocationStore) Get(ctx context.Context, courierID kernel.UUID) (*kernel.LocationSample, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*kernel.LocationSample), args.Error(1)
}

func (m *MockLocationStore) GetMany(
	ctx context.Context,
	courierIDs []kernel.UUID,
) (map[kernel.UUID]kernel.LocationSample, error) {
	args := m.Called(ctx, courierIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[kernel.UUID]kernel.LocationSample), args.Error(1)
}

type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) Get(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Claim(ctx context.Context, customerID kernel.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCartRepository) Delete(ctx context.Context, customerID kernel.UUID) error {
	return m.Called(ctx, customerID).Error(0)
}

// readStore is an in-memory database with the order and courier tables, filled through the
// real repositories so the queries read exactly what the write side stores.
type readStore struct {
	db       *gorm.DB
	orders   *orderrepo.GormOrderRepository
	couriers *courierrepo.GormCourierRepository
}

func newReadStore(t *testing.T) readStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.HistoryDTO{},
		&courierrepo.CourierDTO{},
	))

	return readStore{
		db:       db,
		orders:   orderrepo.NewGormOrderRepository(db, noopTracker{}),
		couriers: courierrepo.NewGormCourierRepository(db, noopTracker{}),
	}
}

func (s readStore) addOrder(t *testing.T, o *order.Order) *order.Order {
	t.Helper()
	require.NoError(t, s.orders.Add(context.Background(), o))
	return o
}

func (s readStore) update(t *testing.T, o *order.Order) {
	t.Helper()
	require.NoError(t, s.orders.Update(context.Background(), o))
}

func (s readStore) addCourier(t *testing.T, name string, online bool) *courier.Courier {
	t.Helper()

	c, err := courier.NewCourier(kernel.NewUUID(), name)
	require.NoError(t, err)
	require.NoError(t, c.SetOnline(online))
	require.NoError(t, s.couriers.Add(context.Background(), c))
	return c
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestOrder(t *testing.T, restaurantID kernel.UUID, now time.Time) *order.Order {
	t.Helper()

	breakdown, err := fare.NewBreakdown(fare.Components{
		Subtotal:     d("550"),
		PackagingFee: d("12"),
		PlatformFee:  d("11"),
	})
	require.NoError(t, err)

	pickup, err := kernel.NewGeoPoint(12.9716, 77.5946)
	require.NoError(t, err)
	dropoff, err := kernel.NewGeoPoint(12.9352, 77.6245)
	require.NoError(t, err)

	o, err := order.NewOrder(order.Draft{
		ID:           kernel.NewUUID(),
		CustomerID:   kernel.NewUUID(),
		RestaurantID: restaurantID,
		Items: []order.Item{
			{DishID: kernel.NewUUID(), Name: "Biryani", Line: fare.Line{UnitPrice: d("200"), Quantity: 2}},
			{DishID: kernel.NewUUID(), Name: "Raita", Line: fare.Line{UnitPrice: d("150"), Quantity: 1}},
		},
		Fare:          breakdown,
		PaymentMethod: order.CashOnDelivery,
		Pickup:        pickup,
		Dropoff:       order.Address{Line: "12 MG Road", Point: dropoff},
	}, now)
	require.NoError(t, err)
	o.PullDomainEvents()
	return o
}
