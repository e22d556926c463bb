package queries_test

import (
	"testing"

	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetAllCouriersQuery_Valid(t *testing.T) {
	query := queries.NewGetAllCouriersQuery()
	require.NoError(t, query.Validate())
}

func TestGetAllCouriersQuery_NotConstructedViaConstructor(t *testing.T) {
	query := queries.GetAllCouriersQuery{}
	err := query.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, queries.ErrGetAllCouriersQueryIsNotConstructed)
}

func TestNewGetActiveOrdersQuery(t *testing.T) {
	t.Run("should accept a restaurant actor", func(t *testing.T) {
		restaurantID := kernel.NewUUID()
		query, err := queries.NewGetActiveOrdersQuery(kernel.Actor{ID: restaurantID, Role: kernel.RoleRestaurant})
		require.NoError(t, err)
		require.NoError(t, query.Validate())
		assert.Equal(t, restaurantID, query.RestaurantID())
	})

	t.Run("should deny other roles", func(t *testing.T) {
		_, err := queries.NewGetActiveOrdersQuery(kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer})
		assert.ErrorIs(t, err, errs.ErrAccessDenied)
	})

	t.Run("should reject a zero value", func(t *testing.T) {
		assert.ErrorIs(t, queries.GetActiveOrdersQuery{}.Validate(), queries.ErrGetActiveOrdersQueryIsNotConstructed)
	})
}

func TestNewGetOrderSnapshotQuery(t *testing.T) {
	t.Run("should require an order id", func(t *testing.T) {
		_, err := queries.NewGetOrderSnapshotQuery(kernel.SystemActor(), kernel.UUID{})
		assert.Error(t, err)
	})

	t.Run("should reject a zero value", func(t *testing.T) {
		assert.ErrorIs(t, queries.GetOrderSnapshotQuery{}.Validate(), queries.ErrGetOrderSnapshotQueryIsNotConstructed)
	})
}

func TestNewGetCourierLocationQuery(t *testing.T) {
	t.Run("should require an order id", func(t *testing.T) {
		_, err := queries.NewGetCourierLocationQuery(kernel.SystemActor(), kernel.UUID{})
		assert.Error(t, err)
	})

	t.Run("should reject a zero value", func(t *testing.T) {
		assert.ErrorIs(t, queries.GetCourierLocationQuery{}.Validate(), queries.ErrGetCourierLocationQueryIsNotConstructed)
	})
}

func TestNewGetCartQuery(t *testing.T) {
	t.Run("should require a customer id", func(t *testing.T) {
		_, err := queries.NewGetCartQuery(kernel.UUID{})
		assert.Error(t, err)
	})

	t.Run("should reject a zero value", func(t *testing.T) {
		assert.ErrorIs(t, queries.GetCartQuery{}.Validate(), queries.ErrGetCartQueryIsNotConstructed)
	})
}
