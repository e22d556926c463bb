package commands_test

import (
	"errors"
	"testing"
	"time"

	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCourierCommandHandler_Handle(t *testing.T) {
	t.Run("should add an offline courier", func(t *testing.T) {
		ctx := t.Context()
		cmd, err := commands.NewCreateCourierCommand("Ravi")
		require.NoError(t, err)

		courierRepo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("CourierRepository").Return(courierRepo).Once(),
			courierRepo.On("Add", ctx, mock.MatchedBy(func(c *courier.Courier) bool {
				return c.ID() == cmd.CourierID() && c.Name() == "Ravi" && !c.IsOnline()
			})).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)

		handler := commands.NewCreateCourierCommandHandler(factory)
		require.NoError(t, handler.Handle(ctx, cmd))

		courierRepo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("should require a name", func(t *testing.T) {
		_, err := commands.NewCreateCourierCommand("  ")
		require.ErrorIs(t, err, commands.ErrNameIsRequired)
	})

	t.Run("should trim the name and mint a courier id", func(t *testing.T) {
		cmd, err := commands.NewCreateCourierCommand("  Ravi K  ")
		require.NoError(t, err)

		assert.Equal(t, "Ravi K", cmd.Name())
		require.NoError(t, cmd.CourierID().Validate())
	})

	t.Run("should not open a transaction for a zero command", func(t *testing.T) {
		factory := new(MockCourierUoWFactory)
		handler := commands.NewCreateCourierCommandHandler(factory)

		err := handler.Handle(t.Context(), commands.CreateCourierCommand{})

		require.ErrorIs(t, err, commands.ErrCreateCourierCommandIsNotConstructed)
		factory.AssertNotCalled(t, "Create")
	})

	t.Run("should return add error", func(t *testing.T) {
		ctx := t.Context()
		cmd, err := commands.NewCreateCourierCommand("Ravi")
		require.NoError(t, err)

		courierRepo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("CourierRepository").Return(courierRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		courierRepo.On("Add", ctx, mock.Anything).Return(errors.New("database error")).Once()

		handler := commands.NewCreateCourierCommandHandler(factory)

		require.EqualError(t, handler.Handle(ctx, cmd), "database error")
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestSetCourierAvailabilityCommandHandler_Handle(t *testing.T) {
	t.Run("should bring a courier online", func(t *testing.T) {
		ctx := t.Context()
		c, err := courier.NewCourier(kernel.NewUUID(), "Ravi")
		require.NoError(t, err)

		courierRepo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("CourierRepository").Return(courierRepo).Once(),
			courierRepo.On("Get", ctx, c.ID()).Return(c, nil).Once(),
			courierRepo.On("Update", ctx, c).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)

		cmd, err := commands.NewSetCourierAvailabilityCommand(c.ID(), true)
		require.NoError(t, err)

		require.NoError(t, commands.NewSetCourierAvailabilityCommandHandler(factory).Handle(ctx, cmd))
		assert.True(t, c.IsAvailable())
		uow.AssertExpectations(t)
	})

	t.Run("should refuse going offline mid-delivery", func(t *testing.T) {
		ctx := t.Context()
		c := createCarryingCourier(t, createOrder(t, order.CashOnDelivery))

		courierRepo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("CourierRepository").Return(courierRepo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		courierRepo.On("Get", ctx, c.ID()).Return(c, nil).Once()

		cmd, err := commands.NewSetCourierAvailabilityCommand(c.ID(), false)
		require.NoError(t, err)

		err = commands.NewSetCourierAvailabilityCommandHandler(factory).Handle(ctx, cmd)

		require.ErrorIs(t, err, courier.ErrCourierHasActiveOrder)
		assert.True(t, c.IsOnline())
		courierRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUpdateCourierLocationCommandHandler_Handle(t *testing.T) {
	mockCourierLookup := func(t *testing.T, c *courier.Courier) *MockCourierUoWFactory {
		t.Helper()
		ctx := t.Context()

		courierRepo := new(MockCourierRepository)
		uow := new(MockUoW)
		factory := new(MockCourierUoWFactory)

		mock.InOrder(
			factory.On("Create").Return(uow).Once(),
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("CourierRepository").Return(courierRepo).Once(),
			courierRepo.On("Get", ctx, c.ID()).Return(c, nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)
		return factory
	}

	t.Run("should store and relay the carrier's sample", func(t *testing.T) {
		ctx := t.Context()
		o := createOrder(t, order.CashOnDelivery)
		c := createCarryingCourier(t, o)
		factory := mockCourierLookup(t, c)

		cmd, err := commands.NewUpdateCourierLocationCommand(c.ID(), o.ID(), 12.97, 77.59, time.Now().UTC())
		require.NoError(t, err)

		locations := new(MockLocationStore)
		publisher := new(MockEventPublisher)
		mock.InOrder(
			locations.On("Save", ctx, c.ID(), cmd.Sample()).Return(true, nil).Once(),
			publisher.On("Publish", ctx, []kernel.DomainEvent{order.CourierLocationEvent{
				OrderID:   o.ID(),
				CourierID: c.ID(),
				Sample:    cmd.Sample(),
			}}).Return(nil).Once(),
		)

		handler := commands.NewUpdateCourierLocationCommandHandler(factory, locations, publisher)

		require.NoError(t, handler.Handle(ctx, cmd))
		locations.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("should drop a stale sample silently", func(t *testing.T) {
		ctx := t.Context()
		o := createOrder(t, order.CashOnDelivery)
		c := createCarryingCourier(t, o)
		factory := mockCourierLookup(t, c)

		cmd, err := commands.NewUpdateCourierLocationCommand(c.ID(), o.ID(), 12.97, 77.59, time.Now().UTC())
		require.NoError(t, err)

		locations := new(MockLocationStore)
		locations.On("Save", ctx, c.ID(), cmd.Sample()).Return(false, nil).Once()
		publisher := new(MockEventPublisher)

		handler := commands.NewUpdateCourierLocationCommandHandler(factory, locations, publisher)

		require.NoError(t, handler.Handle(ctx, cmd))
		publisher.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
	})

	t.Run("should reject a courier that does not carry the order", func(t *testing.T) {
		ctx := t.Context()
		c := createCarryingCourier(t, createOrder(t, order.CashOnDelivery))
		factory := mockCourierLookup(t, c)
		otherOrderID := kernel.NewUUID()

		cmd, err := commands.NewUpdateCourierLocationCommand(c.ID(), otherOrderID, 12.97, 77.59, time.Now().UTC())
		require.NoError(t, err)

		locations := new(MockLocationStore)
		handler := commands.NewUpdateCourierLocationCommandHandler(factory, locations, new(MockEventPublisher))
		err = handler.Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrUnauthorizedPublisher)
		locations.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject coordinates out of range", func(t *testing.T) {
		_, err := commands.NewUpdateCourierLocationCommand(kernel.NewUUID(), kernel.NewUUID(), 91, 0, time.Now())
		require.Error(t, err)
	})
}
