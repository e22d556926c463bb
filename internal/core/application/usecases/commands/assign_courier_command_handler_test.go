package commands_test

import (
	"errors"
	"testing"
	"time"

	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/domain/model/courier"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/core/domain/services"
	"foodtrack/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newAssignCommand(t *testing.T, orderID kernel.UUID) commands.AssignCourierCommand {
	t.Helper()
	cmd, err := commands.NewAssignCourierCommand(orderID)
	require.NoError(t, err)
	return cmd
}

func TestAssignCourierCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	o := createOrder(t, order.CashOnDelivery)
	far := createOnlineCourier(t)
	near := createOnlineCourier(t)
	available := []*courier.Courier{far, near}
	samples := map[kernel.UUID]kernel.LocationSample{
		far.ID():  {Point: point(t, 13.10, 77.70), CapturedAt: time.Now().UTC()},
		near.ID(): {Point: point(t, 12.9720, 77.5950), CapturedAt: time.Now().UTC()},
	}

	orderRepo := new(MockOrderRepository)
	courierRepo := new(MockCourierRepository)
	locations := new(MockLocationStore)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		courierRepo.On("GetAllAvailable", ctx).Return(available, nil).Once(),
		locations.On("GetMany", ctx, []kernel.UUID{far.ID(), near.ID()}).Return(samples, nil).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		courierRepo.On("Update", ctx, near).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locations, services.NewOrderDispatcher(time.Minute))
	courierID, err := handler.Handle(ctx, newAssignCommand(t, o.ID()))

	require.NoError(t, err)
	assert.Equal(t, near.ID(), courierID)
	require.NotNil(t, o.Courier())
	assert.Equal(t, near.ID(), *o.Courier())
	assert.Equal(t, order.Accepted, o.Status())
	assert.True(t, near.IsCarrying(o.ID()))
	assert.True(t, far.IsAvailable())

	orderRepo.AssertExpectations(t)
	courierRepo.AssertExpectations(t)
	locations.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestAssignCourierCommandHandler_Handle_NoCourierAvailable(t *testing.T) {
	ctx := t.Context()
	o := createOrder(t, order.CashOnDelivery)

	orderRepo := new(MockOrderRepository)
	courierRepo := new(MockCourierRepository)
	locations := new(MockLocationStore)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		courierRepo.On("GetAllAvailable", ctx).Return([]*courier.Courier{}, nil).Once(),
		locations.On("GetMany", ctx, []kernel.UUID{}).Return(map[kernel.UUID]kernel.LocationSample{}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locations, services.NewOrderDispatcher(time.Minute))
	_, err := handler.Handle(ctx, newAssignCommand(t, o.ID()))

	require.ErrorIs(t, err, errs.ErrNoCourierAvailable)
	assert.Nil(t, o.Courier())
	orderRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAssignCourierCommandHandler_Handle_PrepaidAwaitingPayment(t *testing.T) {
	ctx := t.Context()
	o := createOrder(t, order.Prepaid)

	orderRepo := new(MockOrderRepository)
	courierRepo := new(MockCourierRepository)
	locations := new(MockLocationStore)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("CourierRepository").Return(courierRepo).Once()
	uow.On("OrderRepository").Return(orderRepo).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	courierRepo.On("GetAllAvailable", ctx).Return([]*courier.Courier{createOnlineCourier(t)}, nil).Once()
	locations.On("GetMany", ctx, mock.Anything).Return(map[kernel.UUID]kernel.LocationSample{}, nil).Once()

	handler := commands.NewAssignCourierCommandHandler(factory, locations, services.NewOrderDispatcher(time.Minute))
	_, err := handler.Handle(ctx, newAssignCommand(t, o.ID()))

	require.ErrorIs(t, err, order.ErrOrderNotDispatchable)
	courierRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssignCourierCommandHandler_Handle_CourierUpdateConflict(t *testing.T) {
	ctx := t.Context()
	o := createOrder(t, order.CashOnDelivery)
	c := createOnlineCourier(t)
	conflict := errs.NewPreconditionFailedError("courier", c.ID().String(), "version 1")

	orderRepo := new(MockOrderRepository)
	courierRepo := new(MockCourierRepository)
	locations := new(MockLocationStore)
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("CourierRepository").Return(courierRepo).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
		courierRepo.On("GetAllAvailable", ctx).Return([]*courier.Courier{c}, nil).Once(),
		locations.On("GetMany", ctx, []kernel.UUID{c.ID()}).Return(map[kernel.UUID]kernel.LocationSample{}, nil).Once(),
		orderRepo.On("Update", ctx, o).Return(nil).Once(),
		courierRepo.On("Update", ctx, c).Return(conflict).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, locations, services.NewOrderDispatcher(time.Minute))
	_, err := handler.Handle(ctx, newAssignCommand(t, o.ID()))

	require.ErrorIs(t, err, errs.ErrPreconditionFailed)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestAssignCourierCommandHandler_Handle_BeginError(t *testing.T) {
	ctx := t.Context()
	uow := new(MockUoW)
	factory := new(MockUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(errors.New("begin error")).Once(),
	)

	handler := commands.NewAssignCourierCommandHandler(factory, new(MockLocationStore), services.NewOrderDispatcher(time.Minute))
	_, err := handler.Handle(ctx, newAssignCommand(t, kernel.NewUUID()))

	require.EqualError(t, err, "begin error")
}

func TestAssignCourierCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockUoWFactory)
	handler := commands.NewAssignCourierCommandHandler(factory, new(MockLocationStore), services.NewOrderDispatcher(time.Minute))

	_, err := handler.Handle(t.Context(), commands.AssignCourierCommand{})

	require.ErrorIs(t, err, commands.ErrAssignCourierCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
