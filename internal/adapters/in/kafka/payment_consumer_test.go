package kafka_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	paymentkafka "foodtrack/internal/adapters/in/kafka"
	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReader struct {
	mock.Mock
}

func (m *MockReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}

func (m *MockReader) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *MockReader) Close() error {
	return m.Called().Error(0)
}

type MockPaymentHandler struct {
	mock.Mock
}

func (m *MockPaymentHandler) Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (order.PaymentStatus, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(order.PaymentStatus), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// runOnce feeds msg to a consumer and stops it on the following fetch.
func runOnce(t *testing.T, handler *MockPaymentHandler, msg kafka.Message) *MockReader {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reader := new(MockReader)
	reader.On("FetchMessage", mock.Anything).Return(msg, nil).Once()
	reader.On("CommitMessages", mock.Anything, []kafka.Message{msg}).Return(nil).Once()
	reader.On("FetchMessage", mock.Anything).Run(func(mock.Arguments) { cancel() }).
		Return(kafka.Message{}, context.Canceled).Once()
	reader.On("Close").Return(nil).Once()

	consumer := paymentkafka.NewPaymentConsumer(reader, handler, discardLogger())
	require.NoError(t, consumer.Run(ctx))
	return reader
}

func TestPaymentConsumer_Run(t *testing.T) {
	t.Run("should apply a confirmed payment and commit it", func(t *testing.T) {
		orderID := kernel.NewUUID()
		handler := new(MockPaymentHandler)
		handler.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ConfirmPaymentCommand) bool {
			return cmd.OrderID() == orderID &&
				cmd.Outcome() == commands.PaymentOutcomeConfirmed &&
				cmd.Amount().Equal(decimal.RequireFromString("573"))
		})).Return(order.PaymentConfirmed, nil).Once()

		msg := kafka.Message{Value: []byte(`{"orderId":"` + orderID.String() + `","status":"confirmed","amount":"573.00"}`)}
		reader := runOnce(t, handler, msg)

		handler.AssertExpectations(t)
		reader.AssertExpectations(t)
	})

	t.Run("should commit and skip a malformed message", func(t *testing.T) {
		handler := new(MockPaymentHandler)

		reader := runOnce(t, handler, kafka.Message{Value: []byte(`{"orderId":"nope","status":"confirmed"}`)})

		handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
		reader.AssertExpectations(t)
	})

	t.Run("should not retry a callback the order rejects", func(t *testing.T) {
		handler := new(MockPaymentHandler)
		handler.On("Handle", mock.Anything, mock.Anything).
			Return(order.UnknownPaymentStatus, order.ErrNotPrepaid).Once()

		msg := kafka.Message{Value: []byte(`{"orderId":"` + kernel.NewUUID().String() + `","status":"failed","amount":"0"}`)}
		runOnce(t, handler, msg)

		handler.AssertNumberOfCalls(t, "Handle", 1)
	})

	t.Run("should retry a lost optimistic race", func(t *testing.T) {
		handler := new(MockPaymentHandler)
		conflict := errs.NewPreconditionFailedError("order", "x", "version 1")
		mock.InOrder(
			handler.On("Handle", mock.Anything, mock.Anything).Return(order.UnknownPaymentStatus, conflict).Once(),
			handler.On("Handle", mock.Anything, mock.Anything).Return(order.PaymentConfirmed, nil).Once(),
		)

		msg := kafka.Message{Value: []byte(`{"orderId":"` + kernel.NewUUID().String() + `","status":"confirmed","amount":"10"}`)}
		runOnce(t, handler, msg)

		handler.AssertNumberOfCalls(t, "Handle", 2)
	})

	t.Run("should stop with the reader error", func(t *testing.T) {
		readErr := errors.New("broker unreachable")
		reader := new(MockReader)
		reader.On("FetchMessage", mock.Anything).Return(kafka.Message{}, readErr).Once()
		reader.On("Close").Return(nil).Once()

		err := paymentkafka.NewPaymentConsumer(reader, new(MockPaymentHandler), discardLogger()).Run(context.Background())

		assert.ErrorIs(t, err, readErr)
	})
}
