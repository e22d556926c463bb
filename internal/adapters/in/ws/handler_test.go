package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodtrack/internal/adapters/in/ws"
	"foodtrack/internal/adapters/out/broadcast"
	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSnapshotReader struct {
	mock.Mock
}

func (m *MockSnapshotReader) Handle(ctx context.Context, query queries.GetOrderSnapshotQuery) (*queries.OrderSnapshot, error) {
	args := m.Called(ctx, query)
	snapshot, _ := args.Get(0).(*queries.OrderSnapshot)
	return snapshot, args.Error(1)
}

type MockLocationPublisher struct {
	mock.Mock
}

func (m *MockLocationPublisher) Handle(ctx context.Context, cmd commands.UpdateCourierLocationCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type receivedFrame struct {
	Type    string          `json:"type"`
	OrderID string          `json:"orderId"`
	Payload json.RawMessage `json:"payload"`
}

type streamFixture struct {
	hub       *broadcast.Hub
	handler   *ws.Handler
	snapshots *MockSnapshotReader
	locations *MockLocationPublisher
	server    *httptest.Server
}

func newStreamFixture(t *testing.T, actor kernel.Actor) *streamFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub, err := broadcast.NewHub(8, logger)
	require.NoError(t, err)

	f := &streamFixture{
		hub:       hub,
		snapshots: &MockSnapshotReader{},
		locations: &MockLocationPublisher{},
	}
	f.handler = ws.NewHandler(hub, f.snapshots, f.locations, logger)
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = f.handler.Serve(w, r, actor)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *streamFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(f.server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame ws.ClientFrame) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
}

func receive(t *testing.T, conn *websocket.Conn) receivedFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame receivedFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func snapshotOf(orderID kernel.UUID, status order.Status) *queries.OrderSnapshot {
	return &queries.OrderSnapshot{
		ID:            orderID,
		CustomerID:    kernel.NewUUID(),
		RestaurantID:  kernel.NewUUID(),
		Status:        status,
		PaymentMethod: order.CashOnDelivery,
		PaymentStatus: order.PaymentPending,
		CreatedAt:     time.Now().UTC(),
		Version:       1,
	}
}

func statusEvent(orderID kernel.UUID, from, to order.Status) order.StatusChangedEvent {
	return order.StatusChangedEvent{
		OrderID:   orderID,
		From:      from,
		To:        to,
		ActorRole: kernel.RoleRestaurant,
		At:        time.Now().UTC(),
	}
}

func TestSubscribe(t *testing.T) {
	t.Run("should send the snapshot and then live events", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderSnapshotQuery) bool {
			return q.Actor() == customer && q.OrderID().IsEqual(orderID)
		})).Return(snapshotOf(orderID, order.Placed), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})

		snapshot := receive(t, conn)
		assert.Equal(t, ws.FrameSnapshot, snapshot.Type)
		assert.Equal(t, orderID.String(), snapshot.OrderID)
		require.Equal(t, 1, f.hub.SubscriberCount(orderID))

		require.NoError(t, f.hub.Publish(context.Background(), statusEvent(orderID, order.Placed, order.Accepted)))

		status := receive(t, conn)
		assert.Equal(t, ws.FrameStatus, status.Type)
		var payload ws.StatusPayload
		require.NoError(t, json.Unmarshal(status.Payload, &payload))
		assert.Equal(t, "placed", payload.From)
		assert.Equal(t, "accepted", payload.To)
	})

	t.Run("should relay courier locations", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.PickedUp), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})
		receive(t, conn)
		require.Equal(t, 1, f.hub.SubscriberCount(orderID))

		point, err := kernel.NewGeoPoint(12.95, 77.6)
		require.NoError(t, err)
		require.NoError(t, f.hub.Publish(context.Background(), order.CourierLocationEvent{
			OrderID:   orderID,
			CourierID: kernel.NewUUID(),
			Sample:    kernel.LocationSample{Point: point, CapturedAt: time.Now().UTC()},
		}))

		location := receive(t, conn)
		assert.Equal(t, ws.FrameLocation, location.Type)
		var payload ws.LocationPayload
		require.NoError(t, json.Unmarshal(location.Payload, &payload))
		assert.InDelta(t, 12.95, payload.Lat, 1e-9)
	})

	t.Run("should end the stream after a terminal status", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.PickedUp), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})
		receive(t, conn)
		require.Equal(t, 1, f.hub.SubscriberCount(orderID))

		require.NoError(t, f.hub.Publish(context.Background(), statusEvent(orderID, order.PickedUp, order.Delivered)))

		assert.Equal(t, ws.FrameStatus, receive(t, conn).Type)
		end := receive(t, conn)
		assert.Equal(t, ws.FrameEnd, end.Type)
		assert.JSONEq(t, `{"status":"delivered"}`, string(end.Payload))
	})

	t.Run("should end at once when the order is already finished", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.Cancelled), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})

		assert.Equal(t, ws.FrameSnapshot, receive(t, conn).Type)
		assert.Equal(t, ws.FrameEnd, receive(t, conn).Type)
		assert.Equal(t, 0, f.hub.SubscriberCount(orderID))
	})

	t.Run("should refuse a caller that is not a party", func(t *testing.T) {
		stranger := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, stranger)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).
			Return(nil, errs.NewAccessDeniedError(stranger.String(), "order "+orderID.String()))

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})

		frame := receive(t, conn)
		assert.Equal(t, ws.FrameError, frame.Type)
		var payload ws.ErrorPayload
		require.NoError(t, json.Unmarshal(frame.Payload, &payload))
		assert.Equal(t, string(errs.KindForbidden), payload.Kind)
		assert.Equal(t, 0, f.hub.SubscriberCount(orderID))
	})

	t.Run("should detach on unsubscribe without touching the order", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.Placed), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})
		receive(t, conn)
		require.Equal(t, 1, f.hub.SubscriberCount(orderID))

		send(t, conn, ws.ClientFrame{Action: ws.ActionUnsubscribe, OrderID: orderID.String()})

		assert.Eventually(t, func() bool {
			return f.hub.SubscriberCount(orderID) == 0
		}, 2*time.Second, 10*time.Millisecond)
		f.snapshots.AssertNumberOfCalls(t, "Handle", 1)
	})

	t.Run("should release subscriptions when the client disconnects", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.Placed), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})
		receive(t, conn)
		require.NoError(t, conn.Close())

		assert.Eventually(t, func() bool {
			return f.hub.SubscriberCount(orderID) == 0
		}, 2*time.Second, 10*time.Millisecond)
	})

	t.Run("should end open connections when the handler closes", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)
		orderID := kernel.NewUUID()
		f.snapshots.On("Handle", mock.Anything, mock.Anything).Return(snapshotOf(orderID, order.Placed), nil)

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: ws.ActionSubscribe, OrderID: orderID.String()})
		receive(t, conn)
		require.Equal(t, 1, f.hub.SubscriberCount(orderID))

		f.handler.Close()

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, _, err := conn.ReadMessage()
		require.Error(t, err)
		var netErr interface{ Timeout() bool }
		if errors.As(err, &netErr) {
			assert.False(t, netErr.Timeout(), "connection should be closed by the server, not time out")
		}
		assert.Eventually(t, func() bool {
			return f.hub.SubscriberCount(orderID) == 0
		}, 2*time.Second, 10*time.Millisecond)
	})
}

func TestClientFrames(t *testing.T) {
	t.Run("should publish a courier location", func(t *testing.T) {
		courier := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCourier}
		f := newStreamFixture(t, courier)
		orderID := kernel.NewUUID()
		published := make(chan commands.UpdateCourierLocationCommand, 1)
		f.locations.On("Handle", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			published <- args.Get(1).(commands.UpdateCourierLocationCommand)
		})

		conn := f.dial(t)
		lat, lng := 12.95, 77.6
		send(t, conn, ws.ClientFrame{Action: ws.ActionLocation, OrderID: orderID.String(), Lat: &lat, Lng: &lng})

		select {
		case cmd := <-published:
			assert.True(t, cmd.CourierID().IsEqual(courier.ID))
			assert.True(t, cmd.OrderID().IsEqual(orderID))
			assert.InDelta(t, lat, cmd.Sample().Point.Lat(), 1e-9)
		case <-time.After(2 * time.Second):
			t.Fatal("location was not published")
		}
	})

	t.Run("should refuse locations from a customer", func(t *testing.T) {
		customer := kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer}
		f := newStreamFixture(t, customer)

		conn := f.dial(t)
		lat, lng := 12.95, 77.6
		send(t, conn, ws.ClientFrame{Action: ws.ActionLocation, OrderID: kernel.NewUUID().String(), Lat: &lat, Lng: &lng})

		frame := receive(t, conn)
		assert.Equal(t, ws.FrameError, frame.Type)
		var payload ws.ErrorPayload
		require.NoError(t, json.Unmarshal(frame.Payload, &payload))
		assert.Equal(t, string(errs.KindUnauthorizedPublisher), payload.Kind)
		f.locations.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("should answer a malformed frame with an error", func(t *testing.T) {
		f := newStreamFixture(t, kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer})

		conn := f.dial(t)
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

		frame := receive(t, conn)
		assert.Equal(t, ws.FrameError, frame.Type)
		var payload ws.ErrorPayload
		require.NoError(t, json.Unmarshal(frame.Payload, &payload))
		assert.Equal(t, string(errs.KindValidation), payload.Kind)
	})

	t.Run("should reject an unknown action", func(t *testing.T) {
		f := newStreamFixture(t, kernel.Actor{ID: kernel.NewUUID(), Role: kernel.RoleCustomer})

		conn := f.dial(t)
		send(t, conn, ws.ClientFrame{Action: "dance", OrderID: kernel.NewUUID().String()})

		frame := receive(t, conn)
		assert.Equal(t, ws.FrameError, frame.Type)
	})
}
