// Package ws is the real-time edge: one websocket connection per client, multiplexing any
// number of order subscriptions.
//
// A subscribe is authorized by reading the order snapshot as the caller, so only parties of
// the order get a stream. The snapshot is sent first and live events follow; events between
// a disconnect and the next subscribe are recovered from that snapshot, never replayed.
package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"foodtrack/internal/adapters/out/broadcast"
	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/kernel"

	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxFrameSize     = 4096
	sendBufferSize   = 64
	maxSubscriptions = 32
)

// Topics opens order-scoped event streams.
type Topics interface {
	Subscribe(orderID kernel.UUID) *broadcast.Subscription
}

// SnapshotReader reads an order on behalf of an actor and fails for non-parties.
type SnapshotReader interface {
	Handle(ctx context.Context, query queries.GetOrderSnapshotQuery) (*queries.OrderSnapshot, error)
}

// LocationPublisher accepts courier GPS samples.
type LocationPublisher interface {
	Handle(ctx context.Context, cmd commands.UpdateCourierLocationCommand) error
}

type Handler struct {
	upgrader  websocket.Upgrader
	topics    Topics
	snapshots SnapshotReader
	locations LocationPublisher
	logger    *slog.Logger

	// closing is cancelled by Close and ends every open connection.
	closing context.Context
	close   context.CancelFunc
}

func NewHandler(topics Topics, snapshots SnapshotReader, locations LocationPublisher, logger *slog.Logger) *Handler {
	closing, closeAll := context.WithCancel(context.Background())
	return &Handler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The handshake is authenticated by bearer token, not cookies.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		topics:    topics,
		snapshots: snapshots,
		locations: locations,
		logger:    logger.With("component", "ws"),
		closing:   closing,
		close:     closeAll,
	}
}

// Serve upgrades the request and runs the connection until either side closes it.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, actor kernel.Actor) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered the request.
		h.logger.Debug("websocket upgrade failed", "actor", actor.String(), "error", err)
		return nil
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(h.closing, cancel)
	defer stop()

	c := newConnection(conn, actor, h)
	h.logger.Info("websocket connected", "actor", actor.String())
	c.run(ctx)
	h.logger.Info("websocket disconnected", "actor", actor.String())
	return nil
}

// Close ends every open connection with a close frame and releases its subscriptions.
// http.Server.Shutdown does not reach hijacked connections, so the server registers this
// with RegisterOnShutdown. Connections accepted afterwards end at once.
func (h *Handler) Close() {
	h.close()
}
