package ws

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	httpin "foodtrack/internal/adapters/in/http"
	"foodtrack/internal/adapters/out/broadcast"
	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/pkg/errs"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var (
	ErrUnknownAction        = errs.NewValueIsInvalidError("action")
	ErrTooManySubscriptions = errs.NewValueIsOutOfRangeError("subscriptions", maxSubscriptions+1, 0, maxSubscriptions)
	ErrLocationIsRequired   = errs.NewValueIsRequiredError("lat/lng")
)

type subscription struct {
	sub    *broadcast.Subscription
	cancel context.CancelFunc
}

// connection owns one websocket. Only writeLoop writes to the socket.
type connection struct {
	conn    *websocket.Conn
	actor   kernel.Actor
	handler *Handler
	send    chan ServerFrame

	mu     sync.Mutex
	subs   map[kernel.UUID]*subscription
	pumps  sync.WaitGroup
	closed bool
}

func newConnection(conn *websocket.Conn, actor kernel.Actor, handler *Handler) *connection {
	return &connection{
		conn:    conn,
		actor:   actor,
		handler: handler,
		send:    make(chan ServerFrame, sendBufferSize),
		subs:    make(map[kernel.UUID]*subscription),
	}
}

func (c *connection) run(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.writeLoop(ctx) })
	g.Go(func() error { return c.readLoop(ctx) })
	g.Go(func() error {
		// Unblocks the reader once either loop is done.
		<-ctx.Done()
		return c.conn.Close()
	})

	if err := g.Wait(); err != nil && !isClosure(err) {
		c.handler.logger.Debug("websocket closed with error", "actor", c.actor.String(), "error", err)
	}
	c.closeAll()
}

func (c *connection) readLoop(ctx context.Context) error {
	c.conn.SetReadLimit(maxFrameSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}

		var frame ClientFrame
		if err = json.Unmarshal(data, &frame); err != nil {
			c.enqueue(ctx, errorFrame(nil, errs.NewValueIsInvalidErrorWithCause("frame", err)))
			continue
		}
		c.dispatch(ctx, frame)
	}
}

func (c *connection) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			code := websocket.CloseNormalClosure
			if c.handler.closing.Err() != nil {
				code = websocket.CloseGoingAway
			}
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(code, ""), time.Now().Add(writeWait))
			return nil
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(frame); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func (c *connection) dispatch(ctx context.Context, frame ClientFrame) {
	orderID, err := kernel.UUIDFromString(frame.OrderID)
	if err != nil {
		c.enqueue(ctx, errorFrame(nil, err))
		return
	}

	switch frame.Action {
	case ActionSubscribe:
		err = c.subscribe(ctx, orderID)
	case ActionUnsubscribe:
		c.unsubscribe(orderID)
	case ActionLocation:
		err = c.publishLocation(ctx, orderID, frame)
	default:
		err = ErrUnknownAction
	}

	if err != nil {
		if errs.IsSecurityRelevant(err) {
			c.handler.logger.Warn("websocket request denied",
				"actor", c.actor.String(),
				"action", frame.Action,
				"order_id", orderID.String(),
				"error", err)
		}
		c.enqueue(ctx, errorFrame(&orderID, err))
	}
}

// subscribe opens the topic before reading the snapshot, so no event committed after the
// snapshot can be missed. Clients may see an event the snapshot already reflects.
func (c *connection) subscribe(ctx context.Context, orderID kernel.UUID) error {
	query, err := queries.NewGetOrderSnapshotQuery(c.actor, orderID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	_, exists := c.subs[orderID]
	full := len(c.subs) >= maxSubscriptions
	c.mu.Unlock()

	if !exists && full {
		return ErrTooManySubscriptions
	}

	var sub *broadcast.Subscription
	if !exists {
		sub = c.handler.topics.Subscribe(orderID)
	}

	snapshot, err := c.handler.snapshots.Handle(ctx, query)
	if err != nil {
		if sub != nil {
			sub.Close()
		}
		return err
	}

	view := httpin.NewOrderViewFromSnapshot(snapshot)
	c.enqueue(ctx, snapshotFrame(view))

	if snapshot.Status.IsTerminal() {
		// A finished order emits nothing more.
		if sub != nil {
			sub.Close()
		} else {
			c.unsubscribe(orderID)
		}
		c.enqueue(ctx, endFrame(orderID, snapshot.Status.String()))
		return nil
	}

	if sub != nil {
		c.attach(ctx, orderID, sub)
	}
	return nil
}

func (c *connection) attach(ctx context.Context, orderID kernel.UUID, sub *broadcast.Subscription) {
	subCtx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		sub.Close()
		return
	}
	c.subs[orderID] = &subscription{sub: sub, cancel: cancel}
	c.pumps.Add(1)
	c.mu.Unlock()

	go c.pump(subCtx, orderID, sub)
}

// pump forwards one topic to the socket. A topic closed by the hub means the order ended.
func (c *connection) pump(ctx context.Context, orderID kernel.UUID, sub *broadcast.Subscription) {
	defer c.pumps.Done()

	lastStatus := ""
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				if ctx.Err() != nil {
					return
				}
				c.forget(orderID, sub)
				c.enqueue(ctx, endFrame(orderID, lastStatus))
				return
			}

			frame, carried := eventFrame(event)
			if !carried {
				continue
			}
			if p, isStatus := frame.Payload.(StatusPayload); isStatus {
				lastStatus = p.To
			}
			c.enqueue(ctx, frame)
		}
	}
}

func (c *connection) unsubscribe(orderID kernel.UUID) {
	c.mu.Lock()
	s, ok := c.subs[orderID]
	delete(c.subs, orderID)
	c.mu.Unlock()

	if ok {
		s.cancel()
		s.sub.Close()
	}
}

// forget drops the bookkeeping of a topic the hub already closed.
func (c *connection) forget(orderID kernel.UUID, sub *broadcast.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s, ok := c.subs[orderID]; ok && s.sub == sub {
		s.cancel()
		delete(c.subs, orderID)
	}
}

func (c *connection) publishLocation(ctx context.Context, orderID kernel.UUID, frame ClientFrame) error {
	if c.actor.Role != kernel.RoleCourier {
		return errs.NewUnauthorizedPublisherError(c.actor.String(), orderID.String())
	}
	if frame.Lat == nil || frame.Lng == nil {
		return ErrLocationIsRequired
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(c.actor.ID, orderID, *frame.Lat, *frame.Lng, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.handler.locations.Handle(ctx, cmd)
}

// enqueue blocks while the socket is slow. Backpressure reaches the hub, which drops events
// for this subscriber instead of stalling publishers.
func (c *connection) enqueue(ctx context.Context, frame ServerFrame) {
	select {
	case c.send <- frame:
	case <-ctx.Done():
	}
}

func (c *connection) closeAll() {
	c.mu.Lock()
	c.closed = true
	subs := c.subs
	c.subs = make(map[kernel.UUID]*subscription)
	c.mu.Unlock()

	for _, s := range subs {
		s.cancel()
		s.sub.Close()
	}
	c.pumps.Wait()
}

func isClosure(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, context.Canceled)
}
