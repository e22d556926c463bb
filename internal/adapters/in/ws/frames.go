package ws

import (
	"time"

	httpin "foodtrack/internal/adapters/in/http"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"
)

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionLocation    = "location"
)

const (
	FrameStatus   = "status"
	FrameLocation = "location"
	FrameSnapshot = "snapshot"
	FrameError    = "error"
	FrameEnd      = "end"
)

// ClientFrame is what a client sends. Lat and Lng are only read for the location action.
type ClientFrame struct {
	Action  string   `json:"action"`
	OrderID string   `json:"orderId"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// ServerFrame is what the server pushes. OrderID is empty for errors not tied to an order.
type ServerFrame struct {
	Type    string       `json:"type"`
	OrderID *kernel.UUID `json:"orderId,omitempty"`
	Payload any          `json:"payload,omitempty"`
}

type StatusPayload struct {
	From      string       `json:"from,omitempty"`
	To        string       `json:"to"`
	Reason    string       `json:"reason,omitempty"`
	ActorRole string       `json:"actorRole,omitempty"`
	CourierID *kernel.UUID `json:"courierId"`
	At        time.Time    `json:"at"`
}

type LocationPayload struct {
	CourierID  kernel.UUID `json:"courierId"`
	Lat        float64     `json:"lat"`
	Lng        float64     `json:"lng"`
	CapturedAt time.Time   `json:"capturedAt"`
}

type ErrorPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type EndPayload struct {
	Status string `json:"status,omitempty"`
}

func snapshotFrame(view httpin.OrderView) ServerFrame {
	id := view.ID
	return ServerFrame{Type: FrameSnapshot, OrderID: &id, Payload: view}
}

func endFrame(orderID kernel.UUID, status string) ServerFrame {
	return ServerFrame{Type: FrameEnd, OrderID: &orderID, Payload: EndPayload{Status: status}}
}

func errorFrame(orderID *kernel.UUID, err error) ServerFrame {
	kind := errs.KindOf(err)
	message := err.Error()
	if kind == errs.KindInternal {
		message = "internal error"
	}
	return ServerFrame{Type: FrameError, OrderID: orderID, Payload: ErrorPayload{Kind: string(kind), Message: message}}
}

// eventFrame converts a hub event. Events the stream does not carry yield false.
func eventFrame(event kernel.DomainEvent) (ServerFrame, bool) {
	orderID := event.AggregateID()

	switch e := event.(type) {
	case order.StatusChangedEvent:
		from := ""
		if e.From != order.Unknown {
			from = e.From.String()
		}
		return ServerFrame{Type: FrameStatus, OrderID: &orderID, Payload: StatusPayload{
			From:      from,
			To:        e.To.String(),
			Reason:    e.Reason.String(),
			ActorRole: e.ActorRole.String(),
			CourierID: e.CourierID,
			At:        e.At,
		}}, true
	case order.CourierAssignedEvent:
		courierID := e.CourierID
		return ServerFrame{Type: FrameStatus, OrderID: &orderID, Payload: StatusPayload{
			To:        e.Status.String(),
			ActorRole: kernel.RoleSystem.String(),
			CourierID: &courierID,
			At:        e.At,
		}}, true
	case order.CourierLocationEvent:
		return ServerFrame{Type: FrameLocation, OrderID: &orderID, Payload: LocationPayload{
			CourierID:  e.CourierID,
			Lat:        e.Sample.Point.Lat(),
			Lng:        e.Sample.Point.Lng(),
			CapturedAt: e.Sample.CapturedAt,
		}}, true
	default:
		return ServerFrame{}, false
	}
}
