package http

import (
	"time"

	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/fare"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// Requests. Money travels as decimal strings, never as floats.

type AddCartItemRequest struct {
	DishID       string          `json:"dishId" validate:"required,uuid"`
	RestaurantID string          `json:"restaurantId" validate:"required,uuid"`
	Name         string          `json:"name" validate:"required,max=200"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	DishID   string `json:"dishId" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"min=0"`
}

type RemoveCartItemRequest struct {
	DishID string `json:"dishId" validate:"required,uuid"`
}

type PointRequest struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

type CheckoutRequest struct {
	PaymentMethod   string           `json:"paymentMethod" validate:"required,oneof=cash_on_delivery prepaid"`
	DeliveryAddress string           `json:"deliveryAddress" validate:"required,max=500"`
	Dropoff         PointRequest     `json:"dropoff"`
	Pickup          PointRequest     `json:"pickup"`
	Tip             *decimal.Decimal `json:"tip,omitempty"`
	CouponCode      string           `json:"couponCode,omitempty" validate:"max=64"`
}

type TransitionStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Reason string `json:"reason,omitempty"`
}

type CreateCourierRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type AvailabilityRequest struct {
	Online *bool `json:"online" validate:"required"`
}

type LocationRequest struct {
	OrderID string  `json:"orderId" validate:"required,uuid"`
	Lat     float64 `json:"lat" validate:"latitude"`
	Lng     float64 `json:"lng" validate:"longitude"`
}

// Responses.

type ErrorResponse struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type PointView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func NewPointView(p kernel.GeoPoint) PointView {
	return PointView{Lat: p.Lat(), Lng: p.Lng()}
}

type LocationView struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CapturedAt time.Time `json:"capturedAt"`
}

func NewLocationView(s *kernel.LocationSample) *LocationView {
	if s == nil {
		return nil
	}
	return &LocationView{Lat: s.Point.Lat(), Lng: s.Point.Lng(), CapturedAt: s.CapturedAt}
}

type CartItemView struct {
	DishID    kernel.UUID `json:"dishId"`
	Name      string      `json:"name"`
	UnitPrice string      `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
	LineTotal string      `json:"lineTotal"`
}

type CartView struct {
	CustomerID   kernel.UUID    `json:"customerId"`
	RestaurantID *kernel.UUID   `json:"restaurantId"`
	Items        []CartItemView `json:"items"`
	Subtotal     string         `json:"subtotal"`
}

func newCartView(c *cart.Cart) CartView {
	view := CartView{
		CustomerID:   c.CustomerID(),
		RestaurantID: c.RestaurantID(),
		Items:        make([]CartItemView, 0, len(c.Items())),
		Subtotal:     money(c.Subtotal()),
	}
	for _, item := range c.Items() {
		view.Items = append(view.Items, CartItemView{
			DishID:    item.DishID(),
			Name:      item.Name(),
			UnitPrice: money(item.UnitPrice()),
			Quantity:  item.Quantity(),
			LineTotal: money(item.Line().Amount()),
		})
	}
	return view
}

func newCartViewFromQuery(resp queries.GetCartQueryResponse) CartView {
	view := CartView{
		CustomerID:   resp.CustomerID,
		RestaurantID: resp.RestaurantID,
		Items:        make([]CartItemView, 0, len(resp.Items)),
		Subtotal:     money(resp.Subtotal),
	}
	for _, item := range resp.Items {
		view.Items = append(view.Items, CartItemView{
			DishID:    item.DishID,
			Name:      item.Name,
			UnitPrice: money(item.UnitPrice),
			Quantity:  item.Quantity,
			LineTotal: money(item.LineTotal),
		})
	}
	return view
}

type FareView struct {
	Subtotal       string `json:"subtotal"`
	PackagingFee   string `json:"packagingFee"`
	PlatformFee    string `json:"platformFee"`
	DeliveryFee    string `json:"deliveryFee"`
	Tip            string `json:"tip"`
	CouponCode     string `json:"couponCode,omitempty"`
	CouponDiscount string `json:"couponDiscount"`
	Total          string `json:"total"`
}

func newFareView(b fare.Breakdown) FareView {
	return FareView{
		Subtotal:       money(b.Subtotal()),
		PackagingFee:   money(b.PackagingFee()),
		PlatformFee:    money(b.PlatformFee()),
		DeliveryFee:    money(b.DeliveryFee()),
		Tip:            money(b.Tip()),
		CouponCode:     b.CouponCode(),
		CouponDiscount: money(b.CouponDiscount()),
		Total:          money(b.Total()),
	}
}

type OrderItemView struct {
	DishID    kernel.UUID `json:"dishId"`
	Name      string      `json:"name"`
	UnitPrice string      `json:"unitPrice"`
	Quantity  int         `json:"quantity"`
}

type HistoryView struct {
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
	ActorRole string    `json:"actorRole"`
	Reason    string    `json:"reason,omitempty"`
}

func newHistoryView(history []order.HistoryEntry) []HistoryView {
	views := make([]HistoryView, 0, len(history))
	for _, h := range history {
		views = append(views, HistoryView{
			Status:    h.Status.String(),
			At:        h.At,
			ActorRole: h.ActorRole.String(),
			Reason:    h.Reason.String(),
		})
	}
	return views
}

// OrderView is the full order as seen by one of its parties. The websocket snapshot frame
// carries the same shape.
type OrderView struct {
	ID              kernel.UUID     `json:"id"`
	CustomerID      kernel.UUID     `json:"customerId"`
	RestaurantID    kernel.UUID     `json:"restaurantId"`
	CourierID       *kernel.UUID    `json:"courierId"`
	Status          string          `json:"status"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentStatus   string          `json:"paymentStatus"`
	Fare            FareView        `json:"fare"`
	Items           []OrderItemView `json:"items"`
	History         []HistoryView   `json:"history"`
	Pickup          PointView       `json:"pickup"`
	DeliveryAddress string          `json:"deliveryAddress"`
	Dropoff         PointView       `json:"dropoff"`
	CourierLocation *LocationView   `json:"courierLocation"`
	CreatedAt       time.Time       `json:"createdAt"`
	Version         int64           `json:"version"`
}

func NewOrderViewFromSnapshot(s *queries.OrderSnapshot) OrderView {
	view := OrderView{
		ID:            s.ID,
		CustomerID:    s.CustomerID,
		RestaurantID:  s.RestaurantID,
		CourierID:     s.CourierID,
		Status:        s.Status.String(),
		CancelReason:  s.CancelReason.String(),
		PaymentMethod: s.PaymentMethod.String(),
		PaymentStatus: s.PaymentStatus.String(),
		Fare: FareView{
			Subtotal:       money(s.Fare.Subtotal),
			PackagingFee:   money(s.Fare.PackagingFee),
			PlatformFee:    money(s.Fare.PlatformFee),
			DeliveryFee:    money(s.Fare.DeliveryFee),
			Tip:            money(s.Fare.Tip),
			CouponCode:     s.Fare.CouponCode,
			CouponDiscount: money(s.Fare.CouponDiscount),
			Total:          money(s.Fare.Total),
		},
		Items:           make([]OrderItemView, 0, len(s.Items)),
		History:         newHistoryView(s.History),
		Pickup:          NewPointView(s.Pickup),
		DeliveryAddress: s.DropoffAddress,
		Dropoff:         NewPointView(s.Dropoff),
		CourierLocation: NewLocationView(s.CourierLocation),
		CreatedAt:       s.CreatedAt,
		Version:         s.Version,
	}
	for _, item := range s.Items {
		view.Items = append(view.Items, OrderItemView{
			DishID:    item.DishID,
			Name:      item.Name,
			UnitPrice: money(item.UnitPrice),
			Quantity:  item.Quantity,
		})
	}
	return view
}

func newOrderView(o *order.Order) OrderView {
	view := OrderView{
		ID:              o.ID(),
		CustomerID:      o.CustomerID(),
		RestaurantID:    o.RestaurantID(),
		CourierID:       o.Courier(),
		Status:          o.Status().String(),
		CancelReason:    o.CancelReason().String(),
		PaymentMethod:   o.PaymentMethod().String(),
		PaymentStatus:   o.PaymentStatus().String(),
		Fare:            newFareView(o.Fare()),
		Items:           make([]OrderItemView, 0, len(o.Items())),
		History:         newHistoryView(o.History()),
		Pickup:          NewPointView(o.Pickup()),
		DeliveryAddress: o.Dropoff().Line,
		Dropoff:         NewPointView(o.Dropoff().Point),
		CreatedAt:       o.CreatedAt(),
		Version:         o.Version(),
	}
	for _, item := range o.Items() {
		view.Items = append(view.Items, OrderItemView{
			DishID:    item.DishID,
			Name:      item.Name,
			UnitPrice: money(item.Line.UnitPrice),
			Quantity:  item.Line.Quantity,
		})
	}
	return view
}

type CheckoutResponse struct {
	Order OrderView `json:"order"`
	Fare  FareView  `json:"fare"`
}

type CourierLocationView struct {
	OrderID   kernel.UUID   `json:"orderId"`
	CourierID *kernel.UUID  `json:"courierId"`
	Location  *LocationView `json:"location"`
}

type ActiveOrderView struct {
	ID            kernel.UUID  `json:"id"`
	CustomerID    kernel.UUID  `json:"customerId"`
	CourierID     *kernel.UUID `json:"courierId"`
	Status        string       `json:"status"`
	PaymentMethod string       `json:"paymentMethod"`
	PaymentStatus string       `json:"paymentStatus"`
	Total         string       `json:"total"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type CourierView struct {
	ID            kernel.UUID  `json:"id"`
	Name          string       `json:"name"`
	Online        bool         `json:"online"`
	Busy          bool         `json:"busy"`
	ActiveOrderID *kernel.UUID `json:"activeOrderId"`
}

type CreatedResponse struct {
	ID kernel.UUID `json:"id"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
