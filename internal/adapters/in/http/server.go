package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/model/cart"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	"github.com/shopspring/decimal"
)

// Handler is a use case that returns a result.
type Handler[In, Out any] interface {
	Handle(ctx context.Context, in In) (Out, error)
}

// ExecHandler is a use case that only reports success.
type ExecHandler[In any] interface {
	Handle(ctx context.Context, in In) error
}

// StreamHandler serves the websocket endpoint for an authenticated caller.
type StreamHandler interface {
	Serve(w http.ResponseWriter, r *http.Request, actor kernel.Actor) error
}

// Handlers are the use cases the HTTP surface exposes.
type Handlers struct {
	AddCartItem     Handler[commands.AddCartItemCommand, *cart.Cart]
	UpdateCartItem  Handler[commands.UpdateCartItemCommand, *cart.Cart]
	RemoveCartItem  Handler[commands.RemoveCartItemCommand, *cart.Cart]
	ClearCart       Handler[commands.ClearCartCommand, *cart.Cart]
	Checkout        Handler[commands.CheckoutCommand, *order.Order]
	TransitionOrder Handler[commands.TransitionOrderStatusCommand, *order.Order]
	CreateCourier   ExecHandler[commands.CreateCourierCommand]
	SetAvailability ExecHandler[commands.SetCourierAvailabilityCommand]
	PublishLocation ExecHandler[commands.UpdateCourierLocationCommand]

	GetCart            Handler[queries.GetCartQuery, queries.GetCartQueryResponse]
	GetOrder           Handler[queries.GetOrderSnapshotQuery, *queries.OrderSnapshot]
	GetCourierLocation Handler[queries.GetCourierLocationQuery, queries.GetCourierLocationQueryResponse]
	GetActiveOrders    Handler[queries.GetActiveOrdersQuery, []queries.GetActiveOrdersQueryResponse]
	GetAllCouriers     Handler[queries.GetAllCouriersQuery, []queries.GetAllCouriersQueryResponse]
}

// Server maps HTTP requests onto use cases. The caller identity always comes from the
// authenticated token, never from the request body.
type Server struct {
	handlers Handlers
	stream   StreamHandler
}

func NewServer(handlers Handlers, stream StreamHandler) *Server {
	return &Server{handlers: handlers, stream: stream}
}

// GetCart handles GET /api/v1/cart.
func (s *Server) GetCart(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetCartQuery(actor.ID)
	if err != nil {
		return err
	}

	resp, err := s.handlers.GetCart.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartViewFromQuery(resp))
}

// AddCartItem handles POST /api/v1/cart/add.
func (s *Server) AddCartItem(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req AddCartItemRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	dishID, err := kernel.UUIDFromString(req.DishID)
	if err != nil {
		return err
	}
	restaurantID, err := kernel.UUIDFromString(req.RestaurantID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAddCartItemCommand(actor.ID, dishID, restaurantID, req.Name, req.UnitPrice, req.Quantity)
	if err != nil {
		return err
	}

	updated, err := s.handlers.AddCartItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartView(updated))
}

// UpdateCartItem handles POST /api/v1/cart/update.
func (s *Server) UpdateCartItem(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req UpdateCartItemRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	dishID, err := kernel.UUIDFromString(req.DishID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateCartItemCommand(actor.ID, dishID, req.Quantity)
	if err != nil {
		return err
	}

	updated, err := s.handlers.UpdateCartItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartView(updated))
}

// RemoveCartItem handles POST /api/v1/cart/remove.
func (s *Server) RemoveCartItem(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req RemoveCartItemRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	dishID, err := kernel.UUIDFromString(req.DishID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewRemoveCartItemCommand(actor.ID, dishID)
	if err != nil {
		return err
	}

	updated, err := s.handlers.RemoveCartItem.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartView(updated))
}

// ClearCart handles POST /api/v1/cart/clear.
func (s *Server) ClearCart(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	cmd, err := commands.NewClearCartCommand(actor.ID)
	if err != nil {
		return err
	}

	updated, err := s.handlers.ClearCart.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartView(updated))
}

// Checkout handles POST /api/v1/checkout.
func (s *Server) Checkout(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req CheckoutRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	method, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return err
	}
	dropoff, err := kernel.NewGeoPoint(req.Dropoff.Lat, req.Dropoff.Lng)
	if err != nil {
		return err
	}
	pickup, err := kernel.NewGeoPoint(req.Pickup.Lat, req.Pickup.Lng)
	if err != nil {
		return err
	}
	tip := decimal.Zero
	if req.Tip != nil {
		tip = *req.Tip
	}

	cmd, err := commands.NewCheckoutCommand(commands.CheckoutParams{
		CustomerID:      actor.ID,
		PaymentMethod:   method,
		DeliveryAddress: req.DeliveryAddress,
		Dropoff:         dropoff,
		Pickup:          pickup,
		Tip:             tip,
		CouponCode:      req.CouponCode,
	})
	if err != nil {
		return err
	}

	placed, err := s.handlers.Checkout.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}

	view := newOrderView(placed)
	return c.JSON(http.StatusCreated, CheckoutResponse{Order: view, Fare: view.Fare})
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetOrderSnapshotQuery(actor, orderID)
	if err != nil {
		return err
	}

	snapshot, err := s.handlers.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, NewOrderViewFromSnapshot(snapshot))
}

// GetCourierLocation handles GET /api/v1/orders/{orderId}/courier-location.
func (s *Server) GetCourierLocation(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetCourierLocationQuery(actor, orderID)
	if err != nil {
		return err
	}

	resp, err := s.handlers.GetCourierLocation.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CourierLocationView{
		OrderID:   resp.OrderID,
		CourierID: resp.CourierID,
		Location:  NewLocationView(resp.Sample),
	})
}

// TransitionOrderStatus handles PUT /api/v1/orders/{orderId}/status.
// Which transitions the caller may request is decided by the order from the caller's role.
func (s *Server) TransitionOrderStatus(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req TransitionStatusRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	status, err := order.ParseStatus(req.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionOrderStatusCommand(actor, orderID, status, order.CancelReason(req.Reason))
	if err != nil {
		return err
	}

	updated, err := s.handlers.TransitionOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderView(updated))
}

// GetActiveOrders handles GET /api/v1/restaurant/orders.
func (s *Server) GetActiveOrders(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	query, err := queries.NewGetActiveOrdersQuery(actor)
	if err != nil {
		return err
	}

	orders, err := s.handlers.GetActiveOrders.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}

	response := make([]ActiveOrderView, len(orders))
	for i, o := range orders {
		response[i] = ActiveOrderView{
			ID:            o.ID,
			CustomerID:    o.CustomerID,
			CourierID:     o.CourierID,
			Status:        o.Status.String(),
			PaymentMethod: o.PaymentMethod.String(),
			PaymentStatus: o.PaymentStatus.String(),
			Total:         money(o.Total),
			CreatedAt:     o.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetCouriers handles GET /api/v1/couriers.
func (s *Server) GetCouriers(c echo.Context) error {
	couriers, err := s.handlers.GetAllCouriers.Handle(c.Request().Context(), queries.NewGetAllCouriersQuery())
	if err != nil {
		return err
	}

	response := make([]CourierView, len(couriers))
	for i, courier := range couriers {
		response[i] = CourierView{
			ID:            courier.ID,
			Name:          courier.Name,
			Online:        courier.Online,
			Busy:          courier.Busy,
			ActiveOrderID: courier.ActiveOrderID,
		}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateCourier handles POST /api/v1/couriers.
func (s *Server) CreateCourier(c echo.Context) error {
	var req CreateCourierRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewCreateCourierCommand(req.Name)
	if err != nil {
		return err
	}

	if err = s.handlers.CreateCourier.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreatedResponse{ID: cmd.CourierID()})
}

// SetAvailability handles PUT /api/v1/couriers/me/availability.
func (s *Server) SetAvailability(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req AvailabilityRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewSetCourierAvailabilityCommand(actor.ID, *req.Online)
	if err != nil {
		return err
	}

	if err = s.handlers.SetAvailability.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PublishLocation handles PUT /api/v1/couriers/me/location.
func (s *Server) PublishLocation(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}

	var req LocationRequest
	if err = bindAndValidate(c, &req); err != nil {
		return err
	}

	orderID, err := kernel.UUIDFromString(req.OrderID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewUpdateCourierLocationCommand(actor.ID, orderID, req.Lat, req.Lng, time.Now().UTC())
	if err != nil {
		return err
	}

	if err = s.handlers.PublishLocation.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusAccepted)
}

// Stream handles GET /api/v1/ws.
func (s *Server) Stream(c echo.Context) error {
	actor, err := ActorFrom(c)
	if err != nil {
		return err
	}
	return s.stream.Serve(c.Response(), c.Request(), actor)
}

func orderIDParam(c echo.Context) (kernel.UUID, error) {
	var raw string
	err := runtime.BindStyledParameterWithLocation("simple", false, "orderId", runtime.ParamLocationPath, c.Param("orderId"), &raw)
	if err != nil {
		return kernel.UUID{}, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid orderId: %s", err))
	}
	return kernel.UUIDFromString(raw)
}
