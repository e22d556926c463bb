package http

import (
	"log/slog"
	"net/http"

	"foodtrack/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewRouter builds the echo instance: health and swagger are public, everything under
// /api/v1 needs a bearer token and must match the OpenAPI contract.
func NewRouter(server *Server, auth *Authenticator, logger *slog.Logger) (*echo.Echo, error) {
	doc, err := LoadOpenAPI()
	if err != nil {
		return nil, err
	}
	contract, err := OpenAPIValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = RegisterSwaggerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	// echo's own logger only reports recovered panics; requests go through slog.
	e.Logger.SetLevel(log.WARN)
	e.Validator = newRequestValidator()
	e.HTTPErrorHandler = NewErrorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", auth.Middleware(), contract)

	customer := RequireRole(kernel.RoleCustomer)
	api.GET("/cart", server.GetCart, customer)
	api.POST("/cart/add", server.AddCartItem, customer)
	api.POST("/cart/update", server.UpdateCartItem, customer)
	api.POST("/cart/remove", server.RemoveCartItem, customer)
	api.POST("/cart/clear", server.ClearCart, customer)
	api.POST("/checkout", server.Checkout, customer)

	api.GET("/orders/:orderId", server.GetOrder)
	api.GET("/orders/:orderId/courier-location", server.GetCourierLocation)
	api.PUT("/orders/:orderId/status", server.TransitionOrderStatus)

	api.GET("/restaurant/orders", server.GetActiveOrders, RequireRole(kernel.RoleRestaurant))

	admin := RequireRole(kernel.RoleAdmin)
	api.GET("/couriers", server.GetCouriers, admin)
	api.POST("/couriers", server.CreateCourier, admin)

	courier := RequireRole(kernel.RoleCourier)
	api.PUT("/couriers/me/availability", server.SetAvailability, courier)
	api.PUT("/couriers/me/location", server.PublishLocation, courier)

	api.GET("/ws", server.Stream)

	return e, nil
}

// Instrument wraps the router with OpenTelemetry spans and metrics.
func Instrument(h http.Handler) http.Handler {
	return otelhttp.NewHandler(h, "foodtrack.http")
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogURI:      true,
		LogMethod:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}
