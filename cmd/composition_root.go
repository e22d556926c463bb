package cmd

import (
	"log/slog"

	httpin "foodtrack/internal/adapters/in/http"
	kafkain "foodtrack/internal/adapters/in/kafka"
	"foodtrack/internal/adapters/in/ws"
	"foodtrack/internal/adapters/out/broadcast"
	"foodtrack/internal/adapters/out/postgres"
	"foodtrack/internal/adapters/out/redis"
	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/application/usecases/queries"
	"foodtrack/internal/core/domain/services"
	"foodtrack/internal/core/ports"
	"foodtrack/internal/jobs"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	carts      *redis.CartStore
	locations  *redis.LocationStore
	hub        *broadcast.Hub
	stream     *ws.Handler
	pricing    services.PricingEngine
	dispatcher services.OrderDispatcher
	logger     *slog.Logger
}

// NewCompositionRoot wires the core. Committed events go to the in-process hub first and
// then to every sink, each best-effort.
func NewCompositionRoot(
	cfg Config,
	gormDB *gorm.DB,
	redisClient goredis.UniversalClient,
	logger *slog.Logger,
	sinks ...ports.EventPublisher,
) (*CompositionRoot, error) {
	schedule, err := cfg.Fare.FeeSchedule()
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCoupons(cfg.CouponsFile)
	if err != nil {
		return nil, err
	}
	pricing, err := services.NewPricingEngine(schedule, catalog)
	if err != nil {
		return nil, err
	}

	hub, err := broadcast.NewHub(cfg.Hub.BufferSize, logger)
	if err != nil {
		return nil, err
	}
	publisher := broadcast.NewFanoutPublisher(logger, append([]ports.EventPublisher{hub}, sinks...)...)

	return &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB, publisher, logger),
		carts:      redis.NewCartStore(redisClient, cfg.Redis.CartTTL),
		locations:  redis.NewLocationStore(redisClient, cfg.Redis.LocationTTL),
		hub:        hub,
		pricing:    pricing,
		dispatcher: services.NewOrderDispatcher(cfg.Dispatch.LocationFreshness),
		logger:     logger,
	}, nil
}

func (c *CompositionRoot) courierUoWFactory() commands.CourierUoWFactory {
	return FuncCourierUoWFactory(func() commands.CourierUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uowFactoryFunc() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateAddCartItemCommandHandler() commands.AddCartItemCommandHandler {
	return commands.NewAddCartItemCommandHandler(c.carts)
}

func (c *CompositionRoot) CreateUpdateCartItemCommandHandler() commands.UpdateCartItemCommandHandler {
	return commands.NewUpdateCartItemCommandHandler(c.carts)
}

func (c *CompositionRoot) CreateRemoveCartItemCommandHandler() commands.RemoveCartItemCommandHandler {
	return commands.NewRemoveCartItemCommandHandler(c.carts)
}

func (c *CompositionRoot) CreateClearCartCommandHandler() commands.ClearCartCommandHandler {
	return commands.NewClearCartCommandHandler(c.carts)
}

func (c *CompositionRoot) CreateCheckoutCommandHandler() commands.CheckoutCommandHandler {
	return commands.NewCheckoutCommandHandler(c.carts, c.pricing, c.orderUoWFactory())
}

func (c *CompositionRoot) CreateConfirmPaymentCommandHandler() commands.ConfirmPaymentCommandHandler {
	return commands.NewConfirmPaymentCommandHandler(c.orderUoWFactory(), c.pricing)
}

func (c *CompositionRoot) CreateTransitionOrderStatusCommandHandler() commands.TransitionOrderStatusCommandHandler {
	return commands.NewTransitionOrderStatusCommandHandler(c.uowFactoryFunc())
}

func (c *CompositionRoot) CreateCreateCourierCommandHandler() commands.CreateCourierCommandHandler {
	return commands.NewCreateCourierCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateSetCourierAvailabilityCommandHandler() commands.SetCourierAvailabilityCommandHandler {
	return commands.NewSetCourierAvailabilityCommandHandler(c.courierUoWFactory())
}

func (c *CompositionRoot) CreateUpdateCourierLocationCommandHandler() commands.UpdateCourierLocationCommandHandler {
	return commands.NewUpdateCourierLocationCommandHandler(c.courierUoWFactory(), c.locations, c.hub)
}

func (c *CompositionRoot) CreateAssignCourierCommandHandler() commands.AssignCourierCommandHandler {
	return commands.NewAssignCourierCommandHandler(c.uowFactoryFunc(), c.locations, c.dispatcher)
}

func (c *CompositionRoot) CreateDispatchPendingOrdersCommandHandler() commands.DispatchPendingOrdersCommandHandler {
	return commands.NewDispatchPendingOrdersCommandHandler(c.orderUoWFactory(), c.CreateAssignCourierCommandHandler())
}

func (c *CompositionRoot) CreateExpireUndispatchedOrdersCommandHandler() commands.ExpireUndispatchedOrdersCommandHandler {
	return commands.NewExpireUndispatchedOrdersCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateGetCartQueryHandler() (*queries.GetCartQueryHandler, error) {
	return queries.NewGetCartQueryHandler(c.carts)
}

func (c *CompositionRoot) CreateGetOrderSnapshotQueryHandler() (*queries.GetOrderSnapshotQueryHandler, error) {
	return queries.NewGetOrderSnapshotQueryHandler(c.gormDB, c.locations)
}

func (c *CompositionRoot) CreateGetCourierLocationQueryHandler() (*queries.GetCourierLocationQueryHandler, error) {
	return queries.NewGetCourierLocationQueryHandler(c.gormDB, c.locations)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAllCouriersQueryHandler() queries.GetAllCouriersQueryHandler {
	return queries.NewGetAllCouriersQueryHandler(c.gormDB)
}

// CreateRouter builds the HTTP surface, websocket endpoint included.
func (c *CompositionRoot) CreateRouter() (*echo.Echo, error) {
	auth, err := httpin.NewAuthenticator(c.cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	getCart, err := c.CreateGetCartQueryHandler()
	if err != nil {
		return nil, err
	}
	getOrder, err := c.CreateGetOrderSnapshotQueryHandler()
	if err != nil {
		return nil, err
	}
	getCourierLocation, err := c.CreateGetCourierLocationQueryHandler()
	if err != nil {
		return nil, err
	}

	createCourier := c.CreateCreateCourierCommandHandler()
	publishLocation := c.CreateUpdateCourierLocationCommandHandler()

	handlers := httpin.Handlers{
		AddCartItem:        c.CreateAddCartItemCommandHandler(),
		UpdateCartItem:     c.CreateUpdateCartItemCommandHandler(),
		RemoveCartItem:     c.CreateRemoveCartItemCommandHandler(),
		ClearCart:          c.CreateClearCartCommandHandler(),
		Checkout:           c.CreateCheckoutCommandHandler(),
		TransitionOrder:    c.CreateTransitionOrderStatusCommandHandler(),
		CreateCourier:      &createCourier,
		SetAvailability:    c.CreateSetCourierAvailabilityCommandHandler(),
		PublishLocation:    publishLocation,
		GetCart:            getCart,
		GetOrder:           getOrder,
		GetCourierLocation: getCourierLocation,
		GetActiveOrders:    c.CreateGetActiveOrdersQueryHandler(),
		GetAllCouriers:     c.CreateGetAllCouriersQueryHandler(),
	}

	c.stream = ws.NewHandler(c.hub, getOrder, publishLocation, c.logger)
	return httpin.NewRouter(httpin.NewServer(handlers, c.stream), auth, c.logger)
}

// CloseStreams ends the websocket connections opened through the router.
func (c *CompositionRoot) CloseStreams() {
	if c.stream != nil {
		c.stream.Close()
	}
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateDispatchPendingOrdersCommandHandler(),
		c.CreateExpireUndispatchedOrdersCommandHandler(),
		jobs.Config{
			BatchSize:       c.cfg.Dispatch.BatchSize,
			DispatchTimeout: c.cfg.Dispatch.Timeout,
		},
		c.logger,
	)
}

func (c *CompositionRoot) CreatePaymentConsumer(reader kafkain.MessageReader) *kafkain.PaymentConsumer {
	return kafkain.NewPaymentConsumer(reader, c.CreateConfirmPaymentCommandHandler(), c.logger)
}

type FuncCourierUoWFactory func() commands.CourierUoW

func (f FuncCourierUoWFactory) Create() commands.CourierUoW {
	return f()
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
