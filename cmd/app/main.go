package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodtrack/cmd"
	httpin "foodtrack/internal/adapters/in/http"
	kafkain "foodtrack/internal/adapters/in/kafka"
	"foodtrack/internal/adapters/out/kafka"
	"foodtrack/internal/adapters/out/postgres"
	"foodtrack/internal/adapters/out/rabbitmq"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const shutdownTimeout = 15 * time.Second

func main() {
	os.Exit(start())
}

// start owns every deferred cleanup and reports the exit code, so main never exits past them.
func start() int {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	configs, err := cmd.LoadConfig()
	if err != nil {
		logger.Error("config", "error", err)
		return 1
	}

	if err = postgres.Migrate(configs.DB.DSN()); err != nil {
		logger.Error("migrations", "error", err)
		return 1
	}
	gormDB, err := gorm.Open(gormpostgres.Open(configs.DB.DSN()), &gorm.Config{})
	if err != nil {
		logger.Error("connect to database", "error", err)
		return 1
	}

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     configs.Redis.Addr,
		Password: configs.Redis.Password,
		DB:       configs.Redis.DB,
	})
	defer redisClient.Close()

	orderEvents := kafka.NewOrderEventsPublisher(
		kafka.NewOrderEventsWriter(configs.Kafka.Brokers, configs.Kafka.OrderChangedTopic), logger)
	defer orderEvents.Close()

	amqpConn, amqpChannel, err := rabbitmq.Connect(configs.RabbitMQ.URL, configs.RabbitMQ.Exchange)
	if err != nil {
		logger.Error("rabbitmq", "error", err)
		return 1
	}
	defer amqpConn.Close()
	notifier := rabbitmq.NewNotifier(amqpChannel, configs.RabbitMQ.Exchange, logger)

	app, err := cmd.NewCompositionRoot(configs, gormDB, redisClient, logger, orderEvents, notifier)
	if err != nil {
		logger.Error("wiring", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, app, configs, logger); err != nil {
		logger.Error("foodtrack stopped with error", "error", err)
		return 1
	}
	logger.Info("foodtrack stopped")
	return 0
}

func run(ctx context.Context, app *cmd.CompositionRoot, configs cmd.Config, logger *slog.Logger) error {
	router, err := app.CreateRouter()
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}
	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort),
		Handler:           httpin.Instrument(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not wait for hijacked websocket connections.
	server.RegisterOnShutdown(app.CloseStreams)

	jobManager := app.CreateJobManager()
	payments := app.CreatePaymentConsumer(
		kafkain.NewPaymentReader(configs.Kafka.Brokers, configs.Kafka.ConsumerGroup, configs.Kafka.PaymentTopic))

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return payments.Run(ctx)
	})
	g.Go(func() error {
		if err := jobManager.StartAll(); err != nil {
			return err
		}
		<-ctx.Done()
		jobManager.StopAll()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
