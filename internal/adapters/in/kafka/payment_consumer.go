// Package kafka consumes payment callbacks from the payment collaborator.
//
// Messages on the payment topic are JSON documents keyed by order id:
//
//	{"orderId": "...", "status": "confirmed" | "failed", "amount": "573.00"}
//
// A message is committed once it has been applied or judged unusable. Conflicts and
// infrastructure failures are retried a bounded number of times first.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/domain/model/kernel"
	"foodtrack/internal/core/domain/model/order"
	"foodtrack/internal/pkg/errs"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	maxAttempts  = 3
	retryBackoff = 200 * time.Millisecond
)

// PaymentMessage is the payment callback wire format.
type PaymentMessage struct {
	OrderID string          `json:"orderId"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
}

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PaymentHandler applies a payment callback to its order.
type PaymentHandler interface {
	Handle(ctx context.Context, cmd commands.ConfirmPaymentCommand) (order.PaymentStatus, error)
}

type PaymentConsumer struct {
	reader  MessageReader
	handler PaymentHandler
	logger  *slog.Logger
}

// NewPaymentReader builds the consumer-group reader for the payment topic.
func NewPaymentReader(brokers []string, groupID, topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MaxBytes: 1e6,
	})
}

func NewPaymentConsumer(reader MessageReader, handler PaymentHandler, logger *slog.Logger) *PaymentConsumer {
	return &PaymentConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger.With("component", "payment_consumer"),
	}
}

// Run consumes until ctx is cancelled. It returns nil on cancellation and the reader error
// otherwise.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	defer func() {
		if err := c.reader.Close(); err != nil {
			c.logger.Error("failed to close payment reader", "error", err)
		}
	}()

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch payment message: %w", err)
		}

		c.process(ctx, msg)

		if err = c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("commit payment message: %w", err)
		}
	}
}

func (c *PaymentConsumer) process(ctx context.Context, msg kafka.Message) {
	logger := c.logger.With("partition", msg.Partition, "offset", msg.Offset)

	cmd, err := decodePayment(msg.Value)
	if err != nil {
		logger.WarnContext(ctx, "dropping malformed payment message", "error", err)
		return
	}
	logger = logger.With("order_id", cmd.OrderID().String(), "outcome", string(cmd.Outcome()))

	for attempt := 1; ; attempt++ {
		status, handleErr := c.handler.Handle(ctx, cmd)
		if handleErr == nil {
			logger.InfoContext(ctx, "payment applied", "payment_status", status.String())
			return
		}

		if !retryable(handleErr) || attempt == maxAttempts {
			logger.ErrorContext(ctx, "payment callback rejected",
				"attempt", attempt, "kind", string(errs.KindOf(handleErr)), "error", handleErr)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(retryBackoff * time.Duration(attempt)):
		}
	}
}

func decodePayment(value []byte) (commands.ConfirmPaymentCommand, error) {
	var payload PaymentMessage
	if err := json.Unmarshal(value, &payload); err != nil {
		return commands.ConfirmPaymentCommand{}, err
	}

	orderID, err := kernel.UUIDFromString(payload.OrderID)
	if err != nil {
		return commands.ConfirmPaymentCommand{}, err
	}
	outcome, err := commands.ParsePaymentOutcome(payload.Status)
	if err != nil {
		return commands.ConfirmPaymentCommand{}, err
	}

	return commands.NewConfirmPaymentCommand(orderID, outcome, payload.Amount)
}

// retryable errors may succeed on a fresh read: lost optimistic races and infrastructure.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch errs.KindOf(err) {
	case errs.KindPreconditionFailed, errs.KindInternal:
		return true
	default:
		return false
	}
}
