package commands

import (
	"errors"
	"time"

	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"
)

var ErrExpireUndispatchedOrdersCommandIsNotConstructed = errors.New(
	"ExpireUndispatchedOrdersCommand must be created via NewExpireUndispatchedOrdersCommand constructor",
)

// ExpireUndispatchedOrdersCommand cancels orders whose courier search outlived timeout.
type ExpireUndispatchedOrdersCommand struct {
	timeout   time.Duration
	batchSize int

	guard guard.ConstructorGuard
}

func NewExpireUndispatchedOrdersCommand(timeout time.Duration, batchSize int) (ExpireUndispatchedOrdersCommand, error) {
	var timeoutErr, batchErr error
	if timeout <= 0 {
		timeoutErr = errs.NewValueIsOutOfRangeError("timeout", timeout, time.Nanosecond, "unbounded")
	}
	if batchSize <= 0 {
		batchErr = errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}
	if err := errors.Join(timeoutErr, batchErr); err != nil {
		return ExpireUndispatchedOrdersCommand{}, err
	}

	return ExpireUndispatchedOrdersCommand{
		timeout:   timeout,
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c ExpireUndispatchedOrdersCommand) Validate() error {
	return c.guard.Validate(ErrExpireUndispatchedOrdersCommandIsNotConstructed)
}

func (c ExpireUndispatchedOrdersCommand) Timeout() time.Duration { return c.timeout }
func (c ExpireUndispatchedOrdersCommand) BatchSize() int { return c.batchSize }
