package commands

import (
	"errors"

	"foodtrack/internal/pkg/errs"
	"foodtrack/internal/pkg/guard"
)

var ErrDispatchPendingOrdersCommandIsNotConstructed = errors.New(
	"DispatchPendingOrdersCommand must be created via NewDispatchPendingOrdersCommand constructor",
)

// DispatchPendingOrdersCommand runs one dispatch round over orders awaiting a courier.
// It is issued periodically by the dispatch job.
type DispatchPendingOrdersCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewDispatchPendingOrdersCommand(batchSize int) (DispatchPendingOrdersCommand, error) {
	if batchSize <= 0 {
		return DispatchPendingOrdersCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}

	return DispatchPendingOrdersCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c DispatchPendingOrdersCommand) Validate() error {
	return c.guard.Validate(ErrDispatchPendingOrdersCommandIsNotConstructed)
}

func (c DispatchPendingOrdersCommand) BatchSize() int {
	return c.batchSize
}
