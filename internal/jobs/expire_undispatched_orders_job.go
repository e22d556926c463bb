package jobs

import (
	"context"
	"log/slog"
	"time"

	"foodtrack/internal/core/application/usecases/commands"
	"foodtrack/internal/core/domain/model/kernel"

	"github.com/robfig/cron/v3"
)

// UndispatchedOrdersExpirer cancels orders whose courier search timed out.
type UndispatchedOrdersExpirer interface {
	Handle(ctx context.Context, cmd commands.ExpireUndispatchedOrdersCommand) ([]kernel.UUID, error)
}

// ExpireUndispatchedOrdersJob turns a courier search that outlived the timeout into a
// dispatch_failed cancellation, so no order waits for a courier forever.
type ExpireUndispatchedOrdersJob struct {
	handler   UndispatchedOrdersExpirer
	timeout   time.Duration
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewExpireUndispatchedOrdersJob(
	handler UndispatchedOrdersExpirer,
	timeout time.Duration,
	batchSize int,
	logger *slog.Logger,
) *ExpireUndispatchedOrdersJob {
	return &ExpireUndispatchedOrdersJob{
		handler:   handler,
		timeout:   timeout,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "expire_undispatched_orders_job"),
	}
}

// Start schedules the job to run every five seconds.
func (j *ExpireUndispatchedOrdersJob) Start() error {
	_, err := j.cron.AddFunc("*/5 * * * * *", func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Expiry job started (running every 5 seconds)", "timeout", j.timeout)
	return nil
}

// Run executes a single pass.
func (j *ExpireUndispatchedOrdersJob) Run(ctx context.Context) {
	cmd, err := commands.NewExpireUndispatchedOrdersCommand(j.timeout, j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid expiry command", "error", err)
		return
	}

	expired, err := j.handler.Handle(ctx, cmd)
	for _, id := range expired {
		j.logger.WarnContext(ctx, "Order cancelled, no courier found in time", "order_id", id.String())
	}
	if err != nil {
		j.logger.ErrorContext(ctx, "Expiry pass failed", "error", err)
	}
}

// Stop waits for a running pass to finish.
func (j *ExpireUndispatchedOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Expiry job stopped")
}
