package jobs

import (
	"context"
	"log/slog"

	"foodtrack/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// PendingOrdersDispatcher runs one dispatch round.
type PendingOrdersDispatcher interface {
	Handle(ctx context.Context, cmd commands.DispatchPendingOrdersCommand) (commands.DispatchReport, error)
}

// DispatchPendingOrdersJob tries to find a courier for every order awaiting dispatch.
// A round that is still running when the next tick fires makes that tick a no-op.
type DispatchPendingOrdersJob struct {
	handler   PendingOrdersDispatcher
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewDispatchPendingOrdersJob(handler PendingOrdersDispatcher, batchSize int, logger *slog.Logger) *DispatchPendingOrdersJob {
	return &DispatchPendingOrdersJob{
		handler:   handler,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "dispatch_pending_orders_job"),
	}
}

// Start schedules the job to run every second.
func (j *DispatchPendingOrdersJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		j.Run(context.Background())
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started (running every second)")
	return nil
}

// Run executes a single round.
func (j *DispatchPendingOrdersJob) Run(ctx context.Context) {
	cmd, err := commands.NewDispatchPendingOrdersCommand(j.batchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Invalid dispatch command", "error", err)
		return
	}

	report, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch round failed", "error", err,
			"considered", report.Considered, "assigned", report.Assigned)
		return
	}

	if report.Assigned > 0 || report.Conflicts > 0 {
		j.logger.InfoContext(ctx, "Dispatch round finished",
			"considered", report.Considered,
			"assigned", report.Assigned,
			"conflicts", report.Conflicts)
	}
}

// Stop waits for a running round to finish.
func (j *DispatchPendingOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}
