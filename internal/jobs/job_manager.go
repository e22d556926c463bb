package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Config tunes the background jobs.
type Config struct {
	BatchSize       int
	DispatchTimeout time.Duration
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchJob *DispatchPendingOrdersJob
	expiryJob   *ExpireUndispatchedOrdersJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	dispatcher PendingOrdersDispatcher,
	expirer UndispatchedOrdersExpirer,
	cfg Config,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob: NewDispatchPendingOrdersJob(dispatcher, cfg.BatchSize, logger),
		expiryJob:   NewExpireUndispatchedOrdersJob(expirer, cfg.DispatchTimeout, cfg.BatchSize, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.expiryJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start expiry job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.expiryJob.Stop()
	jm.dispatchJob.Stop()
}
