// Package jobs provides scheduled background tasks for the delivery system.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to drive the dispatch lifecycle of orders.
//
// # Available Jobs
//
// 1. DispatchPendingOrdersJob - Runs every second to assign couriers to orders awaiting dispatch
// 2. ExpireUndispatchedOrdersJob - Runs every five seconds to cancel orders whose courier search timed out
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	jobManager := jobs.NewJobManager(dispatchHandler, expireHandler, jobs.Config{
//		BatchSize:       50,
//		DispatchTimeout: 5 * time.Minute,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	defer jobManager.StopAll()
//
// # Overlap
//
// Both jobs skip a tick while the previous run is still going, so a slow database never
// piles up concurrent rounds. Rounds are also safe to overlap across replicas: every write
// is version-checked and the loser of a race only counts a conflict.
//
// # Error Handling
//
// - A round that finds no courier ends early and is not logged
// - Lost races are counted, not logged as errors
// - Failed job starts will stop any already running jobs
package jobs
