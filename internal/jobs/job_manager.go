// Package jobs provides the scheduled background tasks of the service:
// the periodic dispatch pass and the idempotency ledger purge. Jobs are
// cron-driven (github.com/robfig/cron/v3) and managed together through
// JobManager.
package jobs

import (
	"fmt"
	"log/slog"

	"skycourier/internal/core/application/idempotency"
	"skycourier/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	dispatchJob    *DispatchJob
	ledgerPurgeJob *LedgerPurgeJob
}

// NewJobManager creates a job manager wiring all background jobs.
func NewJobManager(
	dispatchHandler commands.RunDispatchCommandHandler,
	ledger *idempotency.Ledger,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob:    NewDispatchJob(dispatchHandler, logger),
		ledgerPurgeJob: NewLedgerPurgeJob(ledger, logger),
	}
}

// StartAll starts all scheduled jobs. A job that fails to start stops the
// ones already running.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.ledgerPurgeJob.Start(); err != nil {
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start ledger purge job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.dispatchJob.Stop()
	jm.ledgerPurgeJob.Stop()
}
