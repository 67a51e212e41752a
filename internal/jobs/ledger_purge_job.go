package jobs

import (
	"context"
	"log/slog"

	"skycourier/internal/core/application/idempotency"

	"github.com/robfig/cron/v3"
)

// purge runs at the top of every hour
const purgeSchedule = "0 0 * * * *"

// LedgerPurgeJob removes expired idempotency records so the ledger table
// stays bounded by the retention TTL.
type LedgerPurgeJob struct {
	ledger *idempotency.Ledger
	cron   *cron.Cron
	logger *slog.Logger
}

// NewLedgerPurgeJob creates the scheduled purge job.
func NewLedgerPurgeJob(ledger *idempotency.Ledger, logger *slog.Logger) *LedgerPurgeJob {
	return &LedgerPurgeJob{
		ledger: ledger,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "ledger_purge_job"),
	}
}

// Start schedules the purge.
func (j *LedgerPurgeJob) Start() error {
	_, err := j.cron.AddFunc(purgeSchedule, func() {
		ctx := context.Background()

		removed, purgeErr := j.ledger.PurgeExpired(ctx)
		if purgeErr != nil {
			j.logger.ErrorContext(ctx, "Ledger purge failed", "error", purgeErr)
			return
		}
		if removed > 0 {
			j.logger.InfoContext(ctx, "Expired idempotency records purged", "count", removed)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ledger purge job started")
	return nil
}

// Stop stops the purge job.
func (j *LedgerPurgeJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Ledger purge job stopped")
}
