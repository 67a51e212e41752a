package jobs

import (
	"context"
	"log/slog"

	"skycourier/internal/core/application/actor"
	"skycourier/internal/core/application/usecases/commands"
	"skycourier/internal/metrics"

	"github.com/robfig/cron/v3"
)

// dispatch runs every 15 seconds
const dispatchSchedule = "*/15 * * * * *"

// DispatchJob periodically runs the automatic dispatch pass that pairs
// waiting orders with eligible drones.
type DispatchJob struct {
	handler commands.RunDispatchCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewDispatchJob creates the scheduled dispatch job.
func NewDispatchJob(handler commands.RunDispatchCommandHandler, logger *slog.Logger) *DispatchJob {
	return &DispatchJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "dispatch_job"),
	}
}

// Start schedules the dispatch pass.
func (j *DispatchJob) Start() error {
	_, err := j.cron.AddFunc(dispatchSchedule, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Dispatch job started")
	return nil
}

// Stop stops the dispatch job.
func (j *DispatchJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Dispatch job stopped")
}

func (j *DispatchJob) run() {
	ctx := context.Background()

	cmd, err := commands.NewRunDispatchCommand(nil)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch command rejected", "error", err)
		return
	}

	result, err := j.handler.Handle(ctx, actor.System(), cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Dispatch run failed", "error", err)
		return
	}

	for _, assignment := range result.Assignments {
		metrics.DispatchAssignments.Inc()
		j.logger.InfoContext(ctx, "Order assigned",
			"order_id", assignment.OrderID.String(),
			"tracking_id", assignment.TrackingID,
			"drone_id", assignment.DroneID)
	}
	for _, skipped := range result.Skipped {
		metrics.DispatchSkips.WithLabelValues(skipped.Reason).Inc()
	}

	if len(result.Skipped) > 0 {
		j.logger.InfoContext(ctx, "Dispatch run left orders waiting",
			"assigned", len(result.Assignments),
			"skipped", len(result.Skipped))
	}
}
