package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-bakery/internal/jobs"
	"github.com/odyssey-erp/odyssey-bakery/internal/reports"
)

// DashboardBuilder computes, and caches, the sales dashboard.
type DashboardBuilder interface {
	Dashboard(ctx context.Context) (reports.Dashboard, error)
}

// DashboardWarmupJob keeps the dashboard cache warm between mutations.
type DashboardWarmupJob struct {
	Reports DashboardBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDashboardWarmupJob wires dependencies for the warmup handler.
func NewDashboardWarmupJob(builder DashboardBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{Reports: builder, Logger: logger, Metrics: metrics}
}

// Handle processes dashboard warmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	metrics := j.Metrics
	if metrics == nil {
		metrics = defaultJobMetrics
	}
	tracker := metrics.Track(TaskDashboardWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d, err := j.Reports.Dashboard(ctx)
	if err != nil {
		logger.Error("dashboard warmup", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard warmed",
		slog.Int("today_transactions", d.Today.Transactions),
		slog.Int("week_transactions", d.Week.Transactions),
	)
	return nil
}
