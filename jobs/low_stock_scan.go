package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-bakery/internal/jobs"
	"github.com/odyssey-erp/odyssey-bakery/internal/ingredients"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LowStockSource lists the ingredients at or below their threshold.
type LowStockSource interface {
	ListLowStock(ctx context.Context) ([]ingredients.Ingredient, error)
}

// LowStockScanJob logs low-stock ingredients and exports their count.
type LowStockScanJob struct {
	Source  LowStockSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLowStockScanJob wires dependencies for the scan handler.
func NewLowStockScanJob(source LowStockSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *LowStockScanJob {
	return &LowStockScanJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle processes low-stock scan tasks.
func (j *LowStockScanJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Source == nil {
		return errors.New("low stock scan: handler not configured")
	}
	if len(t.Payload()) > 0 {
		var payload LowStockScanPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	metrics := j.metrics()
	tracker := metrics.Track(TaskLowStockScan)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	items, err := j.Source.ListLowStock(ctx)
	if err != nil {
		logger.Error("low stock scan", slog.Any("error", err))
		return err
	}
	metrics.SetLowStock(len(items))
	for _, ing := range items {
		logger.Warn("ingredient low on stock",
			slog.Int64("ingredient_id", ing.ID),
			slog.String("name", ing.Name),
			slog.Float64("quantity", ing.Quantity),
			slog.Float64("min_threshold", ing.MinThreshold),
			slog.String("unit", ing.Unit),
		)
	}
	logger.Info("low stock scan complete", slog.Int("low_stock", len(items)))
	return nil
}

func (j *LowStockScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *LowStockScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
