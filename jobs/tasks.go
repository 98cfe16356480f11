package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLowStockScan reports ingredients at or below their minimum threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskDashboardWarmup pre-computes the cached sales dashboard.
	TaskDashboardWarmup = "reports:dashboard_warmup"
)

// LowStockScanPayload carries optional scan parameters.
type LowStockScanPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// DashboardWarmupPayload carries optional warmup parameters.
type DashboardWarmupPayload struct {
	RequestedAt time.Time `json:"requested_at"`
}

// NewLowStockScanTask constructs the scan task.
func NewLowStockScanTask() (*asynq.Task, error) {
	data, err := json.Marshal(LowStockScanPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewDashboardWarmupTask constructs the warmup task.
func NewDashboardWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(DashboardWarmupPayload{RequestedAt: time.Now().UTC()})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewTask builds a supported task by type name with its default payload.
func NewTask(name string) (*asynq.Task, error) {
	switch name {
	case TaskLowStockScan:
		return NewLowStockScanTask()
	case TaskDashboardWarmup:
		return NewDashboardWarmupTask()
	default:
		return nil, fmt.Errorf("jobs: unsupported job %s", name)
	}
}
