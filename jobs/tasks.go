// Package jobs defines the background tasks and the Asynq worker that runs
// them.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskDashboardWarmup pre-populates the dashboard caches.
	TaskDashboardWarmup = "dashboard:warmup"
	// TaskDashboardCacheBump invalidates the dashboard caches.
	TaskDashboardCacheBump = "dashboard:cache_bump"
)

// DashboardWarmupPayload bounds the datasets warmed by a warmup run.
type DashboardWarmupPayload struct {
	Months int `json:"months"`
	Limit  int `json:"limit"`
}

// NewDashboardWarmupTask constructs an Asynq task for a cache warmup.
func NewDashboardWarmupTask(payload DashboardWarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDashboardWarmup, data), nil
}

// NewDashboardCacheBumpTask constructs an Asynq task for a cache bump.
func NewDashboardCacheBumpTask() *asynq.Task {
	return asynq.NewTask(TaskDashboardCacheBump, nil)
}
