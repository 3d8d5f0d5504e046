package models

import "time"

// TaskExecution is one append-only row in the automation execution log.
type TaskExecution struct {
	ID         string    `json:"id"`
	TaskType   TaskType  `json:"task_type"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
}

// TaskStats aggregates execution outcomes per task type for reporting.
type TaskStats struct {
	TaskType      TaskType `json:"task_type"`
	Runs          int      `json:"runs"`
	Failures      int      `json:"failures"`
	AvgDurationMs float64  `json:"avg_duration_ms"`
}
