package models

import (
	"time"

	"github.com/google/uuid"
)

// Job status enums. A job starts as processing and transitions exactly once
// to completed or failed; terminal rows are never mutated again.
const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

type Job struct {
	ID                uuid.UUID  `json:"job_id"`
	OwnerID           uuid.UUID  `json:"owner_id"`
	Topic             string     `json:"topic"`
	Status            string     `json:"status"`
	CreatedAt         time.Time  `json:"created_at"`
	CompletedAt       *time.Time `json:"completed_at,omitempty"`
	ReportPath        *string    `json:"report_path,omitempty"`
	BlogPath          *string    `json:"blog_path,omitempty"`
	ErrorMessage      *string    `json:"error_message,omitempty"`
	ExecutionTimeSecs *int       `json:"execution_time,omitempty"`
	TokensUsed        *int       `json:"tokens_used,omitempty"`
	EstimatedCost     *float64   `json:"estimated_cost,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
