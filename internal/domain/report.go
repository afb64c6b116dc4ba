package domain

import "time"

// Task outcome and run status constants.
const (
	TaskStatusSucceeded = "SUCCEEDED"
	TaskStatusFailed    = "FAILED"
	TaskStatusSkipped   = "SKIPPED"

	RunStatusPending   = "PENDING"
	RunStatusRunning   = "RUNNING"
	RunStatusCompleted = "COMPLETED"

	TriggerTypeManual    = "MANUAL"
	TriggerTypeScheduled = "SCHEDULED"
)

// DeliveryReceipt is the adapter's acknowledgement of a successful delivery.
type DeliveryReceipt struct {
	DestinationID string `json:"destination_id"`
	RecordCount   int    `json:"record_count"`
}

// TaskOutcome is the terminal state of one query task within one job run.
// Exactly one outcome exists per task per run.
type TaskOutcome struct {
	TaskName    string           `json:"task_name"`
	Status      string           `json:"status"`
	RecordCount int              `json:"record_count"`
	ErrorDetail string           `json:"error_detail,omitempty"`
	Receipt     *DeliveryReceipt `json:"receipt,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	Duration    time.Duration    `json:"duration"`
}

// JobReport aggregates all task outcomes for one job run. It is created fresh
// per run and handed to the caller, which owns it from then on.
type JobReport struct {
	JobName    string                 `json:"job_name"`
	RunID      string                 `json:"run_id"`
	StartedAt  time.Time              `json:"started_at"`
	FinishedAt time.Time              `json:"finished_at"`
	Outcomes   map[string]TaskOutcome `json:"outcomes"`
}

// Outcome returns the outcome for a task name.
func (r *JobReport) Outcome(taskName string) (TaskOutcome, bool) {
	o, ok := r.Outcomes[taskName]
	return o, ok
}

// Succeeded reports whether every task in the run succeeded. An empty report
// is vacuously successful.
func (r *JobReport) Succeeded() bool {
	for _, o := range r.Outcomes {
		if o.Status != TaskStatusSucceeded {
			return false
		}
	}
	return true
}

// SyncRun is the persisted record of one job run, owned by the run-history
// store rather than the runners.
type SyncRun struct {
	ID          string
	JobName     string
	Status      string
	TriggerType string
	StartedAt   *time.Time
	FinishedAt  *time.Time
	CreatedAt   time.Time
	Outcomes    []TaskOutcome
}
