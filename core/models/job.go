package models

import "time"

// Job represents a unit of long-running work tracked by a registry.
// The registry owns the record for mutation; everyone else sees snapshots.
type Job struct {
	ID             string
	Kind           JobKind
	Status         JobStatus
	InputParams    map[string]string
	CreatedAt      time.Time
	StartedAt      *time.Time
	CompletedAt    *time.Time
	Logs           []string
	Metrics        map[string]float64
	ResultLocation *string
	ErrorMessage   *string
}

// JobKind represents the kind of job
type JobKind string

const (
	JobKindTraining   JobKind = "training"
	JobKindDeployment JobKind = "deployment"
)

// JobStatus represents the current status of a job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// JobSnapshot is the immutable copy of a Job handed to callers.
type JobSnapshot struct {
	ID             string             `json:"id"`
	Kind           JobKind            `json:"kind"`
	Status         JobStatus          `json:"status"`
	InputParams    map[string]string  `json:"input_params"`
	CreatedAt      time.Time          `json:"created_at"`
	StartedAt      *time.Time         `json:"started_at"`
	CompletedAt    *time.Time         `json:"completed_at"`
	Logs           []string           `json:"logs"`
	Metrics        map[string]float64 `json:"metrics"`
	ResultLocation *string            `json:"result_location"`
	ErrorMessage   *string            `json:"error_message"`
}

// Snapshot returns a deep copy of the job. Logs, metrics and params are
// copied so callers cannot race with the owning execution task.
func (j *Job) Snapshot() JobSnapshot {
	snap := JobSnapshot{
		ID:        j.ID,
		Kind:      j.Kind,
		Status:    j.Status,
		CreatedAt: j.CreatedAt,
	}

	if len(j.InputParams) > 0 {
		snap.InputParams = make(map[string]string, len(j.InputParams))
		for k, v := range j.InputParams {
			snap.InputParams[k] = v
		}
	}
	if len(j.Logs) > 0 {
		snap.Logs = make([]string, len(j.Logs))
		copy(snap.Logs, j.Logs)
	}
	if len(j.Metrics) > 0 {
		snap.Metrics = make(map[string]float64, len(j.Metrics))
		for k, v := range j.Metrics {
			snap.Metrics[k] = v
		}
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		snap.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		snap.CompletedAt = &t
	}
	if j.ResultLocation != nil {
		s := *j.ResultLocation
		snap.ResultLocation = &s
	}
	if j.ErrorMessage != nil {
		s := *j.ErrorMessage
		snap.ErrorMessage = &s
	}

	return snap
}
