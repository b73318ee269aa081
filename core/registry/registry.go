// Package registry owns the lifecycle of long-running jobs: creation,
// background execution, lookup, cancellation and enumeration. One registry
// exists per job kind (training, deployment).
package registry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ml-agent-backend/core/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a job id is not known to the registry.
// Callers are expected to branch on it routinely.
var ErrNotFound = errors.New("job not found")

// Runner performs the domain-specific work of a job. It receives a per-job
// context that is cancelled when the job is cancelled, and an Execution
// handle for appending logs and metrics. On success it returns the result
// location (model path, endpoint URL).
type Runner func(ctx context.Context, exec *Execution) (string, error)

type jobRecord struct {
	job    models.Job
	cancel context.CancelFunc
}

// Registry tracks jobs of a single kind. All access to the jobs map is
// serialized by one mutex; readers always get deep copies.
type Registry struct {
	kind   models.JobKind
	runner Runner

	mu    sync.Mutex
	jobs  map[string]*jobRecord
	order []string
}

// New creates a registry for the given kind. The runner supplies the actual
// work; the registry only manages state.
func New(kind models.JobKind, runner Runner) *Registry {
	return &Registry{
		kind:   kind,
		runner: runner,
		jobs:   make(map[string]*jobRecord),
	}
}

// Kind returns the job kind this registry owns.
func (r *Registry) Kind() models.JobKind {
	return r.kind
}

// Create stores a new pending job and schedules its execution on a background
// goroutine. It returns immediately with a snapshot of the pending job; the
// job is observable via Get before Create returns.
func (r *Registry) Create(inputParams map[string]string) models.JobSnapshot {
	ctx, cancel := context.WithCancel(context.Background())

	job := models.Job{
		ID:        uuid.New().String(),
		Kind:      r.kind,
		Status:    models.JobStatusPending,
		CreatedAt: time.Now().UTC(),
		Metrics:   make(map[string]float64),
	}
	if len(inputParams) > 0 {
		job.InputParams = make(map[string]string, len(inputParams))
		for k, v := range inputParams {
			job.InputParams[k] = v
		}
	}

	r.mu.Lock()
	r.jobs[job.ID] = &jobRecord{job: job, cancel: cancel}
	r.order = append(r.order, job.ID)
	snap := job.Snapshot()
	r.mu.Unlock()

	go r.execute(ctx, job.ID)

	return snap
}

// Get returns a snapshot of the job or ErrNotFound.
func (r *Registry) Get(id string) (models.JobSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return models.JobSnapshot{}, ErrNotFound
	}
	return rec.job.Snapshot(), nil
}

// Logs returns a copy of the job's log lines in append order, or ErrNotFound.
func (r *Registry) Logs(id string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	logs := make([]string, len(rec.job.Logs))
	copy(logs, rec.job.Logs)
	return logs, nil
}

// List returns snapshots of all jobs in creation order.
func (r *Registry) List() []models.JobSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snaps := make([]models.JobSnapshot, 0, len(r.order))
	for _, id := range r.order {
		snaps = append(snaps, r.jobs[id].job.Snapshot())
	}
	return snaps
}

// Cancel flips a pending or running job to cancelled and signals its context.
// Cancellation is cooperative: the background task may keep executing, but it
// will not overwrite the cancelled status. Returns false if the job does not
// exist or is already terminal.
func (r *Registry) Cancel(id string) bool {
	r.mu.Lock()

	rec, ok := r.jobs[id]
	if !ok || rec.job.Status.Terminal() {
		r.mu.Unlock()
		return false
	}

	now := time.Now().UTC()
	rec.job.Status = models.JobStatusCancelled
	rec.job.CompletedAt = &now
	rec.job.Logs = append(rec.job.Logs, fmt.Sprintf("Job %s cancelled", id))
	cancel := rec.cancel
	r.mu.Unlock()

	cancel()
	log.Printf("Cancelled %s job %s", r.kind, id)
	return true
}

// execute drives a single job through its lifecycle. It is the only writer of
// Running/Completed/Failed transitions for this job.
func (r *Registry) execute(ctx context.Context, id string) {
	exec, ok := r.begin(id)
	if !ok {
		// Cancelled before the goroutine got scheduled.
		return
	}

	result, err := r.runner(ctx, exec)
	r.finish(id, result, err)
}

// begin transitions Pending -> Running. Returns false when the job left
// Pending already (cancelled before start).
func (r *Registry) begin(id string) (*Execution, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok || rec.job.Status != models.JobStatusPending {
		return nil, false
	}

	now := time.Now().UTC()
	rec.job.Status = models.JobStatusRunning
	rec.job.StartedAt = &now
	rec.job.Logs = append(rec.job.Logs, fmt.Sprintf("Starting %s job %s", r.kind, id))
	log.Printf("Starting %s job %s", r.kind, id)

	return &Execution{reg: r, id: id}, true
}

// finish performs the terminal transition for a job unless cancellation won.
func (r *Registry) finish(id string, result string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.jobs[id]
	if !ok {
		return
	}
	if rec.job.Status.Terminal() {
		// Cancelled while running; the cancelled status stands.
		return
	}

	now := time.Now().UTC()
	rec.job.CompletedAt = &now

	if err != nil {
		msg := err.Error()
		rec.job.Status = models.JobStatusFailed
		rec.job.ErrorMessage = &msg
		rec.job.Logs = append(rec.job.Logs, fmt.Sprintf("Job failed: %s", msg))
		log.Printf("%s job %s failed: %v", r.kind, id, err)
		return
	}

	rec.job.Status = models.JobStatusCompleted
	if result != "" {
		rec.job.ResultLocation = &result
	}
	rec.job.Logs = append(rec.job.Logs, "Job completed successfully")
	log.Printf("%s job %s completed", r.kind, id)
}

// Execution is the handle a Runner uses to report progress. Writes are
// dropped once the job has left the running state.
type Execution struct {
	reg *Registry
	id  string
}

// ID returns the job id.
func (e *Execution) ID() string {
	return e.id
}

// Params returns a copy of the job's input parameters.
func (e *Execution) Params() map[string]string {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()

	rec, ok := e.reg.jobs[e.id]
	if !ok {
		return nil
	}
	params := make(map[string]string, len(rec.job.InputParams))
	for k, v := range rec.job.InputParams {
		params[k] = v
	}
	return params
}

// AppendLog appends a log line to the job's execution trace.
func (e *Execution) AppendLog(line string) {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()

	rec, ok := e.reg.jobs[e.id]
	if !ok || rec.job.Status != models.JobStatusRunning {
		return
	}
	rec.job.Logs = append(rec.job.Logs, line)
}

// SetMetric records a named metric value for the job.
func (e *Execution) SetMetric(name string, value float64) {
	e.reg.mu.Lock()
	defer e.reg.mu.Unlock()

	rec, ok := e.reg.jobs[e.id]
	if !ok || rec.job.Status != models.JobStatusRunning {
		return
	}
	rec.job.Metrics[name] = value
}
