package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"go-data-processor/internal/model"
)

// JobRegistry owns every submitted job and the FIFO queue feeding the
// execution engine. All status transitions go through the guarded methods
// below, which enforce the state graph: a terminal job never changes again.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*model.ProcessingJob

	queueMu   sync.Mutex
	queueCond *sync.Cond
	queue     []string
	closed    bool
}

func NewJobRegistry() *JobRegistry {
	r := &JobRegistry{jobs: make(map[string]*model.ProcessingJob)}
	r.queueCond = sync.NewCond(&r.queueMu)
	return r
}

// Submit registers a new pending job and enqueues it for execution.
// It only fails once the queue has been closed for shutdown.
func (r *JobRegistry) Submit(name string, config model.ProcessingConfig) (string, error) {
	job := &model.ProcessingJob{
		ID:            uuid.New().String(),
		Name:          name,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
		Configuration: config,
		Results:       []model.ProcessingResult{},
	}

	r.queueMu.Lock()
	if r.closed {
		r.queueMu.Unlock()
		return "", errors.Wrap(model.ErrFatal, "job queue closed")
	}

	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()

	r.queue = append(r.queue, job.ID)
	r.queueCond.Signal()
	r.queueMu.Unlock()

	return job.ID, nil
}

// Dequeue blocks until a job id is available or the queue is closed.
// Jobs come out strictly in submission order.
func (r *JobRegistry) Dequeue() (string, bool) {
	r.queueMu.Lock()
	defer r.queueMu.Unlock()
	for len(r.queue) == 0 {
		if r.closed {
			return "", false
		}
		r.queueCond.Wait()
	}
	id := r.queue[0]
	r.queue = r.queue[1:]
	return id, true
}

// Close stops accepting submissions and unblocks Dequeue once the queue
// drains.
func (r *JobRegistry) Close() {
	r.queueMu.Lock()
	r.closed = true
	r.queueCond.Broadcast()
	r.queueMu.Unlock()
}

// Get returns a snapshot of the job; results are copied so callers cannot
// observe later mutations.
func (r *JobRegistry) Get(id string) (model.ProcessingJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return model.ProcessingJob{}, false
	}
	return snapshot(job), true
}

// List returns a snapshot of all known jobs. Order is not guaranteed.
func (r *JobRegistry) List() []model.ProcessingJob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.ProcessingJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, snapshot(job))
	}
	return out
}

// Cancel marks a non-terminal job cancelled. Cancellation is advisory:
// the execution engine observes it between stages.
func (r *JobRegistry) Cancel(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return errors.Wrapf(model.ErrNotFound, "job %s", id)
	}
	if !job.Status.CanTransition(model.StatusCancelled) {
		return errors.Wrapf(model.ErrInvalidState, "job %s is %s", id, job.Status)
	}
	now := time.Now().UTC()
	job.Status = model.StatusCancelled
	job.CompletedAt = &now
	return nil
}

// MarkRunning moves a pending job to running and stamps started_at.
// Returns false if the job was cancelled before execution began.
func (r *JobRegistry) MarkRunning(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || !job.Status.CanTransition(model.StatusRunning) {
		return false
	}
	now := time.Now().UTC()
	job.Status = model.StatusRunning
	job.StartedAt = &now
	return true
}

// Complete moves a running job to its completed terminal state.
func (r *JobRegistry) Complete(id string, processed int) bool {
	return r.finish(id, model.StatusCompleted, func(job *model.ProcessingJob) {
		job.ProcessedCount = processed
	})
}

// Fail moves a running job to its failed terminal state, recording the
// fatal stage error for diagnosis. Results accumulated before the failure
// are retained; the fatal cause itself lives on LastError.
func (r *JobRegistry) Fail(id string, cause model.ProcessingError) bool {
	return r.finish(id, model.StatusFailed, func(job *model.ProcessingJob) {
		job.LastError = &cause
	})
}

func (r *JobRegistry) finish(id string, status model.JobStatus, apply func(*model.ProcessingJob)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok || !job.Status.CanTransition(status) {
		return false
	}
	now := time.Now().UTC()
	job.Status = status
	job.CompletedAt = &now
	if apply != nil {
		apply(job)
	}
	return true
}

// IsCancelled reports whether the job has been cancelled. Checked by the
// execution engine between stages.
func (r *JobRegistry) IsCancelled(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	return ok && job.Status == model.StatusCancelled
}

// AppendResult records one stage outcome on the job.
func (r *JobRegistry) AppendResult(id string, result model.ProcessingResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Results = append(job.Results, result)
	}
}

// ResetResults clears accumulated results at the start of a retry attempt
// so the history reflects only the final attempt.
func (r *JobRegistry) ResetResults(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.Results = job.Results[:0]
	}
}

// SetInputCount records the size of the loaded input set.
func (r *JobRegistry) SetInputCount(id string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.InputCount = n
	}
}

// RecordAttemptError increments the job's error counter. Called once per
// failed execution attempt.
func (r *JobRegistry) RecordAttemptError(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.ErrorCount++
	}
}

// ActiveJobs counts jobs in a non-terminal state.
func (r *JobRegistry) ActiveJobs() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, job := range r.jobs {
		if !job.Status.Terminal() {
			n++
		}
	}
	return n
}

func snapshot(job *model.ProcessingJob) model.ProcessingJob {
	out := *job
	out.Results = make([]model.ProcessingResult, len(job.Results))
	copy(out.Results, job.Results)
	return out
}
