// Package engine contains the job execution engine and the service metrics
// aggregator: the background tasks that drive submitted jobs through their
// state machine and keep the service-wide counters fresh.
package engine

import (
	"context"
	"fmt"
	"time"

	stderrors "errors"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"go-data-processor/internal/model"
	"go-data-processor/internal/pipeline"
	"go-data-processor/internal/store"
)

const defaultJobTimeout = 5 * time.Minute

// Emitter hands a job's final record set to an output sink.
type Emitter interface {
	Emit(ctx context.Context, records []model.DataRecord, format model.OutputFormat) error
}

// errCancelled signals that the job observed its advisory cancellation
// between stages; the attempt stops without marking the job failed.
var errCancelled = stderrors.New("job cancelled")

// Executor is the single serialized worker draining submitted jobs in
// arrival order. At most one job runs at a time; within a job, operations
// execute strictly in sequence.
type Executor struct {
	registry *store.JobRegistry
	records  *store.RecordStore
	metrics  *Metrics
	emitter  Emitter
	log      *logrus.Entry
	done     chan struct{}
}

func NewExecutor(registry *store.JobRegistry, records *store.RecordStore, metrics *Metrics, emitter Emitter) *Executor {
	return &Executor{
		registry: registry,
		records:  records,
		metrics:  metrics,
		emitter:  emitter,
		log:      logrus.WithField("component", "executor"),
		done:     make(chan struct{}),
	}
}

// Start launches the worker loop.
func (e *Executor) Start() {
	go e.loop()
}

// Stop closes the queue and waits for the in-flight job, if any, to finish.
func (e *Executor) Stop() {
	e.registry.Close()
	<-e.done
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		id, ok := e.registry.Dequeue()
		if !ok {
			return
		}
		e.process(id)
	}
}

func (e *Executor) process(id string) {
	job, ok := e.registry.Get(id)
	if !ok {
		return
	}
	log := e.log.WithField("job_id", id)

	// Cancelled while still queued: nothing to run.
	if !e.registry.MarkRunning(id) {
		log.WithField("status", job.Status).Info("skipping job, not runnable")
		return
	}
	log.WithField("name", job.Name).Info("processing job")

	cfg := job.Configuration
	attempts := cfg.RetryAttempts + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		// A retried attempt restarts from the first operation and its
		// result history reflects only this attempt.
		e.registry.ResetResults(id)

		start := time.Now()
		processed, err := e.runAttempt(id, cfg)
		elapsed := time.Since(start)

		if err == nil {
			e.registry.Complete(id, processed)
			e.metrics.RecordJob(elapsed, processed, true)
			log.WithFields(logrus.Fields{
				"records":  processed,
				"duration": elapsed,
			}).Info("job completed")
			return
		}
		if stderrors.Is(err, errCancelled) {
			log.Info("job cancelled, stopping early")
			return
		}

		lastErr = err
		e.registry.RecordAttemptError(id)
		log.WithFields(logrus.Fields{
			"attempt": attempt,
			"error":   err,
		}).Warn("job attempt failed")
	}

	e.registry.Fail(id, model.NewProcessingError(model.ErrorKind(lastErr), lastErr.Error(), ""))
	e.metrics.RecordJob(0, 0, false)
	log.WithField("error", lastErr).Error("job failed")
}

// runAttempt executes the whole pipeline once: load input, run every
// operation in configuration order, then hand the final set to the sink.
func (e *Executor) runAttempt(id string, cfg model.ProcessingConfig) (int, error) {
	timeout := defaultJobTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	input, err := e.loadInput(cfg)
	if err != nil {
		return 0, err
	}
	e.registry.SetInputCount(id, len(input))

	current := input
	for _, op := range cfg.Operations {
		// Cooperative cancellation: checked between stages, never
		// preemptively mid-stage.
		if e.registry.IsCancelled(id) {
			return 0, errCancelled
		}
		if ctx.Err() != nil {
			return 0, errors.Wrapf(ctx.Err(), "job timed out after %s", timeout)
		}

		stageStart := time.Now()
		out, perrs, err := pipeline.Apply(ctx, op, current, e.records, pipeline.Options{Workers: cfg.ParallelWorkers})
		if err != nil {
			return 0, errors.Wrapf(err, "operation %s", op.Type)
		}

		e.registry.AppendResult(id, model.ProcessingResult{
			Operation:        op.Type,
			RecordsProcessed: len(out),
			ExecutionTimeMs:  time.Since(stageStart).Milliseconds(),
			MemoryUsedBytes:  estimateBytes(out),
			Errors:           perrs,
			Metadata: map[string]interface{}{
				"input_records":  len(current),
				"output_records": len(out),
			},
		})
		current = out
	}

	if e.registry.IsCancelled(id) {
		return 0, errCancelled
	}
	if err := e.emitter.Emit(ctx, current, cfg.OutputFormat); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, errors.Wrapf(ctxErr, "job timed out after %s", timeout)
		}
		return 0, errors.Wrapf(model.ErrSink, "emit output: %v", err)
	}
	return len(current), nil
}

func (e *Executor) loadInput(cfg model.ProcessingConfig) ([]model.DataRecord, error) {
	source := cfg.InputSource
	if source == "" {
		// No source named: default to the first known set, resolved
		// deterministically by lexical order.
		sources := e.records.Sources()
		if len(sources) == 0 {
			return nil, errors.Wrap(model.ErrNoInputData, "record store is empty")
		}
		source = sources[0]
	}

	input, ok := e.records.Get(source)
	if !ok || len(input) == 0 {
		return nil, errors.Wrapf(model.ErrNoInputData, "source %q", source)
	}
	return input, nil
}

// estimateBytes is a rough working-set figure for the stage result, not an
// allocator measurement.
func estimateBytes(records []model.DataRecord) int {
	const recordOverhead = 128
	total := 0
	for _, rec := range records {
		total += recordOverhead + len(fmt.Sprintf("%v", rec.Data))
	}
	return total
}
