package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/redact"
)

// ErrRunnerStopped is reported for tasks that were still queued when the
// runner stopped.
var ErrRunnerStopped = errors.New("task runner stopped")

// Outcome is the per-file result of a batch: either Result or Err is set.
type Outcome struct {
	FileName string
	Result   *domain.GenerationResult
	Err      error
}

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many files are processed concurrently
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount: 1,
		QueueSize:   100,
	}
}

// TaskRunner processes batches of files on a shared worker pool.
type TaskRunner struct {
	generator FileGenerator
	queue     *TaskQueue
	pool      *WorkerPool
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewTaskRunner creates a TaskRunner. Call Start before submitting batches.
func NewTaskRunner(generator FileGenerator, config TaskRunnerConfig, logger *slog.Logger) (*TaskRunner, error) {
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	poolConfig := DefaultWorkerPoolConfig()
	if config.WorkerCount > 0 {
		poolConfig.WorkerCount = config.WorkerCount
	}

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, poolConfig, logger)

	r := &TaskRunner{
		generator: generator,
		queue:     queue,
		pool:      pool,
		logger:    logger,
	}
	pool.SetErrorHandler(r.logFailure)

	return r, nil
}

// logFailure records which file a failed task belonged to. The error text is
// redacted before logging.
func (r *TaskRunner) logFailure(task Task, err error) {
	ft, ok := task.(*FileGenerationTask)
	if !ok {
		return
	}
	r.logger.Warn("generation task failed",
		"task_id", ft.ID(),
		"file_name", ft.File().Name,
		"error", redact.Error(err))
}

// Start launches the worker pool.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started || r.stopped {
		return
	}
	r.started = true
	r.pool.Start()
}

// Stop closes the queue, stops the workers and fails any task left queued.
func (r *TaskRunner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	r.stopped = true

	r.queue.Close()
	r.pool.Stop()

	for task := range r.queue.Tasks() {
		if ft, ok := task.(*FileGenerationTask); ok {
			ft.Fail(ErrRunnerStopped)
		}
	}
}

// RunBatch generates count cards for each file and waits for every file to
// finish. Outcomes are returned in input order; one file failing does not
// affect the others.
func (r *TaskRunner) RunBatch(ctx context.Context, files []domain.SourceFile, count int) []Outcome {
	tasks := make([]*FileGenerationTask, len(files))

	for i, file := range files {
		task := NewFileGenerationTask(ctx, file, count, r.generator)
		tasks[i] = task

		if err := r.queue.Enqueue(task); err != nil {
			r.logger.WarnContext(ctx, "could not queue file for generation",
				"file_name", file.Name,
				"error", err)
			task.Fail(fmt.Errorf("file %s not processed: %w", file.Name, err))
		}
	}

	r.logger.InfoContext(ctx, "batch submitted", "file_count", len(files), "requested_per_file", count)

	outcomes := make([]Outcome, len(tasks))
	for i, task := range tasks {
		outcomes[i] = awaitOutcome(ctx, task)
	}

	return outcomes
}

// awaitOutcome waits for task to finish or ctx to end. A task that has
// already finished always reports its own outcome, even when ctx is done too.
func awaitOutcome(ctx context.Context, task *FileGenerationTask) Outcome {
	select {
	case <-task.Done():
		return task.Outcome()
	default:
	}

	select {
	case <-task.Done():
		return task.Outcome()
	case <-ctx.Done():
		select {
		case <-task.Done():
			return task.Outcome()
		default:
			return Outcome{FileName: task.File().Name, Err: ctx.Err()}
		}
	}
}
