package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Queue errors. Both are reported per file by the runner.
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded in-memory queue shared by the runner (writer) and
// the worker pool (reader).
type TaskQueue struct {
	logger *slog.Logger

	mu     sync.Mutex
	ch     chan Task
	closed bool
}

// NewTaskQueue creates a queue holding up to size tasks; sizes below one are
// raised to one.
func NewTaskQueue(size int, logger *slog.Logger) *TaskQueue {
	return &TaskQueue{
		logger: logger,
		ch:     make(chan Task, max(size, 1)),
	}
}

// Enqueue implements TaskQueueWriter.
func (q *TaskQueue) Enqueue(task Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- task:
	default:
		return fmt.Errorf("%w: %d tasks waiting", ErrQueueFull, cap(q.ch))
	}

	q.logger.Debug("task enqueued",
		"task_id", task.ID(),
		"task_type", task.Type(),
		"waiting", len(q.ch))
	return nil
}

// Close implements TaskQueueWriter. Tasks already queued stay readable.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
	q.logger.Info("task queue closed", "remaining", len(q.ch))
}

// Tasks implements TaskQueueReader.
func (q *TaskQueue) Tasks() <-chan Task {
	return q.ch
}
