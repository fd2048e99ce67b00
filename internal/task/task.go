package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a queued unit of work.
type TaskStatus string

// A task moves pending → processing → completed or failed. Tasks failed
// before a worker picks them up skip processing.
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// TaskTypeFileGeneration identifies FileGenerationTask in logs.
const TaskTypeFileGeneration = "file_generation"

// Task is a unit of work run by the worker pool.
type Task interface {
	ID() uuid.UUID
	Type() string
	Status() TaskStatus

	// Execute runs the task. ctx is cancelled when the pool stops.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consuming side of a queue. The channel is closed
// when the queue is closed.
type TaskQueueReader interface {
	Tasks() <-chan Task
}

// TaskQueueWriter is the producing side of a queue.
type TaskQueueWriter interface {
	// Enqueue never blocks: it fails with ErrQueueFull or ErrQueueClosed.
	Enqueue(task Task) error
	Close()
}
