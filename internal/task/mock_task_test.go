package task

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
)

// mockTask implements the Task interface for testing
type mockTask struct {
	id       uuid.UUID
	taskType string
	executed atomic.Int32
	execFn   func(ctx context.Context) error
}

func newMockTask() *mockTask {
	return &mockTask{
		id:       uuid.New(),
		taskType: "mock",
	}
}

func (m *mockTask) ID() uuid.UUID {
	return m.id
}

func (m *mockTask) Type() string {
	return m.taskType
}

func (m *mockTask) Status() TaskStatus {
	if m.executed.Load() > 0 {
		return TaskStatusCompleted
	}
	return TaskStatusPending
}

func (m *mockTask) Execute(ctx context.Context) error {
	m.executed.Add(1)
	if m.execFn != nil {
		return m.execFn(ctx)
	}
	return nil
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
