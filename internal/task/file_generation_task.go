package task

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-studygen/internal/domain"
)

// FileGenerator produces flashcards from one file.
type FileGenerator interface {
	Generate(ctx context.Context, file domain.SourceFile, count int) (*domain.GenerationResult, error)
}

// FileGenerationTask generates flashcards for a single uploaded file.
//
// The task runs under the context of the caller that submitted it, so a
// cancelled request stops its tasks; stopping the worker pool stops them too.
type FileGenerationTask struct {
	id        uuid.UUID
	file      domain.SourceFile
	count     int
	generator FileGenerator
	reqCtx    context.Context

	mu     sync.Mutex
	status TaskStatus
	result *domain.GenerationResult
	err    error
	done   chan struct{}
}

// NewFileGenerationTask creates a pending task for file.
func NewFileGenerationTask(
	ctx context.Context,
	file domain.SourceFile,
	count int,
	generator FileGenerator,
) *FileGenerationTask {
	return &FileGenerationTask{
		id:        uuid.New(),
		file:      file,
		count:     count,
		generator: generator,
		reqCtx:    ctx,
		status:    TaskStatusPending,
		done:      make(chan struct{}),
	}
}

// ID returns the task's unique identifier
func (t *FileGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *FileGenerationTask) Type() string {
	return TaskTypeFileGeneration
}

// Status returns the current task status
func (t *FileGenerationTask) Status() TaskStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// File returns the file the task generates from.
func (t *FileGenerationTask) File() domain.SourceFile {
	return t.file
}

// Execute runs generation for the file. ctx is the worker context; the task
// stops when either it or the submitting context is done.
func (t *FileGenerationTask) Execute(ctx context.Context) error {
	t.setStatus(TaskStatusProcessing)

	runCtx, cancel := context.WithCancel(t.reqCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	result, err := t.generator.Generate(runCtx, t.file, t.count)
	t.finish(result, err)

	return err
}

// Fail completes the task with err without running it.
func (t *FileGenerationTask) Fail(err error) {
	t.finish(nil, err)
}

// Done is closed once the task has finished.
func (t *FileGenerationTask) Done() <-chan struct{} {
	return t.done
}

// Outcome returns the task result. It is only meaningful after Done is closed.
func (t *FileGenerationTask) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Outcome{
		FileName: t.file.Name,
		Result:   t.result,
		Err:      t.err,
	}
}

func (t *FileGenerationTask) setStatus(status TaskStatus) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// finish records the result once; later calls are ignored.
func (t *FileGenerationTask) finish(result *domain.GenerationResult, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	select {
	case <-t.done:
		return
	default:
	}

	t.result = result
	t.err = err
	if err != nil {
		t.status = TaskStatusFailed
	} else {
		t.status = TaskStatusCompleted
	}
	close(t.done)
}
