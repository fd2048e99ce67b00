package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-studygen/internal/api"
	"github.com/phrazzld/scry-studygen/internal/bootstrap"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/task"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	taskRunner       *task.TaskRunner
	flashcardHandler *api.FlashcardHandler
}

// newApplication creates an application with the configured LLM provider.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	completer, err := bootstrap.NewCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}
	logger.Info("LLM client initialized successfully", "provider", cfg.LLM.Provider)

	return newApplicationWithCompleter(cfg, logger, completer)
}

// newApplicationWithCompleter wires the pipeline, task runner and HTTP
// handlers around completer. The task runner is not started.
func newApplicationWithCompleter(
	cfg *config.Config,
	logger *slog.Logger,
	completer bootstrap.Completer,
) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	app := &application{
		config: cfg,
		logger: logger,
	}

	p, err := bootstrap.NewPipelineWithCompleter(cfg, completer, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build pipeline: %w", err)
	}

	app.taskRunner, err = bootstrap.NewTaskRunner(cfg, p, logger.With("component", "task_runner"))
	if err != nil {
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}

	app.flashcardHandler, err = api.NewFlashcardHandler(app.taskRunner, api.FlashcardHandlerConfig{
		DefaultCount:   cfg.Pipeline.DefaultCardCount,
		MaxCount:       cfg.Pipeline.MaxCardCount,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create flashcard handler: %w", err)
	}

	logger.Info("Application initialized successfully",
		"worker_count", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	return app, nil
}

// Run starts the task runner and serves HTTP until ctx is cancelled.
func (app *application) Run(ctx context.Context) error {
	app.taskRunner.Start()
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	app.logger.Info("Application shutdown completed")
}
