package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-studygen/internal/chunk"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/extract"
	"github.com/phrazzld/scry-studygen/internal/generation"
	"github.com/phrazzld/scry-studygen/internal/pipeline"
	"github.com/phrazzld/scry-studygen/internal/platform/gemini"
	"github.com/phrazzld/scry-studygen/internal/platform/openai"
	"github.com/phrazzld/scry-studygen/internal/task"
)

// Completer is a provider client that serves both text and image completions.
type Completer interface {
	generation.Completer
	generation.VisionCompleter
}

// NewCompleter creates the provider client selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	log := logger.With(slog.String("component", "llm_completer"), slog.String("provider", cfg.Provider))

	switch cfg.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewCompleter(ctx, log, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.ProviderOpenAI:
		c, err := openai.NewCompleter(log, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// NewPipeline builds the full pipeline using the configured provider.
func NewPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	completer, err := NewCompleter(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	return NewPipelineWithCompleter(cfg, completer, logger)
}

// NewPipelineWithCompleter builds the pipeline around an existing completer.
func NewPipelineWithCompleter(
	cfg *config.Config,
	completer Completer,
	logger *slog.Logger,
	options ...generation.GeneratorOption,
) (*pipeline.Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if completer == nil {
		return nil, errors.New("completer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	retrier, err := generation.NewRetrier(generation.RetryConfig{
		MaxRetries: cfg.LLM.MaxRetries,
		BaseDelay:  cfg.LLM.RetryDelay(),
	}, logger.With(slog.String("component", "retrier")))
	if err != nil {
		return nil, fmt.Errorf("failed to create retrier: %w", err)
	}

	generator, err := generation.NewGenerator(
		completer,
		completer,
		retrier,
		logger.With(slog.String("component", "generator")),
		generation.Options{
			Model:           cfg.LLM.ModelName,
			VisionModel:     cfg.LLM.VisionModel(),
			MaxOutputTokens: cfg.LLM.MaxOutputTokens,
			Temperature:     cfg.LLM.Temperature,
			ChunkDelay:      cfg.Pipeline.ChunkDelay(),
		},
		options...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	extractorLogger := logger.With(slog.String("component", "extractor"))
	extractor, err := extract.NewExtractor(extract.NewPDFPageExtractor(extractorLogger), extractorLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor: %w", err)
	}

	chunker, err := chunk.New(cfg.Pipeline.MaxChunkSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	return pipeline.New(extractor, chunker, generator, logger.With(slog.String("component", "pipeline")))
}

// NewTaskRunner wraps p in a task runner sized by cfg.Task. The runner is
// not started.
func NewTaskRunner(cfg *config.Config, p task.FileGenerator, logger *slog.Logger) (*task.TaskRunner, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	return task.NewTaskRunner(p, task.TaskRunnerConfig{
		WorkerCount: cfg.Task.WorkerCount,
		QueueSize:   cfg.Task.QueueSize,
	}, logger)
}
