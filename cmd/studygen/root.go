package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/phrazzld/scry-studygen/internal/api"
	"github.com/phrazzld/scry-studygen/internal/bootstrap"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/spf13/cobra"
)

// dependencies are the seams the commands use to reach configuration, the
// filesystem and the pipeline.
type dependencies struct {
	loadConfig func(path string) (*config.Config, error)
	readFile   func(name string) ([]byte, error)
	newRunner  func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.BatchRunner, func(), error)
}

func defaultDependencies() dependencies {
	return dependencies{
		loadConfig: func(path string) (*config.Config, error) {
			if path == "" {
				return config.Load()
			}
			return config.LoadFile(path)
		},
		readFile:  os.ReadFile,
		newRunner: newTaskRunner,
	}
}

// newTaskRunner builds and starts the pipeline task runner. The returned
// func stops it.
func newTaskRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (api.BatchRunner, func(), error) {
	p, err := bootstrap.NewPipeline(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	runner, err := bootstrap.NewTaskRunner(cfg, p, logger.With("component", "task_runner"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create task runner: %w", err)
	}

	runner.Start()
	return runner, runner.Stop, nil
}

func newRootCmd(deps dependencies) *cobra.Command {
	root := &cobra.Command{
		Use:   "studygen",
		Short: "studygen turns documents and images into flashcards",
		Long: `studygen extracts text from documents (plain text, Markdown, HTML, JSON,
CSV and PDF) or reads images directly, and asks a language model to write
question/answer flashcards from them.

Usage:
  studygen generate --count 10 notes.pdf diagram.png`,
		SilenceUsage: true,
	}

	root.AddCommand(newGenerateCmd(deps))
	return root
}
