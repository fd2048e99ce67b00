package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/phrazzld/scry-studygen/internal/api"
	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/platform/logger"
	"github.com/phrazzld/scry-studygen/internal/redact"
	"github.com/phrazzld/scry-studygen/internal/task"
	"github.com/spf13/cobra"
)

// errAllFailed is returned when no file produced cards.
var errAllFailed = errors.New("flashcard generation failed for every file")

type generateOptions struct {
	count      int
	configPath string
	logLevel   string
}

func newGenerateCmd(deps dependencies) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate FILE...",
		Short: "Generate flashcards from one or more files",
		Long: `Generate reads each file, extracts its content and writes the generated
flashcards to stdout as JSON. Files are processed independently: a file that
fails is reported inline and the command only exits non-zero when every file
failed.

Examples:
  studygen generate notes.txt
  studygen generate --count 20 chapter1.pdf chapter2.pdf
  studygen generate --config ./config.yaml --log-level debug slide.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, deps, opts, args)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "count", "n", 0, "Cards to generate per file (default: pipeline.default_card_count)")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Override the configured log level")

	return cmd
}

func runGenerate(cmd *cobra.Command, deps dependencies, opts *generateOptions, args []string) error {
	ctx := cmd.Context()

	cfg, err := deps.loadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Server.LogLevel = opts.logLevel
	}

	// Logs go to stderr so stdout carries only the JSON result.
	log, err := logger.SetupWithWriter(cfg.Server, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	count := opts.count
	if count == 0 {
		count = cfg.Pipeline.DefaultCardCount
	}
	if count < 1 || count > cfg.Pipeline.MaxCardCount {
		return fmt.Errorf("--count must be between 1 and %d, got %d", cfg.Pipeline.MaxCardCount, count)
	}

	// Unreadable files are reported in place; the rest go to the runner.
	outcomes := make([]task.Outcome, len(args))
	files := make([]domain.SourceFile, 0, len(args))
	positions := make([]int, 0, len(args))

	for i, path := range args {
		file, err := loadSourceFile(deps, path)
		if err != nil {
			outcomes[i] = task.Outcome{FileName: filepath.Base(path), Err: err}
			continue
		}
		files = append(files, file)
		positions = append(positions, i)
	}

	if len(files) > 0 {
		// The runner serves this one batch, so every file must fit in the queue.
		cfg.Task.QueueSize = max(cfg.Task.QueueSize, len(files))

		runner, stop, err := deps.newRunner(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize pipeline: %w", err)
		}
		defer stop()

		for j, outcome := range runner.RunBatch(ctx, files, count) {
			outcomes[positions[j]] = outcome
		}
	}

	resp := api.GenerateFlashcardsResponse{Results: make([]api.FileResultResponse, len(outcomes))}
	failed := 0
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			log.Error("file generation failed",
				slog.String("file_name", outcome.FileName),
				slog.String("error", redact.Error(outcome.Err)))
		}
		resp.Results[i] = api.NewFileResultResponse(outcome)
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(resp); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if failed == len(outcomes) {
		return errAllFailed
	}
	return nil
}

// loadSourceFile reads path from disk. The content type is left for the
// classifier to resolve from the extension and content.
func loadSourceFile(deps dependencies, path string) (domain.SourceFile, error) {
	content, err := deps.readFile(path)
	if err != nil {
		return domain.SourceFile{}, fmt.Errorf("%w: cannot read %s: %w", domain.ErrValidation, filepath.Base(path), err)
	}

	return domain.NewSourceFile(filepath.Base(path), "", content)
}
