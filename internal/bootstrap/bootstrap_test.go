package bootstrap_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/phrazzld/scry-studygen/internal/bootstrap"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/mocks"
	"github.com/phrazzld/scry-studygen/internal/platform/gemini"
	"github.com/phrazzld/scry-studygen/internal/platform/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{
			Provider:        config.ProviderGemini,
			GeminiAPIKey:    "test-key",
			ModelName:       "gemini-2.0-flash",
			MaxOutputTokens: 1000,
			Temperature:     0.7,
			MaxRetries:      3,
			RetryDelayMs:    1,
		},
		Pipeline: config.PipelineConfig{
			MaxChunkSize:     8000,
			ChunkDelayMs:     0,
			DefaultCardCount: 10,
			MaxCardCount:     100,
		},
		Task: config.TaskConfig{
			WorkerCount: 2,
			QueueSize:   10,
		},
	}
}

func TestNewCompleter(t *testing.T) {
	ctx := context.Background()

	t.Run("gemini", func(t *testing.T) {
		c, err := bootstrap.NewCompleter(ctx, testConfig().LLM, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &gemini.Completer{}, c)
	})

	t.Run("openai", func(t *testing.T) {
		cfg := testConfig().LLM
		cfg.Provider = config.ProviderOpenAI
		cfg.OpenAIAPIKey = "sk-test"

		c, err := bootstrap.NewCompleter(ctx, cfg, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, &openai.Completer{}, c)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := testConfig().LLM
		cfg.Provider = "claude"

		_, err := bootstrap.NewCompleter(ctx, cfg, discardLogger())
		assert.ErrorContains(t, err, "unknown LLM provider")
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := bootstrap.NewCompleter(ctx, testConfig().LLM, nil)
		assert.ErrorContains(t, err, "logger cannot be nil")
	})
}

func TestNewPipelineWithCompleter_GeneratesCards(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses(
		`[{"question":"What is ATP?","answer":"The energy currency of the cell."}]`,
	)

	p, err := bootstrap.NewPipelineWithCompleter(testConfig(), completer, discardLogger())
	require.NoError(t, err)

	file, err := domain.NewSourceFile("bio.txt", "text/plain", []byte("ATP stores energy."))
	require.NoError(t, err)

	result, err := p.Generate(context.Background(), file, 1)

	require.NoError(t, err)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "What is ATP?", result.Cards[0].Question)
	assert.Equal(t, 1, completer.CallCount())

	requests := completer.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "gemini-2.0-flash", requests[0].Model)
}

func TestNewPipelineWithCompleter_Errors(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses("[]")

	_, err := bootstrap.NewPipelineWithCompleter(nil, completer, discardLogger())
	assert.ErrorContains(t, err, "config cannot be nil")

	_, err = bootstrap.NewPipelineWithCompleter(testConfig(), nil, discardLogger())
	assert.ErrorContains(t, err, "completer cannot be nil")

	cfg := testConfig()
	cfg.Pipeline.MaxChunkSize = 0
	_, err = bootstrap.NewPipelineWithCompleter(cfg, completer, discardLogger())
	assert.ErrorContains(t, err, "chunker")
}

func TestNewTaskRunner(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses(`[{"question":"Q","answer":"A"}]`)
	p, err := bootstrap.NewPipelineWithCompleter(testConfig(), completer, discardLogger())
	require.NoError(t, err)

	runner, err := bootstrap.NewTaskRunner(testConfig(), p, discardLogger())
	require.NoError(t, err)

	runner.Start()
	defer runner.Stop()

	file, err := domain.NewSourceFile("notes.md", "", []byte("# Cells\nCells are small."))
	require.NoError(t, err)

	outcomes := runner.RunBatch(context.Background(), []domain.SourceFile{file}, 1)

	require.Len(t, outcomes, 1)
	require.NoError(t, outcomes[0].Err)
	assert.Equal(t, "notes.md", outcomes[0].FileName)
	assert.Equal(t, 1, outcomes[0].Result.Produced)
}
