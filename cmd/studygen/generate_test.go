package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"testing"

	"github.com/phrazzld/scry-studygen/internal/api"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/extract"
	"github.com/phrazzld/scry-studygen/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner answers each file with count cards, or with an error for names
// listed in failures.
type fakeRunner struct {
	failures map[string]error
	files    []domain.SourceFile
	count    int
	stopped  bool
}

func (f *fakeRunner) RunBatch(_ context.Context, files []domain.SourceFile, count int) []task.Outcome {
	f.files = files
	f.count = count

	outcomes := make([]task.Outcome, len(files))
	for i, file := range files {
		if err, ok := f.failures[file.Name]; ok {
			outcomes[i] = task.Outcome{FileName: file.Name, Err: err}
			continue
		}
		cards := make([]domain.Flashcard, count)
		for j := range cards {
			cards[j] = domain.NewFlashcard(fmt.Sprintf("Q%d", j+1), "A", domain.SourceAIGenerated, "", "")
		}
		outcomes[i] = task.Outcome{FileName: file.Name, Result: domain.NewGenerationResult(cards, count)}
	}
	return outcomes
}

type cliHarness struct {
	runner        *fakeRunner
	runnerCreated bool
	runnerConfig  *config.Config
	files         map[string][]byte
	stdout        *bytes.Buffer
	stderr        *bytes.Buffer
}

func newHarness(t *testing.T) *cliHarness {
	t.Helper()

	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	return &cliHarness{
		runner: &fakeRunner{failures: map[string]error{}},
		files:  map[string][]byte{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
}

func (h *cliHarness) run(args ...string) error {
	deps := dependencies{
		loadConfig: func(string) (*config.Config, error) {
			return &config.Config{
				Server:   config.ServerConfig{LogLevel: "info"},
				Pipeline: config.PipelineConfig{DefaultCardCount: 3, MaxCardCount: 10},
				Task:     config.TaskConfig{WorkerCount: 1, QueueSize: 1},
			}, nil
		},
		readFile: func(name string) ([]byte, error) {
			content, ok := h.files[name]
			if !ok {
				return nil, fs.ErrNotExist
			}
			return content, nil
		},
		newRunner: func(_ context.Context, cfg *config.Config, _ *slog.Logger) (api.BatchRunner, func(), error) {
			h.runnerCreated = true
			h.runnerConfig = cfg
			return h.runner, func() { h.runner.stopped = true }, nil
		},
	}

	cmd := newRootCmd(deps)
	cmd.SetOut(h.stdout)
	cmd.SetErr(h.stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func (h *cliHarness) results(t *testing.T) []api.FileResultResponse {
	t.Helper()

	var resp api.GenerateFlashcardsResponse
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &resp))
	return resp.Results
}

func TestGenerate_Success(t *testing.T) {
	h := newHarness(t)
	h.files["docs/notes.txt"] = []byte("Mitosis has four phases.")
	h.files["slide.png"] = []byte("\x89PNG\r\n\x1a\n")

	err := h.run("generate", "--count", "2", "docs/notes.txt", "slide.png")

	require.NoError(t, err)
	results := h.results(t)
	require.Len(t, results, 2)
	assert.Equal(t, "notes.txt", results[0].File)
	assert.Equal(t, 2, results[0].Produced)
	assert.Equal(t, "slide.png", results[1].File)

	assert.Equal(t, 2, h.runner.count)
	require.Len(t, h.runner.files, 2)
	assert.Empty(t, h.runner.files[0].ContentType)
	assert.True(t, h.runner.stopped)
}

func TestGenerate_QueueHoldsEveryFile(t *testing.T) {
	h := newHarness(t)
	names := []string{"a.txt", "b.txt", "c.txt"}
	for _, name := range names {
		h.files[name] = []byte("text of " + name)
	}

	require.NoError(t, h.run(append([]string{"generate"}, names...)...))

	require.NotNil(t, h.runnerConfig)
	assert.Equal(t, 3, h.runnerConfig.Task.QueueSize)
	assert.Equal(t, 1, h.runnerConfig.Task.WorkerCount)
	results := h.results(t)
	require.Len(t, results, 3)
	for i, result := range results {
		assert.Equal(t, names[i], result.File)
		assert.Empty(t, result.Error)
	}
}

func TestGenerate_DefaultCount(t *testing.T) {
	h := newHarness(t)
	h.files["notes.txt"] = []byte("text")

	require.NoError(t, h.run("generate", "notes.txt"))

	assert.Equal(t, 3, h.runner.count)
}

func TestGenerate_PartialFailure(t *testing.T) {
	h := newHarness(t)
	h.files["notes.txt"] = []byte("text")
	h.files["report.docx"] = []byte("PK")
	h.runner.failures["report.docx"] = fmt.Errorf("%w: report.docx", extract.ErrUnsupportedFormat)

	err := h.run("generate", "report.docx", "missing.txt", "notes.txt")

	require.NoError(t, err, "one file succeeded")
	results := h.results(t)
	require.Len(t, results, 3)

	assert.Equal(t, "report.docx", results[0].File)
	assert.Equal(t, http.StatusUnsupportedMediaType, results[0].Status)

	assert.Equal(t, "missing.txt", results[1].File)
	assert.Equal(t, http.StatusBadRequest, results[1].Status)

	assert.Equal(t, "notes.txt", results[2].File)
	assert.Empty(t, results[2].Error)
	assert.Len(t, h.runner.files, 2, "unreadable file is not submitted")
}

func TestGenerate_AllFailed(t *testing.T) {
	h := newHarness(t)
	h.files["a.txt"] = []byte("text")
	h.runner.failures["a.txt"] = errors.New("boom")

	err := h.run("generate", "a.txt", "missing.txt")

	assert.ErrorIs(t, err, errAllFailed)
	assert.Len(t, h.results(t), 2, "results are still written")
}

func TestGenerate_NoReadableFiles(t *testing.T) {
	h := newHarness(t)

	err := h.run("generate", "missing.txt")

	assert.ErrorIs(t, err, errAllFailed)
	assert.False(t, h.runnerCreated, "pipeline is not built when nothing can be read")
}

func TestGenerate_InvalidArguments(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no files", []string{"generate"}, "requires at least 1 arg"},
		{"count above maximum", []string{"generate", "--count", "11", "a.txt"}, "--count must be between 1 and 10"},
		{"negative count", []string{"generate", "-n", "-1", "a.txt"}, "--count must be between 1 and 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.files["a.txt"] = []byte("text")

			err := h.run(tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, h.runnerCreated)
		})
	}
}
