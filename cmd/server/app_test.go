package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/phrazzld/scry-studygen/internal/api"
	"github.com/phrazzld/scry-studygen/internal/api/shared"
	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			LogLevel:       "info",
			MaxUploadBytes: 1 << 20,
		},
		LLM: config.LLMConfig{
			Provider:        config.ProviderGemini,
			GeminiAPIKey:    "test-key",
			ModelName:       "test-model",
			MaxOutputTokens: 1000,
			Temperature:     0.7,
			MaxRetries:      1,
			RetryDelayMs:    1,
		},
		Pipeline: config.PipelineConfig{
			MaxChunkSize:     8000,
			DefaultCardCount: 2,
			MaxCardCount:     20,
		},
		Task: config.TaskConfig{
			WorkerCount: 2,
			QueueSize:   10,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startTestApp builds an application around completer and serves its router.
func startTestApp(t *testing.T, completer *mocks.MockCompleter) *httptest.Server {
	t.Helper()

	app, err := newApplicationWithCompleter(testConfig(), testLogger(), completer)
	require.NoError(t, err)

	app.taskRunner.Start()
	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		app.cleanup()
	})

	return srv
}

func postFiles(t *testing.T, url string, files map[string]string) *http.Response {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for name, content := range files {
		part, err := writer.CreateFormFile(api.FilesField, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	resp, err := http.Post(url+"/api/flashcards", writer.FormDataContentType(), body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestNewApplicationWithCompleter(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses("[]")

	_, err := newApplicationWithCompleter(nil, testLogger(), completer)
	assert.ErrorContains(t, err, "config cannot be nil")

	_, err = newApplicationWithCompleter(testConfig(), nil, completer)
	assert.ErrorContains(t, err, "logger cannot be nil")

	cfg := testConfig()
	cfg.Server.MaxUploadBytes = 0
	_, err = newApplicationWithCompleter(cfg, testLogger(), completer)
	assert.ErrorContains(t, err, "flashcard handler")
}

func TestNewApplication_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "unknown"

	_, err := newApplication(context.Background(), cfg, testLogger())

	assert.ErrorContains(t, err, "failed to initialize LLM client")
}

func TestRouter_Health(t *testing.T) {
	srv := startTestApp(t, mocks.NewMockCompleterWithResponses("[]"))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(shared.TraceIDHeader))
}

func TestRouter_GenerateFlashcards(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses(
		`[{"question":"Q1","answer":"A1"},{"question":"Q2","answer":"A2"}]`,
	)
	srv := startTestApp(t, completer)

	resp := postFiles(t, srv.URL, map[string]string{"notes.txt": "Cells divide by mitosis."})

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.GenerateFlashcardsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "notes.txt", body.Results[0].File)
	assert.Equal(t, 2, body.Results[0].Requested, "default count applies")
	assert.Equal(t, 2, body.Results[0].Produced)
	assert.Equal(t, "Q1", body.Results[0].Cards[0].Question)
	assert.Equal(t, 1, completer.CallCount())
}

func TestRouter_UnsupportedFileReportedInline(t *testing.T) {
	completer := mocks.NewMockCompleterWithResponses("[]")
	srv := startTestApp(t, completer)

	resp := postFiles(t, srv.URL, map[string]string{"slides.pptx": "PK binary"})

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body api.GenerateFlashcardsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, http.StatusUnsupportedMediaType, body.Results[0].Status)
	assert.Contains(t, body.Results[0].Error, "Unsupported file format")
	assert.Equal(t, 0, completer.CallCount())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	srv := startTestApp(t, mocks.NewMockCompleterWithResponses("[]"))

	resp, err := http.Get(srv.URL + "/api/flashcards")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	app, err := newApplicationWithCompleter(testConfig(), testLogger(), mocks.NewMockCompleterWithResponses("[]"))
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- app.serve(ctx, ln, app.setupRouter())
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
