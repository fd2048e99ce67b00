package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// chatRequest mirrors the fields of the wire request the tests inspect.
type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, captured *[]byte) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		if captured != nil {
			data, err := io.ReadAll(r.Body)
			assert.NoError(t, err)
			*captured = data
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestCompleter(t *testing.T, baseURL string) *Completer {
	t.Helper()
	c, err := NewCompleter(newTestLogger(), config.LLMConfig{
		OpenAIAPIKey: "sk-test",
		BaseURL:      baseURL + "/v1",
	})
	require.NoError(t, err)
	return c
}

const okBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "model": "gpt-4o-mini",
  "choices": [{
    "index": 0,
    "message": {"role": "assistant", "content": "[{\"question\":\"Q\",\"answer\":\"A\"}]"},
    "finish_reason": "stop"
  }]
}`

func TestNewCompleter(t *testing.T) {
	t.Parallel()

	_, err := NewCompleter(nil, config.LLMConfig{OpenAIAPIKey: "sk-test"})
	assert.Error(t, err)

	_, err = NewCompleter(newTestLogger(), config.LLMConfig{})
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}

func TestCompleter_Complete(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := newTestServer(t, http.StatusOK, okBody, &captured)
	c := newTestCompleter(t, srv.URL)

	text, err := c.Complete(context.Background(), generation.CompletionRequest{
		Model: "gpt-4o-mini",
		Messages: []generation.Message{
			{Role: generation.RoleSystem, Content: "make cards"},
			{Role: generation.RoleUser, Content: "Hello World."},
		},
		MaxTokens:   4000,
		Temperature: 0.5,
	})

	require.NoError(t, err)
	assert.Equal(t, `[{"question":"Q","answer":"A"}]`, text)

	var req chatRequest
	require.NoError(t, json.Unmarshal(captured, &req))
	assert.Equal(t, "gpt-4o-mini", req.Model)
	assert.Equal(t, 4000, req.MaxTokens)
	assert.InDelta(t, 0.5, req.Temperature, 0.0001)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Equal(t, "make cards", req.Messages[0].Content)
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "Hello World.", req.Messages[1].Content)
}

func TestCompleter_CompleteVision(t *testing.T) {
	t.Parallel()

	var captured []byte
	srv := newTestServer(t, http.StatusOK, okBody, &captured)
	c := newTestCompleter(t, srv.URL)

	_, err := c.CompleteVision(context.Background(), generation.VisionRequest{
		Model: "gpt-4o",
		Parts: []generation.ContentPart{
			{Text: "make 2 cards"},
			{Image: &generation.InlineImage{MIMEType: "image/png", Data: "iVBORw0KGgo="}},
		},
		MaxTokens: 100,
	})
	require.NoError(t, err)

	var req struct {
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Type     string `json:"type"`
				Text     string `json:"text"`
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(captured, &req))
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
	require.Len(t, req.Messages[0].Content, 2)
	assert.Equal(t, "text", req.Messages[0].Content[0].Type)
	assert.Equal(t, "make 2 cards", req.Messages[0].Content[0].Text)
	assert.Equal(t, "image_url", req.Messages[0].Content[1].Type)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", req.Messages[0].Content[1].ImageURL.URL)
}

func TestCompleter_RateLimited(t *testing.T) {
	t.Parallel()

	body := `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`
	srv := newTestServer(t, http.StatusTooManyRequests, body, nil)
	c := newTestCompleter(t, srv.URL)

	_, err := c.Complete(context.Background(), generation.CompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []generation.Message{{Role: generation.RoleUser, Content: "x"}},
	})

	require.Error(t, err)
	assert.True(t, generation.IsRateLimited(err))
}

func TestCompleter_ServerError(t *testing.T) {
	t.Parallel()

	body := `{"error":{"message":"The server had an error","type":"server_error"}}`
	srv := newTestServer(t, http.StatusInternalServerError, body, nil)
	c := newTestCompleter(t, srv.URL)

	_, err := c.Complete(context.Background(), generation.CompletionRequest{
		Model:    "gpt-4o-mini",
		Messages: []generation.Message{{Role: generation.RoleUser, Content: "x"}},
	})

	require.Error(t, err)
	assert.False(t, generation.IsRateLimited(err))
}

func TestCompleter_ResponseErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "no choices",
			body:    `{"id":"x","object":"chat.completion","choices":[]}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "content filtered",
			body:    `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":""},"finish_reason":"content_filter"}]}`,
			wantErr: generation.ErrContentBlocked,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, http.StatusOK, tc.body, nil)
			c := newTestCompleter(t, srv.URL)

			_, err := c.Complete(context.Background(), generation.CompletionRequest{
				Model:    "m",
				Messages: []generation.Message{{Role: generation.RoleUser, Content: "x"}},
			})
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
