package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/phrazzld/scry-studygen/internal/generation"
)

// MockResponse is one scripted completer reply.
type MockResponse struct {
	Text string
	Err  error
}

// MockCompleter implements generation.Completer and generation.VisionCompleter
// for testing. Replies are taken from Responses in order; once exhausted the
// last reply repeats.
type MockCompleter struct {
	// CompleteFn allows test cases to override Complete entirely
	CompleteFn func(ctx context.Context, req generation.CompletionRequest) (string, error)

	// CompleteVisionFn allows test cases to override CompleteVision entirely
	CompleteVisionFn func(ctx context.Context, req generation.VisionRequest) (string, error)

	// Responses are the scripted replies shared by both methods
	Responses []MockResponse

	mu             sync.Mutex
	next           int
	requests       []generation.CompletionRequest
	visionRequests []generation.VisionRequest
}

// NewMockCompleterWithResponses creates a MockCompleter that returns each text in turn.
func NewMockCompleterWithResponses(texts ...string) *MockCompleter {
	m := &MockCompleter{}
	for _, text := range texts {
		m.Responses = append(m.Responses, MockResponse{Text: text})
	}
	return m
}

// NewMockCompleterWithError creates a MockCompleter that always fails with err.
func NewMockCompleterWithError(err error) *MockCompleter {
	return &MockCompleter{Responses: []MockResponse{{Err: err}}}
}

// RateLimitedError returns an error carrying the rate-limit signal.
func RateLimitedError() error {
	return fmt.Errorf("%w: 429 too many requests", generation.ErrRateLimited)
}

// Complete implements generation.Completer
func (m *MockCompleter) Complete(ctx context.Context, req generation.CompletionRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CompleteFn != nil {
		return m.CompleteFn(ctx, req)
	}

	return m.nextResponse(ctx)
}

// CompleteVision implements generation.VisionCompleter
func (m *MockCompleter) CompleteVision(ctx context.Context, req generation.VisionRequest) (string, error) {
	m.mu.Lock()
	m.visionRequests = append(m.visionRequests, req)
	m.mu.Unlock()

	if m.CompleteVisionFn != nil {
		return m.CompleteVisionFn(ctx, req)
	}

	return m.nextResponse(ctx)
}

func (m *MockCompleter) nextResponse(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Responses) == 0 {
		return "[]", nil
	}

	i := m.next
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	m.next++

	return m.Responses[i].Text, m.Responses[i].Err
}

// Requests returns a copy of the text requests received so far.
func (m *MockCompleter) Requests() []generation.CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.CompletionRequest(nil), m.requests...)
}

// VisionRequests returns a copy of the vision requests received so far.
func (m *MockCompleter) VisionRequests() []generation.VisionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.VisionRequest(nil), m.visionRequests...)
}

// CallCount returns the total number of calls to either method.
func (m *MockCompleter) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests) + len(m.visionRequests)
}
