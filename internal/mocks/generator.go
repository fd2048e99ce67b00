package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/scry-studygen/internal/domain"
)

// MockFileGenerator implements the per-file generator used by the task and
// api packages.
type MockFileGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, file domain.SourceFile, count int) (*domain.GenerationResult, error)

	// Default response values
	Cards []domain.Flashcard
	Err   error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Files contains all files passed to Generate calls
		Files []domain.SourceFile

		// Counts contains all card counts passed to Generate calls
		Counts []int
	}
}

// Generate produces the configured cards or error.
func (m *MockFileGenerator) Generate(
	ctx context.Context,
	file domain.SourceFile,
	count int,
) (*domain.GenerationResult, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Files = append(m.GenerateCalls.Files, file)
	m.GenerateCalls.Counts = append(m.GenerateCalls.Counts, count)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, file, count)
	}

	if m.Err != nil {
		return nil, m.Err
	}

	return domain.NewGenerationResult(m.Cards, count), nil
}

// CallCount returns how many times Generate was called.
func (m *MockFileGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// NewMockFileGeneratorWithCards creates a MockFileGenerator that returns cards
func NewMockFileGeneratorWithCards(cards ...domain.Flashcard) *MockFileGenerator {
	return &MockFileGenerator{Cards: cards}
}

// NewMockFileGeneratorWithError creates a MockFileGenerator that fails with err
func NewMockFileGeneratorWithError(err error) *MockFileGenerator {
	return &MockFileGenerator{Err: err}
}
