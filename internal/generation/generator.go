package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-studygen/internal/domain"
)

// Default generator settings.
const (
	DefaultMaxOutputTokens = 4000
	DefaultTemperature     = 0.7
	DefaultChunkDelay      = time.Second
)

// Options configures a Generator. It is passed explicitly so the generator
// holds no global state.
type Options struct {
	// Model is the model identifier for text completions.
	Model string

	// VisionModel is the model identifier for image completions. Defaults to Model.
	VisionModel string

	// MaxOutputTokens bounds the length of each completion.
	MaxOutputTokens int

	// Temperature is the sampling temperature.
	Temperature float32

	// ChunkDelay is the fixed pause between consecutive chunk calls.
	ChunkDelay time.Duration
}

// Generator produces flashcards from text chunks or images.
//
// Chunks are processed strictly one at a time with a fixed delay between
// calls, to respect provider rate limits. A Generator keeps no state across
// invocations and may be shared by concurrent callers.
type Generator struct {
	text    Completer
	vision  VisionCompleter
	retrier *Retrier
	logger  *slog.Logger
	opts    Options
	wait    WaitFunc
}

// GeneratorOption customizes a Generator.
type GeneratorOption func(*Generator)

// WithDelayFunc replaces the wait used between chunk calls, mainly for tests.
func WithDelayFunc(wait WaitFunc) GeneratorOption {
	return func(g *Generator) {
		if wait != nil {
			g.wait = wait
		}
	}
}

// NewGenerator creates a Generator. vision may be nil, in which case image
// generation fails with ErrVisionUnavailable.
func NewGenerator(
	text Completer,
	vision VisionCompleter,
	retrier *Retrier,
	logger *slog.Logger,
	opts Options,
	options ...GeneratorOption,
) (*Generator, error) {
	if text == nil {
		return nil, fmt.Errorf("%w: text completer cannot be nil", ErrInvalidConfig)
	}

	if retrier == nil {
		return nil, fmt.Errorf("%w: retrier cannot be nil", ErrInvalidConfig)
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if opts.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}

	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = DefaultMaxOutputTokens
	}

	if opts.ChunkDelay < 0 {
		opts.ChunkDelay = DefaultChunkDelay
	}

	g := &Generator{
		text:    text,
		vision:  vision,
		retrier: retrier,
		logger:  logger,
		opts:    opts,
		wait:    Sleep,
	}

	for _, option := range options {
		option(g)
	}

	return g, nil
}

// DistributeCounts splits total across n chunks by floor division; the last
// chunk absorbs the remainder so the counts sum to total exactly.
func DistributeCounts(total, n int) []int {
	if n <= 0 {
		return nil
	}

	counts := make([]int, n)
	perChunk := total / n
	for i := range counts {
		counts[i] = perChunk
	}
	counts[n-1] = total - perChunk*(n-1)

	return counts
}

// Generate requests total flashcards across chunks and returns them in chunk
// order, truncated to total.
//
// Chunks whose share is zero are skipped without a call. If any call fails
// after retries, the remaining chunks are abandoned and the error is returned;
// cards from completed chunks are discarded.
func (g *Generator) Generate(ctx context.Context, chunks []domain.TextChunk, total int) (*domain.GenerationResult, error) {
	if total < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, total)
	}

	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	counts := DistributeCounts(total, len(chunks))

	g.logger.InfoContext(ctx, "generating flashcards from chunks",
		"chunk_count", len(chunks),
		"requested_total", total)

	var (
		cards  []domain.Flashcard
		issued int
	)

	for i, chunk := range chunks {
		chunk.TargetCount = counts[i]
		if chunk.TargetCount <= 0 {
			g.logger.DebugContext(ctx, "skipping chunk with no assigned cards",
				"chunk_index", chunk.Index)
			continue
		}

		if issued > 0 && g.opts.ChunkDelay > 0 {
			if err := g.wait(ctx, g.opts.ChunkDelay); err != nil {
				return nil, fmt.Errorf("generation cancelled before chunk %d: %w", chunk.Index, err)
			}
		}

		chunkCards, err := g.generateChunk(ctx, chunk)
		if err != nil {
			g.logger.ErrorContext(ctx, "chunk generation failed, abandoning remaining chunks",
				"chunk_index", chunk.Index,
				"remaining_chunks", len(chunks)-i-1,
				"error", err)
			return nil, fmt.Errorf("chunk %d: %w", chunk.Index, err)
		}

		cards = append(cards, chunkCards...)
		issued++
	}

	result := domain.NewGenerationResult(cards, total)

	g.logger.InfoContext(ctx, "flashcard generation complete",
		"result_id", result.ID.String(),
		"requested", result.Requested,
		"produced", result.Produced,
		"calls", issued)

	return result, nil
}

// generateChunk issues one retry-wrapped completion for chunk and parses it.
func (g *Generator) generateChunk(ctx context.Context, chunk domain.TextChunk) ([]domain.Flashcard, error) {
	system, err := TextSystemPrompt(chunk.TargetCount)
	if err != nil {
		return nil, err
	}

	req := CompletionRequest{
		Model: g.opts.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: chunk.Text},
		},
		MaxTokens:   g.opts.MaxOutputTokens,
		Temperature: g.opts.Temperature,
	}

	g.logger.DebugContext(ctx, "requesting flashcards for chunk",
		"chunk_index", chunk.Index,
		"target_count", chunk.TargetCount,
		"chunk_length", len(chunk.Text))

	raw, err := g.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		return g.text.Complete(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	cards := ParseFlashcards(raw)
	if len(cards) == 1 && cards[0].IsRecovery() {
		g.logger.WarnContext(ctx, "model response could not be parsed, using recovery card",
			"chunk_index", chunk.Index,
			"response_length", len(raw))
	}

	return cards, nil
}
