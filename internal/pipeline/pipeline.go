package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-studygen/internal/domain"
	"github.com/phrazzld/scry-studygen/internal/extract"
	"github.com/phrazzld/scry-studygen/internal/generation"
)

// TextExtractor reduces a file to plain text.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedText, error)
}

// Chunker splits text into bounded chunks.
type Chunker interface {
	Chunk(text string) []domain.TextChunk
}

// CardGenerator produces flashcards from chunks or from an image.
type CardGenerator interface {
	Generate(ctx context.Context, chunks []domain.TextChunk, total int) (*domain.GenerationResult, error)
	GenerateFromImage(ctx context.Context, file domain.SourceFile, count int) (*domain.GenerationResult, error)
}

// Pipeline turns one uploaded file into flashcards.
type Pipeline struct {
	extractor TextExtractor
	chunker   Chunker
	generator CardGenerator
	logger    *slog.Logger
}

// New creates a Pipeline. All dependencies are required.
func New(extractor TextExtractor, chunker Chunker, generator CardGenerator, logger *slog.Logger) (*Pipeline, error) {
	if extractor == nil {
		return nil, errors.New("extractor cannot be nil")
	}
	if chunker == nil {
		return nil, errors.New("chunker cannot be nil")
	}
	if generator == nil {
		return nil, errors.New("generator cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Pipeline{
		extractor: extractor,
		chunker:   chunker,
		generator: generator,
		logger:    logger,
	}, nil
}

// Generate produces up to count flashcards from file.
//
// Unsupported formats fail with extract.ErrUnsupportedFormat and empty or
// failed extractions with extract.ErrExtractionFailed, both before any model
// call is made.
func (p *Pipeline) Generate(ctx context.Context, file domain.SourceFile, count int) (*domain.GenerationResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", generation.ErrInvalidCount, count)
	}

	kind := extract.Classify(file)
	log := p.logger.With(
		"file_name", file.Name,
		"file_size", file.Size,
		"content_kind", kind.String(),
		"requested_total", count,
	)

	if kind == extract.KindImage {
		log.InfoContext(ctx, "routing file to vision path")
		return p.generator.GenerateFromImage(ctx, file, count)
	}

	extracted, err := p.extractor.Extract(ctx, file)
	if err != nil {
		log.WarnContext(ctx, "text extraction failed", "error", err)
		return nil, err
	}

	chunks := p.chunker.Chunk(extracted.Text)
	log.InfoContext(ctx, "extracted text",
		"method", string(extracted.Method),
		"text_length", len(extracted.Text),
		"chunk_count", len(chunks))

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s has no text to generate from", extract.ErrExtractionFailed, file.Name)
	}

	return p.generator.Generate(ctx, chunks, count)
}
