package generation

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/scry-studygen/internal/domain"
)

// GenerateFromImage requests count flashcards about an image in a single
// multimodal call. The image is sent inline as base64; no chunking occurs.
// Failures are returned as-is: there is no fallback to text extraction.
func (g *Generator) GenerateFromImage(ctx context.Context, file domain.SourceFile, count int) (*domain.GenerationResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}

	if g.vision == nil {
		return nil, ErrVisionUnavailable
	}

	if len(file.Content) == 0 {
		return nil, fmt.Errorf("%w: image %s", domain.ErrEmptyContent, file.Name)
	}

	prompt, err := VisionPrompt(count)
	if err != nil {
		return nil, err
	}

	req := VisionRequest{
		Model: g.opts.VisionModel,
		Parts: []ContentPart{
			{Text: prompt},
			{Image: &InlineImage{
				MIMEType: imageMIMEType(file),
				Data:     base64.StdEncoding.EncodeToString(file.Content),
			}},
		},
		MaxTokens:   g.opts.MaxOutputTokens,
		Temperature: g.opts.Temperature,
	}

	g.logger.InfoContext(ctx, "generating flashcards from image",
		"file_name", file.Name,
		"mime_type", req.Parts[1].Image.MIMEType,
		"image_bytes", len(file.Content),
		"requested_total", count)

	raw, err := g.retrier.Do(ctx, func(ctx context.Context) (string, error) {
		return g.vision.CompleteVision(ctx, req)
	})
	if err != nil {
		g.logger.ErrorContext(ctx, "image generation failed",
			"file_name", file.Name,
			"error", err)
		return nil, fmt.Errorf("image %s: %w", file.Name, err)
	}

	result := domain.NewGenerationResult(ParseFlashcards(raw), count)

	g.logger.InfoContext(ctx, "image flashcard generation complete",
		"result_id", result.ID.String(),
		"requested", result.Requested,
		"produced", result.Produced)

	return result, nil
}

// imageMIMEType returns the declared image type, or sniffs it from the bytes.
func imageMIMEType(file domain.SourceFile) string {
	if strings.HasPrefix(file.ContentType, "image/") {
		return file.ContentType
	}

	detected := mimetype.Detect(file.Content)
	if mediaType, _, _ := strings.Cut(detected.String(), ";"); strings.HasPrefix(mediaType, "image/") {
		return mediaType
	}

	return "image/png"
}
