package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-studygen/internal/domain"
)

// Extractor converts a SourceFile into plain text.
// It holds no per-file state and is safe for concurrent use.
type Extractor struct {
	pages  PageExtractor
	logger *slog.Logger
}

// NewExtractor creates an Extractor that reads PDFs through pages.
func NewExtractor(pages PageExtractor, logger *slog.Logger) (*Extractor, error) {
	if pages == nil {
		return nil, errors.New("page extractor cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Extractor{
		pages:  pages,
		logger: logger,
	}, nil
}

// Extract returns the plain text of file.
//
// It fails with ErrRequiresVision for images, ErrUnsupportedFormat for formats
// with no extraction path and ErrExtractionFailed when the result is empty or
// is just the file name.
func (e *Extractor) Extract(ctx context.Context, file domain.SourceFile) (domain.ExtractedText, error) {
	kind := Classify(file)

	e.logger.DebugContext(ctx, "extracting file content",
		"file_name", file.Name,
		"content_type", file.ContentType,
		"size", file.Size,
		"kind", kind.String())

	var (
		result domain.ExtractedText
		err    error
	)

	switch kind {
	case KindPlainText:
		result = domain.ExtractedText{Text: file.Text(), Method: domain.MethodPlain}
	case KindHTML:
		result, err = extractHTML(file)
	case KindJSON:
		result = e.extractJSON(ctx, file)
	case KindCSV:
		result = domain.ExtractedText{Text: file.Text(), Method: domain.MethodCSV}
	case KindMarkdown:
		result = domain.ExtractedText{Text: file.Text(), Method: domain.MethodMarkdown}
	case KindPDF:
		result, err = e.extractPDF(ctx, file)
	case KindImage:
		return domain.ExtractedText{}, fmt.Errorf("%w: %s", ErrRequiresVision, file.Name)
	case KindUnsupported:
		return domain.ExtractedText{}, fmt.Errorf("%w: %s (%s); %s",
			ErrUnsupportedFormat, file.Name, describeType(file), unsupportedGuidance)
	default:
		return domain.ExtractedText{}, fmt.Errorf("%w: unhandled content kind %d", ErrUnsupportedFormat, kind)
	}

	if err != nil {
		return domain.ExtractedText{}, err
	}

	if err := validateExtraction(file, result); err != nil {
		e.logger.WarnContext(ctx, "extraction produced no usable text",
			"file_name", file.Name,
			"method", string(result.Method))
		return domain.ExtractedText{}, err
	}

	e.logger.InfoContext(ctx, "file content extracted",
		"file_name", file.Name,
		"method", string(result.Method),
		"text_length", len(result.Text))

	return result, nil
}

func extractHTML(file domain.SourceFile) (domain.ExtractedText, error) {
	text, err := StripHTML(file.Text())
	if err != nil {
		return domain.ExtractedText{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	return domain.ExtractedText{Text: text, Method: domain.MethodHTMLStrip}, nil
}

// extractJSON re-serializes JSON with sorted keys and two-space indentation.
// Invalid JSON is passed through as plain text.
func (e *Extractor) extractJSON(ctx context.Context, file domain.SourceFile) domain.ExtractedText {
	decoder := json.NewDecoder(bytes.NewReader(file.Content))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		e.logger.WarnContext(ctx, "invalid JSON, using raw text",
			"file_name", file.Name,
			"error", err)
		return domain.ExtractedText{Text: file.Text(), Method: domain.MethodPlain}
	}

	formatted, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return domain.ExtractedText{Text: file.Text(), Method: domain.MethodPlain}
	}

	return domain.ExtractedText{Text: string(formatted), Method: domain.MethodJSON}
}

func (e *Extractor) extractPDF(ctx context.Context, file domain.SourceFile) (domain.ExtractedText, error) {
	pages, err := e.pages.ExtractPages(ctx, file.Content)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return domain.ExtractedText{}, ctxErr
		}
		if errors.Is(err, ErrExtractionFailed) {
			return domain.ExtractedText{}, err
		}
		return domain.ExtractedText{}, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	text := joinPages(pages)
	if len(text) == 0 {
		return domain.ExtractedText{}, fmt.Errorf("%w: no text found in %d PDF pages",
			ErrExtractionFailed, len(pages))
	}

	return domain.ExtractedText{Text: text, Method: domain.MethodPDFPages}, nil
}

// validateExtraction rejects empty results and results equal to the file name.
func validateExtraction(file domain.SourceFile, result domain.ExtractedText) error {
	trimmed := strings.TrimSpace(result.Text)
	if trimmed == "" {
		return fmt.Errorf("%w: %s produced no text", ErrExtractionFailed, file.Name)
	}

	if trimmed == file.Name || trimmed == file.BaseName() {
		return fmt.Errorf("%w: %s produced only its file name", ErrExtractionFailed, file.Name)
	}

	return nil
}

func describeType(file domain.SourceFile) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if ext := file.Extension(); ext != "" {
		return ext
	}
	return "unknown type"
}
