package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PageExtractor returns the plain text of each page of a document, in page
// order 1..N.
type PageExtractor interface {
	ExtractPages(ctx context.Context, data []byte) ([]string, error)
}

// PDFPageExtractor implements PageExtractor using github.com/ledongthuc/pdf.
type PDFPageExtractor struct {
	logger *slog.Logger
}

// NewPDFPageExtractor creates a PDFPageExtractor.
func NewPDFPageExtractor(logger *slog.Logger) *PDFPageExtractor {
	return &PDFPageExtractor{logger: logger}
}

// ExtractPages reads every page of the PDF in data. Pages without a content
// stream yield an empty string so page positions are preserved.
func (e *PDFPageExtractor) ExtractPages(ctx context.Context, data []byte) (pages []string, err error) {
	// The PDF reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("%w: malformed PDF: %v", ErrExtractionFailed, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open PDF: %v", ErrExtractionFailed, err)
	}

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	fonts := make(map[string]*pdf.Font)

	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				font := page.Font(name)
				fonts[name] = &font
			}
		}

		text, err := page.GetPlainText(fonts)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to extract PDF page text",
				"page", i,
				"error", err)
			pages = append(pages, "")
			continue
		}

		pages = append(pages, strings.TrimSpace(text))
	}

	e.logger.DebugContext(ctx, "PDF pages extracted", "page_count", numPages)

	return pages, nil
}

// joinPages concatenates non-empty pages separated by a blank line.
func joinPages(pages []string) string {
	nonEmpty := make([]string, 0, len(pages))
	for _, page := range pages {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			nonEmpty = append(nonEmpty, trimmed)
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}
