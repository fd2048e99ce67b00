package domain

import (
	"fmt"
	"strings"
)

// ExtractionMethod names the strategy used to turn a file into plain text.
type ExtractionMethod string

// Extraction methods reported alongside extracted text.
const (
	MethodPlain     ExtractionMethod = "plain"
	MethodHTMLStrip ExtractionMethod = "html-strip"
	MethodJSON      ExtractionMethod = "json-format"
	MethodCSV       ExtractionMethod = "csv"
	MethodMarkdown  ExtractionMethod = "markdown"
	MethodPDFPages  ExtractionMethod = "pdf-pages"
)

// ExtractedText is the plain text produced from a SourceFile.
type ExtractedText struct {
	Text   string           `json:"text"`
	Method ExtractionMethod `json:"method"`
}

// TextChunk is a bounded segment of extracted text processed as one unit of
// generation work.
type TextChunk struct {
	// Index is the zero-based position of the chunk in the source text.
	Index int `json:"index"`

	// Text is the chunk payload. It is never empty.
	Text string `json:"text"`

	// TargetCount is the number of flashcards requested for this chunk.
	TargetCount int `json:"target_count"`
}

// Validate checks the chunk invariants that do not depend on configuration.
func (c TextChunk) Validate() error {
	if c.Index < 0 {
		return fmt.Errorf("%w: negative index %d", ErrInvalidChunk, c.Index)
	}

	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("%w: chunk %d is empty", ErrInvalidChunk, c.Index)
	}

	return nil
}
