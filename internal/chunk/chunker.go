package chunk

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/phrazzld/scry-studygen/internal/domain"
)

// DefaultMaxSize is the chunk size used when none is configured.
const DefaultMaxSize = 8000

// ErrInvalidMaxSize is returned when the maximum chunk size is not positive.
var ErrInvalidMaxSize = errors.New("max chunk size must be positive")

// Chunker splits text into chunks of at most MaxSize bytes.
type Chunker struct {
	maxSize int
}

// New creates a Chunker. Returns an error if maxSize is not positive.
func New(maxSize int) (*Chunker, error) {
	if maxSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxSize, maxSize)
	}
	return &Chunker{maxSize: maxSize}, nil
}

// MaxSize returns the configured maximum chunk size.
func (c *Chunker) MaxSize() int {
	return c.maxSize
}

// Chunk splits text using the configured maximum size.
func (c *Chunker) Chunk(text string) []domain.TextChunk {
	return Split(text, c.maxSize)
}

// Split divides text into ordered chunks of at most maxSize bytes.
//
// Text no longer than maxSize is returned as a single chunk. Otherwise each
// cut is placed at the last boundary in the back half of the window
// [offset+maxSize/2, offset+maxSize], preferring a sentence terminator, then a
// paragraph break, then a line break. With no boundary in that range the cut
// is made at maxSize, moved back to a rune start. Concatenating the chunks
// reproduces text, except that whitespace-only segments are dropped.
func Split(text string, maxSize int) []domain.TextChunk {
	if maxSize <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	if len(text) <= maxSize {
		return []domain.TextChunk{{Index: 0, Text: text}}
	}

	var segments []string
	for offset := 0; offset < len(text); {
		end := offset + maxSize
		if end >= len(text) {
			segments = append(segments, text[offset:])
			break
		}

		end = splitPoint(text, offset, maxSize)
		segments = append(segments, text[offset:end])
		offset = end
	}

	chunks := make([]domain.TextChunk, 0, len(segments))
	for _, segment := range segments {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		chunks = append(chunks, domain.TextChunk{Index: len(chunks), Text: segment})
	}

	return chunks
}

// splitPoint returns the end offset of the chunk starting at offset.
// The caller guarantees offset+maxSize < len(text).
func splitPoint(text string, offset, maxSize int) int {
	windowStart := offset + maxSize/2
	windowEnd := offset + maxSize
	window := text[windowStart:windowEnd]

	if i := strings.LastIndexByte(window, '.'); i >= 0 {
		return windowStart + i + 1
	}

	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		return windowStart + i + 2
	}

	if i := strings.LastIndexByte(window, '\n'); i >= 0 {
		return windowStart + i + 1
	}

	return hardCut(text, offset, windowEnd)
}

// hardCut moves end back to the start of a rune so multi-byte characters are
// never split. If that would produce an empty chunk the whole rune is kept.
func hardCut(text string, offset, end int) int {
	cut := end
	for cut > offset && !utf8.RuneStart(text[cut]) {
		cut--
	}

	if cut == offset {
		_, size := utf8.DecodeRuneInString(text[offset:])
		return offset + size
	}

	return cut
}
