package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SourceFile is an uploaded file handed to the pipeline. It is treated as
// immutable once created.
type SourceFile struct {
	// Name is the original file name, including its extension.
	Name string `json:"name"`

	// ContentType is the declared MIME type, possibly empty.
	ContentType string `json:"content_type"`

	// Size is the byte size of Content.
	Size int64 `json:"size"`

	// Content holds the raw bytes of the file.
	Content []byte `json:"-"`
}

// NewSourceFile creates a SourceFile and normalizes its declared content type.
// Returns an error if the name is empty.
func NewSourceFile(name, contentType string, content []byte) (SourceFile, error) {
	if strings.TrimSpace(name) == "" {
		return SourceFile{}, fmt.Errorf("%w: %w", ErrValidation, ErrEmptyFileName)
	}

	return SourceFile{
		Name:        name,
		ContentType: normalizeContentType(contentType),
		Size:        int64(len(content)),
		Content:     content,
	}, nil
}

// Extension returns the lower-cased file extension including the leading dot.
func (f SourceFile) Extension() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// BaseName returns the file name without directory components.
func (f SourceFile) BaseName() string {
	return filepath.Base(f.Name)
}

// Text returns the content decoded as a string.
func (f SourceFile) Text() string {
	return string(f.Content)
}

// normalizeContentType strips parameters such as charset and lower-cases the type.
func normalizeContentType(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mediaType))
}
