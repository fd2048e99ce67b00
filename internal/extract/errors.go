package extract

import "errors"

// Error definitions for the extract package.
var (
	// ErrExtractionFailed is returned when extraction yields no usable text,
	// including the case where only the file name came back.
	ErrExtractionFailed = errors.New("text extraction failed")

	// ErrUnsupportedFormat is returned for formats with no text extraction path.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrRequiresVision is returned for image files, which must go through the
	// vision path instead of text extraction.
	ErrRequiresVision = errors.New("image content requires the vision path")
)

// unsupportedGuidance is appended to ErrUnsupportedFormat errors.
const unsupportedGuidance = "re-save the document as plain text, HTML or PDF and upload it again"
