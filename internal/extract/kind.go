package extract

import (
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/phrazzld/scry-studygen/internal/domain"
)

// ContentKind is the closed set of content categories the extractor knows.
type ContentKind int

// Supported content kinds. KindUnsupported is the zero value so an
// unclassified file is never mistaken for a text format.
const (
	KindUnsupported ContentKind = iota
	KindPlainText
	KindHTML
	KindJSON
	KindCSV
	KindMarkdown
	KindPDF
	KindImage
)

// String returns the kind name used in logs.
func (k ContentKind) String() string {
	switch k {
	case KindPlainText:
		return "plain-text"
	case KindHTML:
		return "html"
	case KindJSON:
		return "json"
	case KindCSV:
		return "csv"
	case KindMarkdown:
		return "markdown"
	case KindPDF:
		return "pdf"
	case KindImage:
		return "image"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// IsText reports whether the kind has a text extraction path.
func (k ContentKind) IsText() bool {
	switch k {
	case KindPlainText, KindHTML, KindJSON, KindCSV, KindMarkdown, KindPDF:
		return true
	case KindImage, KindUnsupported:
		return false
	default:
		return false
	}
}

// mimeKinds maps declared MIME types to kinds.
var mimeKinds = map[string]ContentKind{
	"text/plain":            KindPlainText,
	"text/html":             KindHTML,
	"application/xhtml+xml": KindHTML,
	"application/json":      KindJSON,
	"text/json":             KindJSON,
	"text/csv":              KindCSV,
	"application/csv":       KindCSV,
	"text/markdown":         KindMarkdown,
	"text/x-markdown":       KindMarkdown,
	"application/pdf":       KindPDF,
}

// legacyMIMETypes are binary document formats rejected without sniffing.
var legacyMIMETypes = []string{
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.oasis.opendocument.text",
	"application/rtf",
}

// extensionKinds maps lower-cased file extensions to kinds.
var extensionKinds = map[string]ContentKind{
	".txt":      KindPlainText,
	".text":     KindPlainText,
	".html":     KindHTML,
	".htm":      KindHTML,
	".xhtml":    KindHTML,
	".json":     KindJSON,
	".csv":      KindCSV,
	".md":       KindMarkdown,
	".markdown": KindMarkdown,
	".pdf":      KindPDF,
	".png":      KindImage,
	".jpg":      KindImage,
	".jpeg":     KindImage,
	".gif":      KindImage,
	".webp":     KindImage,

	".doc":  KindUnsupported,
	".docx": KindUnsupported,
	".ppt":  KindUnsupported,
	".pptx": KindUnsupported,
	".rtf":  KindUnsupported,
	".odt":  KindUnsupported,
}

// tagMarkers matches content that looks like HTML markup.
var tagMarkers = regexp.MustCompile(`(?i)<\s*(!doctype|html|head|body|div|p|span|h[1-6]|ul|ol|li|table|br|article|section|a)\b[^>]*>`)

// Classify resolves the content kind of a file. The declared MIME type wins,
// then the file extension, then a sniff of the content itself.
func Classify(file domain.SourceFile) ContentKind {
	if kind, ok := kindForMIME(file.ContentType); ok {
		return kind
	}

	if kind, ok := extensionKinds[file.Extension()]; ok {
		return kind
	}

	return sniff(file.Content)
}

// kindForMIME looks up a declared MIME type. Any image/* type is an image.
func kindForMIME(contentType string) (ContentKind, bool) {
	if contentType == "" || contentType == "application/octet-stream" {
		return KindUnsupported, false
	}

	if strings.HasPrefix(contentType, "image/") {
		return KindImage, true
	}

	if slices.Contains(legacyMIMETypes, contentType) {
		return KindUnsupported, true
	}

	kind, ok := mimeKinds[contentType]
	return kind, ok
}

// sniff classifies undeclared content by inspecting its bytes.
func sniff(content []byte) ContentKind {
	if len(content) == 0 {
		return KindUnsupported
	}

	detected := mimetype.Detect(content)
	for m := detected; m != nil; m = m.Parent() {
		mediaType, _, _ := strings.Cut(m.String(), ";")
		if kind, ok := kindForMIME(mediaType); ok {
			if kind == KindPlainText && LooksLikeHTML(string(content)) {
				return KindHTML
			}
			return kind
		}
	}

	if utf8.Valid(content) && LooksLikeHTML(string(content)) {
		return KindHTML
	}

	return KindUnsupported
}

// LooksLikeHTML reports whether text contains tag-like markers.
func LooksLikeHTML(text string) bool {
	return tagMarkers.MatchString(text)
}
