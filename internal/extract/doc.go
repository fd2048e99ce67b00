// Package extract converts uploaded files into plain text suitable for
// prompting a language model.
//
// Files are first classified into a ContentKind (plain text, HTML, JSON, CSV,
// Markdown, PDF, image or unsupported) from their declared MIME type, their
// extension and, for undeclared types, a content sniff. Each text-bearing kind
// has a dedicated extraction path:
//
//   - plain text, CSV and Markdown pass through unchanged
//   - HTML is stripped of markup with goquery and whitespace is collapsed
//   - JSON is re-serialized with stable, indented formatting
//   - PDF text is read page by page through a PageExtractor
//
// Images are not extracted here; they are reported with ErrRequiresVision so
// the caller can route them to the vision path. Legacy binary document formats
// are rejected with ErrUnsupportedFormat.
package extract
