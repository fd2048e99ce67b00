// Package pipeline wires extraction, chunking and generation into the single
// per-file operation exposed by the API and the CLI.
//
// Images skip extraction and chunking and are sent to the vision path in one
// call. Every other supported format is reduced to text, split into chunks
// and sent to the text path.
package pipeline
