// Package chunk splits extracted text into bounded segments on semantic
// boundaries so that each segment fits in a single language-model prompt.
package chunk
