// Package domain contains the value types that flow through the flashcard
// generation pipeline: uploaded source files, extracted text, text chunks,
// flashcards and generation results. It is independent of any extraction
// library or language-model provider.
package domain
