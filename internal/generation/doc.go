// Package generation turns text and images into flashcards using an external
// AI/LLM completion service. It abstracts the details of LLM API integration
// (Gemini, OpenAI-compatible endpoints) behind the Completer and
// VisionCompleter interfaces, and contains the provider-independent parts of
// content generation:
//
//   - Retrier: bounded exponential-backoff retry on rate-limit signals
//   - ParseFlashcards: lenient parsing of free-form model output that never
//     fails and always yields at least one card
//   - Generator: distributes a card count across text chunks, issues one
//     completion call per chunk strictly in sequence, and aggregates the parsed
//     cards; it also implements the single-shot vision path for images
package generation
