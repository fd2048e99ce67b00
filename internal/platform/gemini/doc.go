// Package gemini implements the generation.Completer and
// generation.VisionCompleter capabilities on top of Google's Gemini API.
//
// The adapter translates provider-neutral completion requests into genai
// GenerateContent calls: system messages become the system instruction,
// user messages and inline images become content parts. Responses are
// reduced to their text. Provider errors are classified so that HTTP 429 /
// RESOURCE_EXHAUSTED responses carry generation.ErrRateLimited and can be
// retried by generation.Retrier; every other failure is returned as-is.
//
// The adapter performs no retries of its own.
package gemini
