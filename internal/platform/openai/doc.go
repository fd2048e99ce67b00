// Package openai implements generation.Completer and
// generation.VisionCompleter against any OpenAI-compatible chat completions
// endpoint. Images are sent as base64 data URLs in a multi-part user message.
// HTTP 429 responses are reported with generation.ErrRateLimited.
package openai
