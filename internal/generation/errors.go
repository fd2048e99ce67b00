package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrRateLimited is the signal a Completer returns when the provider
	// rejected a call because of rate limiting. It is the only retryable error.
	ErrRateLimited = errors.New("rate limited by language model provider")

	// ErrRateLimitExceeded is returned when a call is still rate limited after
	// the maximum number of retries.
	ErrRateLimitExceeded = errors.New("rate limit retries exhausted")

	// ErrUpstream is returned for non-retryable failures from the provider,
	// such as malformed requests or server faults.
	ErrUpstream = errors.New("language model request failed")

	// ErrInvalidResponse is returned when the provider response has no usable content
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrInvalidCount is returned when the requested card count is not positive.
	ErrInvalidCount = errors.New("card count must be positive")

	// ErrNoChunks is returned when text generation is requested without chunks.
	ErrNoChunks = errors.New("no text chunks to generate from")

	// ErrVisionUnavailable is returned when an image is submitted but no
	// vision-capable completer is configured.
	ErrVisionUnavailable = errors.New("vision completions are not configured")
)

// IsRateLimited reports whether err carries the rate-limit signal.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
