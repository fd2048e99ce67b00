package generation

import "context"

// Role identifies the author of a chat message.
type Role string

// Message roles understood by every provider.
const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of the ordered message list sent to a provider.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a text completion call.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// InlineImage is image data embedded in a request.
type InlineImage struct {
	// MIMEType is the image media type, e.g. image/png.
	MIMEType string

	// Data is the base64 (standard encoding) image payload.
	Data string
}

// ContentPart is one element of a multimodal user message: either text or an
// inline image.
type ContentPart struct {
	Text  string
	Image *InlineImage
}

// VisionRequest is a multimodal completion call. Parts form the user message.
type VisionRequest struct {
	Model       string
	System      string
	Parts       []ContentPart
	MaxTokens   int
	Temperature float32
}

// Completer issues text completion calls.
//
// Implementations return the generated text, an error wrapping ErrRateLimited
// when the provider signals rate limiting, or any other error for
// non-retryable failures.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// VisionCompleter issues multimodal completion calls, with the same error
// contract as Completer.
type VisionCompleter interface {
	CompleteVision(ctx context.Context, req VisionRequest) (string, error)
}
