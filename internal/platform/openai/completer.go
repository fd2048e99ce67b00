package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/generation"
	goopenai "github.com/sashabaranov/go-openai"
)

// Completer issues chat completions through go-openai.
type Completer struct {
	client *goopenai.Client
	logger *slog.Logger
}

// NewCompleter creates a Completer from the LLM configuration. BaseURL, when
// set, replaces the default OpenAI endpoint.
func NewCompleter(logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("%w: openai API key cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := goopenai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Completer{
		client: goopenai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// Complete implements generation.Completer.
func (c *Completer) Complete(ctx context.Context, req generation.CompletionRequest) (string, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    chatRole(msg.Role),
			Content: msg.Content,
		})
	}

	return c.create(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
}

// CompleteVision implements generation.VisionCompleter.
func (c *Completer) CompleteVision(ctx context.Context, req generation.VisionRequest) (string, error) {
	var messages []goopenai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	parts := make([]goopenai.ChatMessagePart, 0, len(req.Parts))
	for _, part := range req.Parts {
		if part.Image == nil {
			parts = append(parts, goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeText,
				Text: part.Text,
			})
			continue
		}

		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL:    dataURL(part.Image),
				Detail: goopenai.ImageURLDetailAuto,
			},
		})
	}

	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:         goopenai.ChatMessageRoleUser,
		MultiContent: parts,
	})

	return c.create(ctx, goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
}

func (c *Completer) create(ctx context.Context, req goopenai.ChatCompletionRequest) (string, error) {
	c.logger.DebugContext(ctx, "making chat completion call",
		"model", req.Model,
		"message_count", len(req.Messages))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		classified := classifyError(err)
		c.logger.WarnContext(ctx, "chat completion call failed",
			"model", req.Model,
			"rate_limited", generation.IsRateLimited(classified),
			"error", err)
		return "", classified
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", generation.ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == goopenai.FinishReasonContentFilter {
		return "", fmt.Errorf("%w: response filtered", generation.ErrContentBlocked)
	}

	return choice.Message.Content, nil
}

func chatRole(role generation.Role) string {
	if role == generation.RoleSystem {
		return goopenai.ChatMessageRoleSystem
	}
	return goopenai.ChatMessageRoleUser
}

func dataURL(image *generation.InlineImage) string {
	return "data:" + image.MIMEType + ";base64," + image.Data
}

// classifyError marks HTTP 429 responses as rate limited.
func classifyError(err error) error {
	if statusCode(err) == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", generation.ErrRateLimited, err)
	}
	return err
}

func statusCode(err error) int {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}

	return 0
}
