package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/scry-studygen/internal/config"
	"github.com/phrazzld/scry-studygen/internal/generation"
	"google.golang.org/genai"
)

// userRole is the genai role for caller-supplied content.
const userRole = "user"

// ContentGenerator is the subset of the genai client used by Completer.
// *genai.Models satisfies it.
type ContentGenerator interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Completer issues text and multimodal completions against Gemini.
type Completer struct {
	// logger is used for structured logging
	logger *slog.Logger

	// models performs the GenerateContent calls
	models ContentGenerator
}

// NewCompleter creates a Completer backed by a new genai client.
//
// Returns an error wrapping generation.ErrInvalidConfig if the API key is
// missing or the client cannot be created.
func NewCompleter(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return NewCompleterWithModels(logger, client.Models)
}

// NewCompleterWithModels creates a Completer around an existing content
// generator, such as a fake in tests.
func NewCompleterWithModels(logger *slog.Logger, models ContentGenerator) (*Completer, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if models == nil {
		return nil, fmt.Errorf("%w: content generator cannot be nil", generation.ErrInvalidConfig)
	}

	return &Completer{logger: logger, models: models}, nil
}

// Complete implements generation.Completer.
func (c *Completer) Complete(ctx context.Context, req generation.CompletionRequest) (string, error) {
	var (
		system []string
		parts  []*genai.Part
	)

	for _, msg := range req.Messages {
		switch msg.Role {
		case generation.RoleSystem:
			system = append(system, msg.Content)
		default:
			parts = append(parts, &genai.Part{Text: msg.Content})
		}
	}

	contents := []*genai.Content{{Role: userRole, Parts: parts}}
	return c.generate(ctx, req.Model, contents, c.contentConfig(strings.Join(system, "\n\n"), req.MaxTokens, req.Temperature))
}

// CompleteVision implements generation.VisionCompleter.
func (c *Completer) CompleteVision(ctx context.Context, req generation.VisionRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))

	for _, part := range req.Parts {
		if part.Image == nil {
			parts = append(parts, &genai.Part{Text: part.Text})
			continue
		}

		data, err := base64.StdEncoding.DecodeString(part.Image.Data)
		if err != nil {
			return "", fmt.Errorf("invalid inline image data: %w", err)
		}

		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: part.Image.MIMEType, Data: data},
		})
	}

	contents := []*genai.Content{{Role: userRole, Parts: parts}}
	return c.generate(ctx, req.Model, contents, c.contentConfig(req.System, req.MaxTokens, req.Temperature))
}

func (c *Completer) contentConfig(system string, maxTokens int, temperature float32) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	}

	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	return cfg
}

// generate performs a single GenerateContent call and extracts the text.
func (c *Completer) generate(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (string, error) {
	c.logger.DebugContext(ctx, "making Gemini API call",
		"model", model,
		"max_output_tokens", cfg.MaxOutputTokens)

	resp, err := c.models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		classified := classifyError(err)
		c.logger.WarnContext(ctx, "Gemini API call failed",
			"model", model,
			"rate_limited", generation.IsRateLimited(classified),
			"error", err)
		return "", classified
	}

	return responseText(resp)
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked: %s",
				generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: response blocked by safety filters", generation.ErrContentBlocked)
	}

	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil && !part.Thought {
			text.WriteString(part.Text)
		}
	}

	return text.String(), nil
}
