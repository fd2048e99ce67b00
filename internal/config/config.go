package config

import "time"

// Supported language model providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// MaxUploadBytes bounds the multipart body accepted by the upload endpoint.
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
}

// LLMConfig contains all language model integration settings.
type LLMConfig struct {
	Provider     string `mapstructure:"provider" validate:"required,oneof=gemini openai"`
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey string `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`

	// BaseURL overrides the provider endpoint, e.g. for OpenAI-compatible gateways.
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`

	ModelName       string `mapstructure:"model_name" validate:"required"`
	VisionModelName string `mapstructure:"vision_model_name"`

	MaxOutputTokens int     `mapstructure:"max_output_tokens" validate:"gt=0"`
	Temperature     float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`

	MaxRetries   int `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelayMs int `mapstructure:"retry_delay_ms" validate:"gt=0"`
}

// RetryDelay returns the backoff base delay.
func (c LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// VisionModel returns the model used for image requests, defaulting to ModelName.
func (c LLMConfig) VisionModel() string {
	if c.VisionModelName != "" {
		return c.VisionModelName
	}
	return c.ModelName
}

// PipelineConfig contains chunking and card count settings.
type PipelineConfig struct {
	MaxChunkSize     int `mapstructure:"max_chunk_size" validate:"gt=0"`
	ChunkDelayMs     int `mapstructure:"chunk_delay_ms" validate:"gte=0"`
	DefaultCardCount int `mapstructure:"default_card_count" validate:"gt=0,ltefield=MaxCardCount"`
	MaxCardCount     int `mapstructure:"max_card_count" validate:"gt=0"`
}

// ChunkDelay returns the pause between consecutive chunk requests.
func (c PipelineConfig) ChunkDelay() time.Duration {
	return time.Duration(c.ChunkDelayMs) * time.Millisecond
}

// TaskConfig contains the batch worker pool settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}
