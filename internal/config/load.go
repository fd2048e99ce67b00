package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ConfigFileEnv names the environment variable holding an explicit config file path.
const ConfigFileEnv = "SCRY_CONFIG_FILE"

// defaults are applied before the config file and environment.
var defaults = map[string]any{
	"server.port":             8080,
	"server.log_level":        "info",
	"server.max_upload_bytes": 20 << 20,

	"llm.provider":          ProviderGemini,
	"llm.gemini_api_key":    "",
	"llm.openai_api_key":    "",
	"llm.base_url":          "",
	"llm.model_name":        "gemini-2.0-flash",
	"llm.vision_model_name": "",
	"llm.max_output_tokens": 4000,
	"llm.temperature":       0.7,
	"llm.max_retries":       3,
	"llm.retry_delay_ms":    1000,

	"pipeline.max_chunk_size":     8000,
	"pipeline.chunk_delay_ms":     1000,
	"pipeline.default_card_count": 10,
	"pipeline.max_card_count":     100,

	"task.worker_count": 1,
	"task.queue_size":   100,
}

// Load configuration from environment variables and optionally a config file.
// The file is taken from SCRY_CONFIG_FILE, or config.yaml in the working
// directory if present. Environment variables take precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path falls
// back to an optional config.yaml in the working directory.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Environment variables use the SCRY_ prefix with dots replaced by
	// underscores, e.g. SCRY_LLM_GEMINI_API_KEY.
	v.SetEnvPrefix("SCRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key := range defaults {
		if err := v.BindEnv(key, envVarName(key)); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVarName(key), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// envVarName maps a config key such as llm.model_name to SCRY_LLM_MODEL_NAME.
func envVarName(key string) string {
	return "SCRY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
