package config

import (
	"fmt"
	"time"

	envconfig "feedsift/pkg/config"
)

// Provider names an oracle backend.
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
	// ProviderStatic answers every prompt with a fixed response. Used for
	// offline runs and dry runs of the CLI.
	ProviderStatic Provider = "static"
)

// OracleConfig configures one text oracle.
type OracleConfig struct {
	// Provider is claude, openai or static.
	Provider Provider

	// Model is the provider model name. Empty selects the provider default.
	Model string

	// Credential is the secret name looked up on every call.
	// Default: ANTHROPIC_API_KEY for claude, OPENAI_API_KEY for openai.
	Credential string

	// Timeout bounds one oracle call. Default: 60s
	Timeout time.Duration

	// MaxTokens bounds the response. Default: 256 (classifier), 1024 (summarizer)
	MaxTokens int

	// StaticResponse is returned by the static provider.
	StaticResponse string
}

// AIConfig holds configuration for the classification and summarization oracles.
type AIConfig struct {
	Classifier OracleConfig
	Summarizer OracleConfig

	// SummaryCharLimit is the character budget written into the summarizer
	// prompt. Default: 300
	SummaryCharLimit int

	// OpenAIBaseURL points the openai provider at a compatible endpoint.
	OpenAIBaseURL string

	// SecretsFile is an optional YAML credential store. When empty,
	// credentials are read from the environment.
	SecretsFile string
}

// DefaultCredential returns the conventional secret name for p.
func DefaultCredential(p Provider) string {
	if p == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

func loadOracle(prefix string, maxTokens int) OracleConfig {
	provider := Provider(envconfig.GetEnvString(prefix+"_PROVIDER", string(ProviderClaude)))
	return OracleConfig{
		Provider:   provider,
		Model:      envconfig.GetEnvString(prefix+"_MODEL", ""),
		Credential: envconfig.GetEnvString(prefix+"_CREDENTIAL", DefaultCredential(provider)),
		Timeout:    envconfig.GetEnvDuration(prefix+"_TIMEOUT", 60*time.Second),
		MaxTokens:  envconfig.GetEnvInt(prefix+"_MAX_TOKENS", maxTokens),

		StaticResponse: envconfig.GetEnvString(prefix+"_STATIC_RESPONSE", ""),
	}
}

// LoadAIConfig loads oracle configuration from environment variables.
// Returns a config with defaults if environment variables are not set.
func LoadAIConfig() (*AIConfig, error) {
	config := &AIConfig{
		Classifier:       loadOracle("CLASSIFIER", 256),
		Summarizer:       loadOracle("SUMMARIZER", 1024),
		SummaryCharLimit: envconfig.GetEnvInt("SUMMARIZER_CHAR_LIMIT", 300),
		OpenAIBaseURL:    envconfig.GetEnvString("OPENAI_BASE_URL", ""),
		SecretsFile:      envconfig.GetEnvString("SECRETS_FILE", ""),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	return config, nil
}

// Validate checks configuration correctness.
func (c *AIConfig) Validate() error {
	if err := c.Classifier.validate("CLASSIFIER"); err != nil {
		return err
	}
	if err := c.Summarizer.validate("SUMMARIZER"); err != nil {
		return err
	}
	if c.SummaryCharLimit <= 0 {
		return fmt.Errorf("SUMMARIZER_CHAR_LIMIT must be positive")
	}
	return nil
}

func (o OracleConfig) validate(prefix string) error {
	switch o.Provider {
	case ProviderClaude, ProviderOpenAI:
	case ProviderStatic:
		return nil
	default:
		return fmt.Errorf("%s_PROVIDER must be claude, openai or static, got %q", prefix, o.Provider)
	}
	if o.Credential == "" {
		return fmt.Errorf("%s_CREDENTIAL cannot be empty", prefix)
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("%s_TIMEOUT must be positive", prefix)
	}
	if o.MaxTokens <= 0 {
		return fmt.Errorf("%s_MAX_TOKENS must be positive", prefix)
	}
	return nil
}
