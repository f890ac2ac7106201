package llm

import (
	"fmt"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Config selects one provider and its credentials.
type Config struct {
	Provider string
	APIKey   string

	// Model is a friendly alias or a vendor model id. Empty uses the
	// provider default.
	Model string

	// BaseURL overrides the endpoint for OpenAI-compatible APIs.
	BaseURL string

	Retry RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

// RetryConfig is the exponential backoff schedule for transient errors.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetry returns the production retry schedule.
func DefaultRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Second,
		MaxWait:     8 * time.Second,
		Multiplier:  2,
	}
}

// defaultModels is the model used per provider when Config.Model is empty.
var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
	ProviderMock:       "mock",
}

// vendorKeys are the conventional API key variables probed, in order,
// when DRILLS_LLM_PROVIDER is unset.
var vendorKeys = []struct {
	provider, env string
}{
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// ConfigFromEnv resolves provider settings from DRILLS_LLM_PROVIDER,
// DRILLS_LLM_API_KEY, DRILLS_LLM_MODEL and DRILLS_LLM_BASE_URL, falling
// back to the vendors' own API key variables. It reports false when no
// provider is configured.
func ConfigFromEnv(getenv func(string) string) (Config, bool) {
	cfg := Config{
		Provider: getenv("DRILLS_LLM_PROVIDER"),
		APIKey:   getenv("DRILLS_LLM_API_KEY"),
		Model:    getenv("DRILLS_LLM_MODEL"),
		BaseURL:  getenv("DRILLS_LLM_BASE_URL"),
		Retry:    DefaultRetry(),
		Timeout:  30 * time.Second,
	}

	for _, vk := range vendorKeys {
		if cfg.Provider != "" && cfg.Provider != vk.provider {
			continue
		}
		if cfg.APIKey == "" {
			cfg.APIKey = getenv(vk.env)
		}
		if cfg.APIKey != "" && cfg.Provider == "" {
			cfg.Provider = vk.provider
		}
	}

	if cfg.Provider == "" {
		return Config{}, false
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[cfg.Provider]
	}
	if cfg.Provider == ProviderOpenRouter && cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	return cfg, true
}

// Validate checks the provider is known and has a key.
func (c Config) Validate() error {
	if _, ok := defaultModels[c.Provider]; !ok {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Provider != ProviderMock && c.APIKey == "" {
		return fmt.Errorf("an API key is required for the %s provider (set DRILLS_LLM_API_KEY)", c.Provider)
	}
	return nil
}

// resolveModel maps a friendly alias to a vendor model id; anything else
// passes through unchanged.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
