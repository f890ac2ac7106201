package llm

import "testing"

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestConfigFromEnv(t *testing.T) {
	tests := []struct {
		name         string
		vars         map[string]string
		wantOK       bool
		wantProvider string
		wantKey      string
		wantModel    string
		wantBaseURL  string
	}{
		{
			name:   "nothing set",
			vars:   nil,
			wantOK: false,
		},
		{
			name:         "explicit provider and key",
			vars:         map[string]string{"DRILLS_LLM_PROVIDER": "gemini", "DRILLS_LLM_API_KEY": "g-key"},
			wantOK:       true,
			wantProvider: ProviderGemini,
			wantKey:      "g-key",
			wantModel:    "gemini-flash",
		},
		{
			name:         "explicit provider uses vendor key",
			vars:         map[string]string{"DRILLS_LLM_PROVIDER": "openai", "OPENAI_API_KEY": "o-key", "ANTHROPIC_API_KEY": "a-key"},
			wantOK:       true,
			wantProvider: ProviderOpenAI,
			wantKey:      "o-key",
			wantModel:    "gpt-4o-mini",
		},
		{
			name:         "discovered in priority order",
			vars:         map[string]string{"GEMINI_API_KEY": "g-key", "ANTHROPIC_API_KEY": "a-key"},
			wantOK:       true,
			wantProvider: ProviderAnthropic,
			wantKey:      "a-key",
			wantModel:    "claude-haiku",
		},
		{
			name:         "openrouter gets its base url",
			vars:         map[string]string{"OPENROUTER_API_KEY": "r-key", "DRILLS_LLM_MODEL": "meta/llama"},
			wantOK:       true,
			wantProvider: ProviderOpenRouter,
			wantKey:      "r-key",
			wantModel:    "meta/llama",
			wantBaseURL:  openRouterBaseURL,
		},
		{
			name:         "mock needs no key",
			vars:         map[string]string{"DRILLS_LLM_PROVIDER": "mock"},
			wantOK:       true,
			wantProvider: ProviderMock,
			wantModel:    "mock",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, ok := ConfigFromEnv(env(tt.vars))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if cfg.Provider != tt.wantProvider || cfg.APIKey != tt.wantKey || cfg.Model != tt.wantModel || cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("cfg = %+v", cfg)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{Provider: "cohere", APIKey: "k"}).Validate(); err == nil {
		t.Error("unknown provider accepted")
	}
	if err := (Config{Provider: ProviderAnthropic}).Validate(); err == nil {
		t.Error("missing key accepted")
	}
}

func TestResolveModel(t *testing.T) {
	if got := resolveModel("claude-haiku", anthropicAliases); got != "claude-haiku-4-5-20251001" {
		t.Errorf("alias resolved to %q", got)
	}
	if got := resolveModel("claude-custom-1", anthropicAliases); got != "claude-custom-1" {
		t.Errorf("raw id resolved to %q", got)
	}
}
