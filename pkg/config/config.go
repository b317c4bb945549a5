package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inercia/llm-code/pkg/llm"
)

// Config holds the configuration of every known backend
type Config struct {
	DefaultProvider string                        `yaml:"default_provider"`
	Providers       map[string]llm.ProviderConfig `yaml:"providers"`
}

// Default returns the built-in configuration: every backend with its default
// model and no credentials
func Default() *Config {
	return &Config{
		DefaultProvider: llm.ProviderGemini,
		Providers: map[string]llm.ProviderConfig{
			llm.ProviderAnthropic:  {Model: llm.DefaultAnthropicModel, MaxTokens: 4096},
			llm.ProviderOpenAI:     {Model: llm.DefaultOpenAIModel, MaxTokens: 4096},
			llm.ProviderGemini:     {Model: llm.DefaultGeminiModel, MaxTokens: 1024},
			llm.ProviderDeepSeek:   {Model: llm.DefaultDeepSeekModel, MaxTokens: 4096},
			llm.ProviderOpenRouter: {Model: llm.DefaultOpenRouterModel, MaxTokens: 4096},
			llm.ProviderOllama: {
				Model:     llm.DefaultOllamaModel,
				BaseURL:   llm.DefaultOllamaBaseURL,
				MaxTokens: 4096,
				Timeout:   llm.DefaultOllamaTimeout,
				Keyless:   true,
			},
			llm.ProviderBedrock: {
				Model:     llm.DefaultBedrockModel,
				MaxTokens: 4096,
				Extra:     map[string]string{"region": llm.DefaultBedrockRegion},
			},
		},
	}
}

// Lookup returns a copy of the configuration of a backend
func (c *Config) Lookup(name string) (llm.ProviderConfig, bool) {
	cfg, ok := c.Providers[normalize(name)]
	if !ok {
		return llm.ProviderConfig{}, false
	}
	return cfg.Clone(), true
}

// IsUsable reports whether a backend is configured with enough to build a
// client: an API key, or no need for one
func (c *Config) IsUsable(name string) bool {
	cfg, ok := c.Lookup(name)
	return ok && cfg.Usable()
}

// Names returns the configured backend identifiers, sorted
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Usable returns the sorted identifiers of the usable backends
func (c *Config) Usable() []string {
	var names []string
	for _, name := range c.Names() {
		if c.IsUsable(name) {
			names = append(names, name)
		}
	}
	return names
}

func (c *Config) validate() error {
	if _, ok := c.Providers[c.DefaultProvider]; !ok {
		return fmt.Errorf("%w: default provider %q", llm.ErrUnknownProvider, c.DefaultProvider)
	}
	for name, cfg := range c.Providers {
		if cfg.Model == "" {
			return fmt.Errorf("provider %s: model is required", name)
		}
		if cfg.MaxTokens < 0 {
			return fmt.Errorf("provider %s: max_tokens must not be negative", name)
		}
	}
	return nil
}

// merge overlays the non-zero fields of src onto dst
func merge(dst, src llm.ProviderConfig) llm.ProviderConfig {
	out := dst.Clone()
	if src.APIKey != "" {
		out.APIKey = src.APIKey
	}
	if src.Model != "" {
		out.Model = src.Model
	}
	if src.BaseURL != "" {
		out.BaseURL = src.BaseURL
	}
	if src.MaxTokens != 0 {
		out.MaxTokens = src.MaxTokens
	}
	if src.Timeout != 0 {
		out.Timeout = src.Timeout
	}
	if src.Keyless {
		out.Keyless = true
	}
	for k, v := range src.Extra {
		if out.Extra == nil {
			out.Extra = make(map[string]string, len(src.Extra))
		}
		out.Extra[k] = v
	}
	return out
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
