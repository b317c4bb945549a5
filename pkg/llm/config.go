// Provider configuration
package llm

import "time"

// Backend identifiers of the built-in providers
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderDeepSeek   = "deepseek"
	ProviderOpenRouter = "openrouter"
	ProviderOllama     = "ollama"
	ProviderBedrock    = "bedrock"
	ProviderMock       = "mock"
)

const (
	DefaultAnthropicModel  = "claude-3-5-sonnet-20240620"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultGeminiModel     = "gemini-1.5-flash"
	DefaultDeepSeekModel   = "deepseek-chat"
	DefaultOpenRouterModel = "openai/gpt-4o-mini"
	DefaultOllamaModel     = "llama3.1"
	DefaultBedrockModel    = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultMockModel       = "mock-model"
)

const DefaultOllamaBaseURL = "http://localhost:11434"

const DefaultBedrockRegion = "us-east-1"

// DefaultOllamaTimeout applies to local inference, which can be slow
const DefaultOllamaTimeout = 120 * time.Second

// ProviderConfig holds the static configuration of one backend. It is
// treated as immutable once loaded.
type ProviderConfig struct {
	APIKey    string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model     string            `json:"model" yaml:"model"`
	BaseURL   string            `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	MaxTokens int               `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	Timeout   time.Duration     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Keyless   bool              `json:"keyless,omitempty" yaml:"keyless,omitempty"` // backend authenticates without an API key
	Extra     map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`     // Provider-specific configs
}

// Usable reports whether the configuration is enough to build a client
func (c ProviderConfig) Usable() bool {
	return c.APIKey != "" || c.Keyless
}

// Clone returns a copy that shares no maps with the receiver
func (c ProviderConfig) Clone() ProviderConfig {
	out := c
	if c.Extra != nil {
		out.Extra = make(map[string]string, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
