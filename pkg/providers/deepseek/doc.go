// Package deepseek provides an LLM backend for DeepSeek models.
//
// This provider implements the llm.Provider interface for DeepSeek's chat
// completion API, passing the history through with its roles unchanged.
//
// Key features:
//   - Text chat completions over the whole conversation
//   - Configurable base URL and timeout
//   - Errors classified from the API error text
//
// Usage:
//
//	client, err := deepseek.NewClient(llm.ProviderConfig{
//	    APIKey: "your-api-key",
//	    Model:  "deepseek-chat",
//	})
package deepseek
