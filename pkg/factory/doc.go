// Package factory maps backend identifiers to provider constructors.
//
// A Registry is an explicit value handed to whoever needs to build
// providers, so tests can substitute their own constructors. Default
// returns a registry holding every built-in backend.
//
// Key components:
//   - Registry with thread-safe registration and lookup
//   - Constructor signature shared by all backends
//   - Default, the registry of built-in providers
//
// Example usage:
//
//	reg := factory.Default()
//	provider, err := reg.Create("openai", llm.ProviderConfig{
//	    APIKey: "your-api-key",
//	    Model:  "gpt-4o-mini",
//	}, logger)
package factory
