// Package llm provides the provider-agnostic abstractions shared by every
// backend of llm-code.
//
// This package defines the Provider contract that all backends implement,
// along with the conversation message type, provider configuration, the
// standardized error types and a small middleware layer.
//
// The main components include:
//
// - Provider interface: generate a reply from a message history
// - Base: common fields and context formatting embedded by backends
// - Message: one entry of the conversation history
// - ProviderConfig: static per-backend configuration
// - Error handling: sentinel errors and the backend Error type
// - Middleware: hooks around generation, including zap logging
//
// Backend implementations live in separate packages under /pkg/providers/
// to keep SDK dependencies out of this package and avoid import cycles.
package llm
