// Package mock provides a scripted provider for testing llm-code.
//
// This package implements the llm.Provider interface with configurable
// replies, errors, and behaviors, so conversations can be exercised without
// any network traffic.
//
// Features:
// - Pre-configured replies and errors, consumed in order
// - Context-aware canned replies when nothing is scripted
// - Latency and failure rate simulation
// - Call logging and assertions
//
// It is not part of factory.Default; tests register it on their own
// registries.
package mock
