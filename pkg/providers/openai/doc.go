// Package openai provides an OpenAI backend for llm-code.
//
// This package implements the llm.Provider interface for OpenAI's chat
// completion API. The conversation history is passed through with its roles
// unchanged.
//
// Features:
// - Any chat model served by the Chat Completions API
// - Custom base URLs, for OpenAI-compatible servers
// - Health check through the models list endpoint
//
// Backend failures are returned as "Error:" replies built from the API error.
package openai
