// Package anthropic provides an Anthropic Claude backend for llm-code.
//
// The Messages API keeps the system prompt outside the turn sequence, so
// system messages are lifted into the request's system field. SDK retries
// are disabled: a failed call becomes an "Error:" reply right away.
package anthropic
