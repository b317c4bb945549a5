// Package gemini provides a Google Gemini backend for llm-code.
//
// This package implements the llm.Provider interface on top of the official
// google.golang.org/genai SDK. Gemini has no system role inside the turn
// sequence, so system messages are lifted into the system instruction and
// the assistant role is renamed to "model".
package gemini
