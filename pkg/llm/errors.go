// Error types and handling
package llm

import (
	"errors"
	"strings"
)

var (
	// ErrUnknownProvider is returned when a backend identifier has no
	// registered constructor. It indicates a caller bug.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrProviderNotConfigured is returned when a backend has no usable
	// configuration (typically a missing API key)
	ErrProviderNotConfigured = errors.New("provider is not configured")

	// ErrNoProvider is returned when a turn is requested without an
	// active provider
	ErrNoProvider = errors.New("no provider available")
)

// ErrorPrefix starts every reply that represents a backend failure
const ErrorPrefix = "Error:"

// Error represents a standardized backend error
type Error struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	StatusCode int    `json:"status_code,omitempty"`
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorReply converts a backend failure into the reply string handed back
// to the conversation
func ErrorReply(err error) string {
	if err == nil {
		return ErrorPrefix + " unknown error"
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		var llmErr *Error
		if errors.As(err, &llmErr) && llmErr.Code != "" {
			msg = llmErr.Code
		} else {
			msg = "unknown error"
		}
	}
	return ErrorPrefix + " " + msg
}

// IsErrorReply reports whether a reply represents a backend failure
func IsErrorReply(reply string) bool {
	return strings.HasPrefix(reply, ErrorPrefix)
}
