// Message types and functionality
package llm

import "strings"

// Message represents a single entry of the conversation history
type Message struct {
	Role    MessageRole `json:"role" yaml:"role"`
	Content string      `json:"content" yaml:"content"`
}

// MessageRole defines the role of a message sender
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IsValid reports whether the role is one of the known roles
func (r MessageRole) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// NewTextMessage creates a new Message
func NewTextMessage(role MessageRole, text string) Message {
	return Message{Role: role, Content: text}
}

// NewUserMessage creates a user message
func NewUserMessage(text string) Message {
	return NewTextMessage(RoleUser, text)
}

// NewAssistantMessage creates an assistant message
func NewAssistantMessage(text string) Message {
	return NewTextMessage(RoleAssistant, text)
}

// IsEmpty checks if the message content is empty or whitespace-only
func (m Message) IsEmpty() bool {
	return strings.TrimSpace(m.Content) == ""
}

// SplitSystem separates system messages from the turn sequence, for backends
// that take the system prompt as a dedicated field. When several system
// messages are present they are joined with a blank line.
func SplitSystem(history []Message) (system string, turns []Message) {
	var parts []string
	turns = make([]Message, 0, len(history))
	for _, msg := range history {
		if msg.Role == RoleSystem {
			parts = append(parts, msg.Content)
			continue
		}
		turns = append(turns, msg)
	}
	return strings.Join(parts, "\n\n"), turns
}

// CloneHistory returns a copy of the history that shares no backing array
// with the input
func CloneHistory(history []Message) []Message {
	if history == nil {
		return nil
	}
	out := make([]Message, len(history))
	copy(out, history)
	return out
}
