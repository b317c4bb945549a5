package mock

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultModel is the model name reported when none is configured
const DefaultModel = llm.DefaultMockModel

// secureRandomFloat64 generates a cryptographically secure random float64 between 0 and 1
func secureRandomFloat64() (float64, error) {
	var bytes [8]byte
	_, err := rand.Read(bytes[:])
	if err != nil {
		return 0, err
	}
	// Convert bytes to uint64, then to float64 between 0 and 1
	return float64(binary.BigEndian.Uint64(bytes[:])) / float64(^uint64(0)), nil
}

// Call records one Generate invocation
type Call struct {
	History []llm.Message
	Options llm.GenerateOptions
}

// Client implements the llm.Provider interface for testing
type Client struct {
	llm.Base

	mu                sync.Mutex
	replies           []string
	replyIndex        int
	errors            []error
	errorIndex        int
	callLog           []Call
	latencySimulation time.Duration
	failureRate       float64
	healthy           bool
}

// NewClient creates a new mock provider. It never needs an API key.
func NewClient(cfg llm.ProviderConfig) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		Base:    llm.NewBase(llm.ProviderMock, model, cfg.MaxTokens),
		replies: []string{},
		errors:  []error{},
		callLog: []Call{},
		healthy: true,
	}, nil
}

// Generate returns the next scripted error or reply, or a canned reply based
// on the last user message
func (m *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	m.mu.Lock()
	m.callLog = append(m.callLog, Call{
		History: llm.CloneHistory(history),
		Options: m.Options(opts...),
	})
	latency := m.latencySimulation
	failureRate := m.failureRate
	m.mu.Unlock()

	if latency > 0 {
		select {
		case <-time.After(latency):
		case <-ctx.Done():
			return llm.ErrorReply(&llm.Error{
				Code:    "canceled",
				Message: ctx.Err().Error(),
				Type:    "network_error",
			})
		}
	}

	if failureRate > 0 {
		randomValue, err := secureRandomFloat64()
		if err != nil {
			return llm.ErrorReply(fmt.Errorf("generating random number: %w", err))
		}
		if randomValue < failureRate {
			return llm.ErrorReply(&llm.Error{
				Code:    "simulated_failure",
				Message: "Simulated random failure",
				Type:    "mock_error",
			})
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.errorIndex < len(m.errors) {
		err := m.errors[m.errorIndex]
		m.errorIndex++
		return llm.ErrorReply(err)
	}

	if m.replyIndex < len(m.replies) {
		reply := m.replies[m.replyIndex]
		m.replyIndex++
		return reply
	}

	return cannedReply(history)
}

// ValidateConnection reports the configured health status
func (m *Client) ValidateConnection(_ context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthy
}

// cannedReply creates a context-aware reply from the last user message
func cannedReply(history []llm.Message) string {
	var lastUserMessage string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == llm.RoleUser {
			lastUserMessage = history[i].Content
			break
		}
	}

	lowerMsg := strings.ToLower(lastUserMessage)
	switch {
	case strings.Contains(lowerMsg, "hello") || strings.Contains(lowerMsg, "hi"):
		return "Hello! How can I help you today?"
	case strings.Contains(lowerMsg, "help"):
		return "I'm here to help! I can assist with reading and explaining your code."
	case strings.Contains(lowerMsg, "test"):
		return "This is a mock response for testing purposes. The system is working correctly."
	default:
		return fmt.Sprintf("I understand you're asking about: %s. Let me help you with that.", lastUserMessage)
	}
}

// AddReply queues a reply
func (m *Client) AddReply(reply string) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, reply)
	return m
}

// AddError queues a backend failure, returned before any queued reply
func (m *Client) AddError(err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
	return m
}

// WithError queues a backend failure built from its parts
func (m *Client) WithError(code, message, errorType string) *Client {
	return m.AddError(&llm.Error{
		Code:    code,
		Message: message,
		Type:    errorType,
	})
}

// WithLatency delays every Generate call
func (m *Client) WithLatency(duration time.Duration) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencySimulation = duration
	return m
}

// WithFailureRate makes a fraction of calls fail at random
func (m *Client) WithFailureRate(rate float64) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failureRate = rate
	return m
}

// WithHealth sets the result of ValidateConnection
func (m *Client) WithHealth(healthy bool) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthy = healthy
	return m
}

// GetCallLog returns a copy of every recorded call
func (m *Client) GetCallLog() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.callLog))
	copy(out, m.callLog)
	return out
}

// GetLastCall returns the most recent call, or nil
func (m *Client) GetLastCall() *Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.callLog) == 0 {
		return nil
	}
	last := m.callLog[len(m.callLog)-1]
	return &last
}

// Reset clears scripted replies, errors and the call log
func (m *Client) Reset() *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = []string{}
	m.replyIndex = 0
	m.errors = []error{}
	m.errorIndex = 0
	m.callLog = []Call{}
	m.latencySimulation = 0
	m.failureRate = 0
	m.healthy = true
	return m
}

// AssertCallCount reports whether Generate was called the expected number of times
func (m *Client) AssertCallCount(expected int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.callLog) == expected
}

// AssertLastMessageContains reports whether the last message of the last
// call contains text
func (m *Client) AssertLastMessageContains(text string) bool {
	last := m.GetLastCall()
	if last == nil || len(last.History) == 0 {
		return false
	}
	return strings.Contains(last.History[len(last.History)-1].Content, text)
}
