package ollama

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for Ollama
type Client struct {
	llm.Base

	client  *api.Client
	baseURL string
}

// NewClient creates a new Ollama client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = llm.DefaultOllamaBaseURL
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	// Ensure the base URL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, &llm.Error{
			Code:    "invalid_base_url",
			Message: fmt.Sprintf("invalid Ollama URL %q: %v", baseURL, err),
			Type:    "validation_error",
		}
	}

	if config.Model == "" {
		config.Model = llm.DefaultOllamaModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = llm.DefaultOllamaTimeout
	}

	return &Client{
		Base:    llm.NewBase(llm.ProviderOllama, config.Model, config.MaxTokens),
		client:  api.NewClient(u, &http.Client{Timeout: timeout}),
		baseURL: baseURL,
	}, nil
}

// Generate performs a non-streaming chat request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)
	stream := false

	req := &api.ChatRequest{
		Model:    c.Model(),
		Messages: convertMessages(history),
		Stream:   &stream,
		Options: map[string]any{
			"temperature": o.Temperature,
			"num_predict": o.MaxTokens,
		},
	}

	var content strings.Builder
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return llm.ErrorReply(convertOllamaError(err))
	}
	return content.String()
}

// ValidateConnection lists the local models as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	_, err := c.client.List(ctx)
	return err == nil
}

// BaseURL returns the Ollama server in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// convertMessages converts the history to Ollama messages
func convertMessages(messages []llm.Message) []api.Message {
	out := make([]api.Message, 0, len(messages))
	for _, msg := range messages {
		out = append(out, api.Message{
			Role:    convertRoleToOllama(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRoleToOllama(role llm.MessageRole) string {
	switch role {
	case llm.RoleAssistant:
		return "assistant"
	case llm.RoleSystem:
		return "system"
	default:
		return "user"
	}
}

// convertOllamaError converts errors from the Ollama client to our format
func convertOllamaError(err error) *llm.Error {
	var statusErr api.StatusError
	if errors.As(err, &statusErr) {
		message := statusErr.ErrorMessage
		if message == "" {
			message = fmt.Sprintf("HTTP %d: %s", statusErr.StatusCode, statusErr.Status)
		}
		return &llm.Error{
			Code:       fmt.Sprintf("ollama_%d", statusErr.StatusCode),
			Message:    message,
			Type:       "api_error",
			StatusCode: statusErr.StatusCode,
		}
	}

	code := "ollama_error"
	errorType := "api_error"
	if msg := strings.ToLower(err.Error()); strings.Contains(msg, "connection refused") {
		code = "connection_error"
		errorType = "network_error"
	}
	return &llm.Error{
		Code:    code,
		Message: err.Error(),
		Type:    errorType,
	}
}
