package deepseek

import (
	"context"
	"net/http"
	"strings"

	"github.com/cohesion-org/deepseek-go"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for DeepSeek
type Client struct {
	llm.Base

	client *deepseek.Client
}

// NewClient creates a new DeepSeek client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for DeepSeek",
			Type:    "authentication_error",
		}
	}
	if config.Model == "" {
		config.Model = llm.DefaultDeepSeekModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	// Prepare client options
	var opts []deepseek.Option

	// Set custom base URL if provided
	if config.BaseURL != "" {
		// Basic URL validation
		if config.BaseURL == "http://" || config.BaseURL == "https://" {
			return nil, &llm.Error{
				Code:    "invalid_base_url",
				Message: "base URL cannot be just a protocol",
				Type:    "validation_error",
			}
		}
		baseURL := config.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, deepseek.WithBaseURL(baseURL))
	}

	// Set timeout if provided
	if config.Timeout > 0 {
		opts = append(opts, deepseek.WithTimeout(config.Timeout))
	}

	// Create the DeepSeek client
	var client *deepseek.Client
	if len(opts) > 0 {
		var err error
		client, err = deepseek.NewClientWithOptions(config.APIKey, opts...)
		if err != nil {
			return nil, &llm.Error{
				Code:    "client_creation_error",
				Message: "Failed to create DeepSeek client: " + err.Error(),
				Type:    "configuration_error",
			}
		}
	} else {
		client = deepseek.NewClient(config.APIKey)
	}

	return &Client{
		Base:   llm.NewBase(llm.ProviderDeepSeek, config.Model, config.MaxTokens),
		client: client,
	}, nil
}

// Generate performs a chat completion request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)

	resp, err := c.client.CreateChatCompletion(ctx, &deepseek.ChatCompletionRequest{
		Model:       c.Model(),
		Messages:    convertMessages(history),
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	})
	if err != nil {
		return llm.ErrorReply(convertError(err))
	}
	if resp == nil || len(resp.Choices) == 0 {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: "DeepSeek returned no choices",
			Type:    "api_error",
		})
	}
	return resp.Choices[0].Message.Content
}

// ValidateConnection sends a one-token request as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	// Simple test request with minimal parameters
	req := deepseek.ChatCompletionRequest{
		Model: c.Model(),
		Messages: []deepseek.ChatCompletionMessage{
			{
				Role:    "user",
				Content: "test",
			},
		},
		MaxTokens: 1,
	}

	_, err := c.client.CreateChatCompletion(ctx, &req)
	return err == nil
}

// convertMessages converts the history to DeepSeek messages
func convertMessages(messages []llm.Message) []deepseek.ChatCompletionMessage {
	out := make([]deepseek.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = deepseek.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		}
	}
	return out
}

func convertRole(role llm.MessageRole) string {
	switch role {
	case llm.RoleSystem:
		return "system"
	case llm.RoleAssistant:
		return "assistant"
	default:
		return "user"
	}
}

// convertError classifies deepseek-go errors, which only carry text
func convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	errorMsg := err.Error()
	lower := strings.ToLower(errorMsg)

	// Default error mapping
	code := "api_error"
	errorType := "api_error"
	statusCode := 0

	// Basic error classification based on error message
	switch {
	case strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") || strings.Contains(lower, "authentication"):
		code = "authentication_error"
		errorType = "authentication_error"
		statusCode = http.StatusUnauthorized
	case strings.Contains(lower, "insufficient balance") || strings.Contains(lower, "402"):
		code = "insufficient_balance"
		errorType = "quota_error"
		statusCode = http.StatusPaymentRequired
	case strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests"):
		code = "rate_limit_error"
		errorType = "rate_limit_error"
		statusCode = http.StatusTooManyRequests
	case strings.Contains(lower, "model") && strings.Contains(lower, "not found"):
		code = "model_not_found"
		errorType = "model_error"
		statusCode = http.StatusNotFound
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline"):
		code = "timeout_error"
		errorType = "network_error"
		statusCode = http.StatusRequestTimeout
	case strings.Contains(lower, "validation") || strings.Contains(lower, "invalid"):
		code = "validation_error"
		errorType = "validation_error"
		statusCode = http.StatusBadRequest
	}

	return &llm.Error{
		Code:       code,
		Message:    errorMsg,
		Type:       errorType,
		StatusCode: statusCode,
	}
}
