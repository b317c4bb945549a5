package openai

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for OpenAI
type Client struct {
	llm.Base

	client  *openai.Client
	baseURL string
}

// NewClient creates a new OpenAI client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenAI",
			Type:    "authentication_error",
		}
	}
	if config.Model == "" {
		config.Model = llm.DefaultOpenAIModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	return &Client{
		Base:    llm.NewBase(llm.ProviderOpenAI, config.Model, config.MaxTokens),
		client:  openai.NewClientWithConfig(clientConfig),
		baseURL: clientConfig.BaseURL,
	}, nil
}

// Generate performs a chat completion request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.Model(),
		Messages:    convertMessages(history),
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	})
	if err != nil {
		return llm.ErrorReply(convertError(err))
	}
	if len(resp.Choices) == 0 {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: "OpenAI returned no choices",
			Type:    "api_error",
		})
	}
	return resp.Choices[0].Message.Content
}

// ValidateConnection lists the models as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	_, err := c.client.ListModels(ctx)
	return err == nil
}

// BaseURL returns the API endpoint in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// convertMessages converts the history to OpenAI messages, keeping roles as is
func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRole(role llm.MessageRole) string {
	switch role {
	case llm.RoleSystem:
		return openai.ChatMessageRoleSystem
	case llm.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}

// convertError converts go-openai errors to our error format
func convertError(err error) *llm.Error {
	// Try to parse as OpenAI API error
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		code := "unknown"
		if apiErr.Code != nil {
			if codeStr, ok := apiErr.Code.(string); ok {
				code = codeStr
			}
		}
		return &llm.Error{
			Code:       code,
			Message:    apiErr.Message,
			Type:       apiErr.Type,
			StatusCode: apiErr.HTTPStatusCode,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.Error{
			Code:       "request_error",
			Message:    reqErr.Error(),
			Type:       "api_error",
			StatusCode: reqErr.HTTPStatusCode,
		}
	}

	// Generic error
	return &llm.Error{
		Code:    "unknown_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}
