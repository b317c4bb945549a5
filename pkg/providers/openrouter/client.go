package openrouter

import (
	"context"
	"net/http"

	"github.com/revrost/go-openrouter"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for OpenRouter
type Client struct {
	llm.Base

	client *openrouter.Client
}

// NewClient creates a new OpenRouter client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for OpenRouter",
			Type:    "authentication_error",
		}
	}
	if config.Model == "" {
		config.Model = llm.DefaultOpenRouterModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	// Create OpenRouter client configuration
	clientConfig := openrouter.DefaultConfig(config.APIKey)

	// Set custom base URL if provided
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	// Set additional OpenRouter-specific configurations from Extra field
	if config.Extra != nil {
		if siteURL, ok := config.Extra["site_url"]; ok {
			clientConfig.HttpReferer = siteURL
		}
		if appName, ok := config.Extra["app_name"]; ok {
			clientConfig.XTitle = appName
		}
	}

	return &Client{
		Base:   llm.NewBase(llm.ProviderOpenRouter, config.Model, config.MaxTokens),
		client: openrouter.NewClientWithConfig(*clientConfig),
	}, nil
}

// Generate performs a chat completion request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)

	resp, err := c.client.CreateChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model:       c.Model(),
		Messages:    convertMessages(history),
		Temperature: o.Temperature,
		MaxTokens:   o.MaxTokens,
	})
	if err != nil {
		return llm.ErrorReply(convertOpenRouterError(err))
	}
	if len(resp.Choices) == 0 {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: "OpenRouter returned no choices",
			Type:    "api_error",
		})
	}
	return resp.Choices[0].Message.Content.Text
}

// ValidateConnection lists the models as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	_, err := c.client.ListModels(ctx)
	return err == nil
}

// convertMessages converts the history to OpenRouter messages
func convertMessages(messages []llm.Message) []openrouter.ChatCompletionMessage {
	out := make([]openrouter.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := string(msg.Role)
		if !msg.Role.IsValid() {
			role = string(llm.RoleUser)
		}
		out = append(out, openrouter.ChatCompletionMessage{
			Role:    role,
			Content: openrouter.Content{Text: msg.Content},
		})
	}
	return out
}
