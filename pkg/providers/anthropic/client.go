package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for Anthropic
type Client struct {
	llm.Base

	client anthropic.Client
}

// NewClient creates a new Anthropic client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{
			Code:    "missing_api_key",
			Message: "API key is required for Anthropic",
			Type:    "authentication_error",
		}
	}
	if config.Model == "" {
		config.Model = llm.DefaultAnthropicModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	return &Client{
		Base:   llm.NewBase(llm.ProviderAnthropic, config.Model, config.MaxTokens),
		client: anthropic.NewClient(opts...),
	}, nil
}

// Generate sends the whole history to the Messages API
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)

	params := convertRequest(c.Model(), history)
	params.MaxTokens = int64(o.MaxTokens)
	params.Temperature = anthropic.Float(float64(o.Temperature))

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return llm.ErrorReply(convertError(err))
	}

	text := responseText(msg)
	if text == "" {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: "Anthropic returned no text (stop reason " + string(msg.StopReason) + ")",
			Type:    "api_error",
		})
	}
	return text
}

// ValidateConnection sends a one-token request as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	params := convertRequest(c.Model(), []llm.Message{llm.NewUserMessage("test")})
	params.MaxTokens = 1
	_, err := c.client.Messages.New(ctx, params)
	return err == nil
}

// convertRequest lifts the system messages into the system field and
// converts the remaining turns
func convertRequest(model string, history []llm.Message) anthropic.MessageNewParams {
	system, turns := llm.SplitSystem(history)

	params := anthropic.MessageNewParams{
		Model:    anthropic.Model(model),
		Messages: make([]anthropic.MessageParam, 0, len(turns)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	for _, msg := range turns {
		block := anthropic.NewTextBlock(msg.Content)
		if msg.Role == llm.RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}
	return params
}

// responseText joins the text blocks of a response
func responseText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String()
}

// errorBody is the JSON error envelope of the Anthropic API
type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// convertError converts Anthropic SDK errors to our error format
func convertError(err error) *llm.Error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		out := &llm.Error{
			Code:       "api_error",
			Message:    apiErr.Error(),
			Type:       typeForStatus(apiErr.StatusCode),
			StatusCode: apiErr.StatusCode,
		}

		var body errorBody
		if jsonErr := json.Unmarshal([]byte(apiErr.RawJSON()), &body); jsonErr == nil && body.Error.Message != "" {
			out.Message = body.Error.Message
			if body.Error.Type != "" {
				out.Code = body.Error.Type
			}
		}
		return out
	}

	errorType := "api_error"
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		errorType = "network_error"
	}
	return &llm.Error{
		Code:    "unknown_error",
		Message: err.Error(),
		Type:    errorType,
	}
}

func typeForStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "authentication_error"
	case status == http.StatusTooManyRequests:
		return "rate_limit_error"
	case status == 529 || status >= 500:
		return "api_error"
	case status >= 400:
		return "validation_error"
	default:
		return "api_error"
	}
}
