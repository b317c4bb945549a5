package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 1024

// safeIntToInt32 safely converts int to int32
func safeIntToInt32(val int) int32 {
	if val > 2147483647 {
		return 2147483647
	}
	if val < -2147483648 {
		return -2147483648
	}
	return int32(val)
}

// Client implements the llm.Provider interface for Gemini
type Client struct {
	llm.Base

	genai *genai.Client
}

// NewClient creates a new Gemini client using the official Google Generative AI library.
func NewClient(config llm.ProviderConfig) (*Client, error) {
	if config.APIKey == "" {
		return nil, &llm.Error{Code: "missing_api_key", Message: "API key is required for Gemini", Type: "authentication_error"}
	}
	if config.Model == "" {
		config.Model = llm.DefaultGeminiModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	// Create genai client config
	genaiConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		genaiConfig.HTTPOptions.BaseURL = config.BaseURL
	}
	if config.Timeout > 0 {
		genaiConfig.HTTPOptions.Timeout = &config.Timeout
	}

	genaiClient, err := genai.NewClient(context.Background(), genaiConfig)
	if err != nil {
		return nil, &llm.Error{
			Code:    "client_creation_error",
			Message: fmt.Sprintf("Failed to create genai client: %v", err),
			Type:    "internal_error",
		}
	}

	return &Client{
		Base:  llm.NewBase(llm.ProviderGemini, config.Model, config.MaxTokens),
		genai: genaiClient,
	}, nil
}

// Generate performs a content generation request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)
	system, contents := convertMessages(history)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(o.Temperature),
		MaxOutputTokens: safeIntToInt32(o.MaxTokens),
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{genai.NewPartFromText(system)},
		}
	}

	resp, err := c.genai.Models.GenerateContent(ctx, c.Model(), contents, config)
	if err != nil {
		return llm.ErrorReply(convertError(err))
	}

	text := resp.Text()
	if text == "" {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: emptyResponseReason(resp),
			Type:    "api_error",
		})
	}
	return text
}

// ValidateConnection fetches the configured model as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	_, err := c.genai.Models.Get(ctx, c.Model(), nil)
	return err == nil
}

// convertMessages splits off the system messages and converts the turns to
// genai contents, renaming the assistant role to "model"
func convertMessages(messages []llm.Message) (string, []*genai.Content) {
	system, turns := llm.SplitSystem(messages)

	contents := make([]*genai.Content, 0, len(turns))
	for _, msg := range turns {
		role := genai.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{genai.NewPartFromText(msg.Content)},
		})
	}
	return system, contents
}

// emptyResponseReason explains a response that carries no text
func emptyResponseReason(resp *genai.GenerateContentResponse) string {
	if resp != nil && resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Sprintf("Gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		return fmt.Sprintf("Gemini returned no text (finish reason %s)", resp.Candidates[0].FinishReason)
	}
	return "Gemini returned no text"
}

// convertError converts genai errors to our internal error format
func convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	// Check if it's already our error type
	var ourErr *llm.Error
	if errors.As(err, &ourErr) {
		return ourErr
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &llm.Error{
			Code:       codeForStatus(apiErr.Code, apiErr.Status),
			Message:    apiErr.Message,
			Type:       typeForStatus(apiErr.Code),
			StatusCode: apiErr.Code,
		}
	}

	// Convert specific error types based on error message/content
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "API key") ||
		strings.Contains(errMsg, "authentication") ||
		strings.Contains(errMsg, "unauthorized") ||
		strings.Contains(errMsg, "401"):
		return &llm.Error{
			Code:       "authentication_error",
			Message:    errMsg,
			Type:       "authentication_error",
			StatusCode: http.StatusUnauthorized,
		}
	case strings.Contains(errMsg, "rate limit") ||
		strings.Contains(errMsg, "429"):
		return &llm.Error{
			Code:       "rate_limit_error",
			Message:    errMsg,
			Type:       "rate_limit_error",
			StatusCode: http.StatusTooManyRequests,
		}
	case strings.Contains(errMsg, "quota") ||
		strings.Contains(errMsg, "403"):
		return &llm.Error{
			Code:       "quota_error",
			Message:    errMsg,
			Type:       "quota_error",
			StatusCode: http.StatusForbidden,
		}
	}

	// Default error conversion
	return &llm.Error{
		Code:    "api_error",
		Message: errMsg,
		Type:    "api_error",
	}
}

func codeForStatus(status int, name string) string {
	if name != "" {
		return strings.ToLower(name)
	}
	return fmt.Sprintf("http_%d", status)
}

func typeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "authentication_error"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	case http.StatusBadRequest, http.StatusNotFound:
		return "validation_error"
	default:
		return "api_error"
	}
}
