package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"

	"github.com/inercia/llm-code/pkg/llm"
)

// DefaultMaxTokens is the output token limit used when none is configured
const DefaultMaxTokens = 4096

// Client implements the llm.Provider interface for AWS Bedrock
type Client struct {
	llm.Base

	bedrockClient        *bedrock.Client
	bedrockRuntimeClient *bedrockruntime.Client
	region               string
}

// NewClient creates a new AWS Bedrock client
func NewClient(config llm.ProviderConfig) (*Client, error) {
	return newClient(config)
}

func newClient(config llm.ProviderConfig, loadOpts ...func(*awsconfig.LoadOptions) error) (*Client, error) {
	// Get region from Extra config or use default
	region := llm.DefaultBedrockRegion
	if r := config.Extra["region"]; r != "" {
		region = r
	}
	if config.Model == "" {
		config.Model = llm.DefaultBedrockModel
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultMaxTokens
	}

	// Create AWS configuration
	loadOpts = append([]func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}, loadOpts...)
	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, &llm.Error{
			Code:    "aws_config_error",
			Message: fmt.Sprintf("Failed to load AWS configuration: %v", err),
			Type:    "authentication_error",
		}
	}

	// Create Bedrock clients with optional custom endpoints
	bedrockClient := bedrock.NewFromConfig(awsConfig, func(o *bedrock.Options) {
		if endpoint := config.Extra["bedrock_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	bedrockRuntimeClient := bedrockruntime.NewFromConfig(awsConfig, func(o *bedrockruntime.Options) {
		if endpoint := config.Extra["bedrock_runtime_endpoint"]; endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		// Support config.BaseURL for consistency with other providers
		if config.BaseURL != "" {
			o.BaseEndpoint = aws.String(config.BaseURL)
		}
	})

	return &Client{
		Base:                 llm.NewBase(llm.ProviderBedrock, config.Model, config.MaxTokens),
		bedrockClient:        bedrockClient,
		bedrockRuntimeClient: bedrockRuntimeClient,
		region:               region,
	}, nil
}

// Generate performs a Converse request over the whole history
func (c *Client) Generate(ctx context.Context, history []llm.Message, opts ...llm.GenerateOption) string {
	o := c.Options(opts...)
	system, messages := convertMessages(history)

	input := &bedrockruntime.ConverseInput{
		ModelId:  aws.String(c.Model()),
		Messages: messages,
		InferenceConfig: &types.InferenceConfiguration{
			MaxTokens:   aws.Int32(safeInt32(o.MaxTokens)),
			Temperature: aws.Float32(o.Temperature),
		},
	}
	if len(system) > 0 {
		input.System = system
	}

	out, err := c.bedrockRuntimeClient.Converse(ctx, input)
	if err != nil {
		return llm.ErrorReply(convertError(err))
	}

	text, ok := outputText(out)
	if !ok {
		return llm.ErrorReply(&llm.Error{
			Code:    "empty_response",
			Message: fmt.Sprintf("Bedrock returned no text (stop reason %s)", out.StopReason),
			Type:    "api_error",
		})
	}
	return text
}

// ValidateConnection lists the foundation models as a health check
func (c *Client) ValidateConnection(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, llm.HealthCheckTimeout)
	defer cancel()

	_, err := c.bedrockClient.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{})
	return err == nil
}

// Region returns the AWS region in use
func (c *Client) Region() string {
	return c.region
}

// convertMessages lifts the system messages into system blocks and converts
// the remaining turns to Converse messages
func convertMessages(history []llm.Message) ([]types.SystemContentBlock, []types.Message) {
	system, turns := llm.SplitSystem(history)

	var systemBlocks []types.SystemContentBlock
	if system != "" {
		systemBlocks = append(systemBlocks, &types.SystemContentBlockMemberText{Value: system})
	}

	messages := make([]types.Message, 0, len(turns))
	for _, msg := range turns {
		role := types.ConversationRoleUser
		if msg.Role == llm.RoleAssistant {
			role = types.ConversationRoleAssistant
		}
		messages = append(messages, types.Message{
			Role: role,
			Content: []types.ContentBlock{
				&types.ContentBlockMemberText{Value: msg.Content},
			},
		})
	}
	return systemBlocks, messages
}

// outputText joins the text blocks of a Converse response
func outputText(out *bedrockruntime.ConverseOutput) (string, bool) {
	if out == nil {
		return "", false
	}
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", false
	}

	var parts []string
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			parts = append(parts, text.Value)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, ""), true
}

func safeInt32(val int) int32 {
	if val > 2147483647 {
		return 2147483647
	}
	return int32(val)
}

// convertError converts AWS errors to our error format
func convertError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	// Check if it's already our error type
	var ourErr *llm.Error
	if errors.As(err, &ourErr) {
		return ourErr
	}

	errMsg := err.Error()
	code := ""
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.ErrorCode()
		if apiErr.ErrorMessage() != "" {
			errMsg = apiErr.ErrorMessage()
		}
	}

	switch {
	case code == "AccessDeniedException" ||
		code == "UnrecognizedClientException" ||
		strings.Contains(errMsg, "UnauthorizedOperation") ||
		strings.Contains(errMsg, "AuthFailure"):
		return &llm.Error{
			Code:       "authentication_error",
			Message:    errMsg,
			Type:       "authentication_error",
			StatusCode: 401,
		}
	case code == "ThrottlingException" ||
		code == "ServiceQuotaExceededException" ||
		strings.Contains(errMsg, "ThrottlingException") ||
		strings.Contains(errMsg, "TooManyRequestsException"):
		return &llm.Error{
			Code:       "rate_limit_error",
			Message:    errMsg,
			Type:       "rate_limit_error",
			StatusCode: 429,
		}
	case code == "ResourceNotFoundException" ||
		(code == "ValidationException" && strings.Contains(strings.ToLower(errMsg), "model")):
		return &llm.Error{
			Code:       "model_not_found",
			Message:    errMsg,
			Type:       "validation_error",
			StatusCode: 404,
		}
	case code == "ValidationException":
		return &llm.Error{
			Code:       "validation_error",
			Message:    errMsg,
			Type:       "validation_error",
			StatusCode: 400,
		}
	}

	// Default error
	return &llm.Error{
		Code:    "api_error",
		Message: errMsg,
		Type:    "api_error",
	}
}
