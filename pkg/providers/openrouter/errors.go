package openrouter

import (
	"errors"
	"strings"

	"github.com/revrost/go-openrouter"

	"github.com/inercia/llm-code/pkg/llm"
)

// convertOpenRouterError converts OpenRouter errors to our standardized Error format
func convertOpenRouterError(err error) *llm.Error {
	if err == nil {
		return nil
	}

	var apiErr *openrouter.APIError
	if errors.As(err, &apiErr) {
		return convertAPIError(apiErr)
	}

	var reqErr *openrouter.RequestError
	if errors.As(err, &reqErr) {
		return convertRequestError(reqErr)
	}

	// Handle common network and context errors
	if converted := convertCommonError(err); converted != nil {
		return converted
	}

	// Generic error fallback
	return &llm.Error{
		Code:    "openrouter_error",
		Message: err.Error(),
		Type:    "api_error",
	}
}

// statusCodeClass maps an HTTP status to an error type and code
func statusCodeClass(status int, fallbackCode string) (string, string) {
	switch status {
	case 400:
		return "validation_error", "bad_request"
	case 401:
		return "authentication_error", "invalid_api_key"
	case 402:
		return "quota_error", "insufficient_credits"
	case 403:
		return "authentication_error", "insufficient_permissions"
	case 404:
		return "model_error", "model_not_found"
	case 429:
		return "rate_limit_error", "rate_limit_exceeded"
	}
	switch {
	case status >= 500:
		return "api_error", "server_error"
	case status >= 400:
		return "validation_error", "client_error"
	}
	return "api_error", fallbackCode
}

// convertAPIError converts OpenRouter APIError to our Error format
func convertAPIError(apiErr *openrouter.APIError) *llm.Error {
	errorType, errorCode := statusCodeClass(apiErr.HTTPStatusCode, "openrouter_api_error")

	// Use the API error code if available and it's a string
	if apiErr.Code != nil {
		if codeStr, ok := apiErr.Code.(string); ok && codeStr != "" {
			errorCode = codeStr
		}
	}

	// Refine error type and code based on message content
	message := apiErr.Message
	messageLower := strings.ToLower(message)

	switch {
	case strings.Contains(messageLower, "rate limit") || strings.Contains(messageLower, "too many requests"):
		errorType = "rate_limit_error"
		errorCode = "rate_limit_exceeded"
	case strings.Contains(messageLower, "context") && strings.Contains(messageLower, "length"):
		errorType = "validation_error"
		errorCode = "context_length_exceeded"
	case strings.Contains(messageLower, "model") &&
		(strings.Contains(messageLower, "not found") || strings.Contains(messageLower, "does not exist")):
		errorType = "model_error"
		errorCode = "model_not_found"
	}

	return &llm.Error{
		Code:       errorCode,
		Message:    message,
		Type:       errorType,
		StatusCode: apiErr.HTTPStatusCode,
	}
}

// convertRequestError converts OpenRouter RequestError to our Error format
func convertRequestError(reqErr *openrouter.RequestError) *llm.Error {
	errorType, errorCode := statusCodeClass(reqErr.HTTPStatusCode, "request_error")
	if reqErr.HTTPStatusCode == 0 {
		errorType = "network_error"
	}

	// RequestError.Error() includes status code, status, message, and body
	return &llm.Error{
		Code:       errorCode,
		Message:    reqErr.Error(),
		Type:       errorType,
		StatusCode: reqErr.HTTPStatusCode,
	}
}

// convertCommonError handles common Go errors that might occur during API calls
func convertCommonError(err error) *llm.Error {
	errMsg := err.Error()
	errMsgLower := strings.ToLower(errMsg)

	var code string
	switch {
	case strings.Contains(errMsgLower, "connection refused") ||
		strings.Contains(errMsgLower, "no such host") ||
		strings.Contains(errMsgLower, "network is unreachable"):
		code = "connection_error"
	case strings.Contains(errMsgLower, "timeout") ||
		strings.Contains(errMsgLower, "deadline exceeded"):
		code = "timeout_error"
	case strings.Contains(errMsgLower, "context canceled"):
		code = "request_canceled"
	case strings.Contains(errMsgLower, "tls") || strings.Contains(errMsgLower, "certificate"):
		code = "tls_error"
	default:
		return nil
	}

	return &llm.Error{
		Code:    code,
		Message: errMsg,
		Type:    "network_error",
	}
}
