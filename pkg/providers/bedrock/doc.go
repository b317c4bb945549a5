// Package bedrock provides AWS Bedrock integration for llm-code.
//
// This package implements the llm.Provider interface on top of the Bedrock
// Converse API, which gives one request shape for every chat model family
// hosted by Bedrock (Claude, Llama, Titan, Mistral...). System messages are
// lifted out of the turn sequence into the request's system blocks.
//
// Key features:
//   - Any Converse-capable foundation model
//   - Regional configuration and custom endpoints
//   - Health checks through the foundation models list
//   - Error standardization from smithy API errors
//
// Usage:
//
//	client, err := bedrock.NewClient(llm.ProviderConfig{
//	    Model: "anthropic.claude-3-5-sonnet-20240620-v1:0",
//	    Extra: map[string]string{
//	        "region": "us-east-1",
//	    },
//	})
//
// The client uses the AWS SDK's default credential chain for authentication,
// supporting environment variables, IAM roles, profiles, and other standard
// AWS authentication methods.
package bedrock
