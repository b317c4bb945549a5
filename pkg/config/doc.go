// Package config loads the per-backend configuration of llm-code.
//
// Sources are applied in order, each one overriding the previous:
//
//   - built-in defaults (models, output token limits, keyless backends)
//   - a YAML file (an explicit path, or llm-code/config.yaml under the user
//     config directory when present)
//   - a .env file in the working directory, which never overrides the real
//     environment
//   - environment variables: <PROVIDER>_API_KEY, <PROVIDER>_MODEL,
//     <PROVIDER>_BASE_URL, OPENAI_BASE_URL, OLLAMA_HOST, AWS_REGION and
//     LLM_CODE_PROVIDER
//
// A loaded Config is immutable; lookups return copies.
package config
