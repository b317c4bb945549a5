package factory

import (
	"go.uber.org/zap"

	"github.com/inercia/llm-code/pkg/llm"
	"github.com/inercia/llm-code/pkg/providers/anthropic"
	"github.com/inercia/llm-code/pkg/providers/bedrock"
	"github.com/inercia/llm-code/pkg/providers/deepseek"
	"github.com/inercia/llm-code/pkg/providers/gemini"
	"github.com/inercia/llm-code/pkg/providers/ollama"
	"github.com/inercia/llm-code/pkg/providers/openai"
	"github.com/inercia/llm-code/pkg/providers/openrouter"
)

// Default returns a new registry holding every built-in backend. Each
// provider it builds logs its generations through the given logger.
func Default() *Registry {
	r := NewRegistry()

	r.Register(llm.ProviderAnthropic, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := anthropic.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderOpenAI, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := openai.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderGemini, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := gemini.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderDeepSeek, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := deepseek.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderOpenRouter, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := openrouter.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderOllama, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := ollama.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	r.Register(llm.ProviderBedrock, func(cfg llm.ProviderConfig, logger *zap.Logger) (llm.Provider, error) {
		client, err := bedrock.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		return withLogging(client, logger), nil
	})

	return r
}

// withLogging wraps a freshly built provider with the logging middleware
func withLogging(provider llm.Provider, logger *zap.Logger) llm.Provider {
	return llm.WithMiddleware(provider, llm.LoggingMiddleware(logger))
}
