// Package llm builds the chat model used for profile extraction.
package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/compdata/config"
)

const maxTokens = 2048

// NewChatModel returns a deterministic (temperature 0) chat model for the
// configured provider. Groq and OpenAI share the OpenAI-compatible client.
func NewChatModel(ctx context.Context, cfg *config.Config) (model.BaseChatModel, error) {
	apiKey := cfg.LLMAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("%s api key is required", cfg.LLMProvider)
	}

	switch cfg.LLMProvider {
	case config.ProviderGroq, config.ProviderOpenAI:
		tokens := maxTokens
		temperature := float32(0)
		chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      apiKey,
			Model:       cfg.LLMModel,
			MaxTokens:   &tokens,
			Temperature: &temperature,
			Timeout:     cfg.OutboundTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("init %s chat model: %w", cfg.LLMProvider, err)
		}
		return chatModel, nil

	case config.ProviderDeepSeek:
		dsConfig := &deepseek.ChatModelConfig{
			APIKey:    apiKey,
			Model:     cfg.LLMModel,
			MaxTokens: maxTokens,
			Timeout:   cfg.OutboundTimeout,
		}
		if cfg.LLMBaseURL != "" {
			dsConfig.BaseURL = cfg.LLMBaseURL
		}
		chatModel, err := deepseek.NewChatModel(ctx, dsConfig)
		if err != nil {
			return nil, fmt.Errorf("init deepseek chat model: %w", err)
		}
		return chatModel, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
