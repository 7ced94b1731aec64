package action

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minebot/src/model"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/ollama/ollama/api"
)

const defaultOllamaURL = "http://localhost:11434"

// defaultModels maps each provider to the model used when LLM_MODEL is empty.
// ark has none: its model is a per-account endpoint id.
var defaultModels = map[string]string{
	"openai":   "gpt-3.5-turbo",
	"deepseek": "deepseek-chat",
	"ollama":   "llama3.2",
}

// ErrNoCredential means the configured provider needs an API key and none is set.
var ErrNoCredential = errors.New("no API credential configured")

// NewChatModel builds the chat model for the configured provider.
func NewChatModel(ctx context.Context, cfg model.LLMConfig) (einomodel.BaseChatModel, error) {
	maxTokens := cfg.MaxTokens
	temperature := cfg.Temperature
	timeout := cfg.Timeout

	provider := strings.ToLower(cfg.Provider)
	if provider == "" {
		provider = "openai"
	}
	if cfg.Model == "" {
		cfg.Model = defaultModels[provider]
	}

	switch provider {
	case "openai":
		if cfg.APIKey == "" {
			return nil, ErrNoCredential
		}
		cm, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating openai chat model: %w", err)
		}
		return cm, nil

	case "deepseek":
		if cfg.APIKey == "" {
			return nil, ErrNoCredential
		}
		cm, err := deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   maxTokens,
			Temperature: temperature,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating deepseek chat model: %w", err)
		}
		return cm, nil

	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		cm, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
			BaseURL: baseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Options: &api.Options{
				Temperature: temperature,
				NumPredict:  maxTokens,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ollama chat model: %w", err)
		}
		return cm, nil

	case "ark":
		if cfg.APIKey == "" {
			return nil, ErrNoCredential
		}
		if cfg.Model == "" {
			return nil, errors.New("LLM_MODEL is required for ark (endpoint id)")
		}
		cm, err := ark.NewChatModel(ctx, &ark.ChatModelConfig{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			MaxTokens:   &maxTokens,
			Temperature: &temperature,
			Timeout:     &timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("error creating ark chat model: %w", err)
		}
		return cm, nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
