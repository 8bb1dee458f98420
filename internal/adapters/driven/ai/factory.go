// Package ai builds the reasoning service adapter selected by the settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	anthropicllm "github.com/custodia-labs/modeldoc/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/modeldoc/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/modeldoc/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
)

const pingTimeout = 5 * time.Second

const settingsHint = "Run 'modeldoc settings' to fix"

// CreateAndValidateLLMService builds the service and pings it. Every failure
// wraps domain.ErrLLMUnavailable.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, settingsHint)
	}

	if err := ping(ctx, svc); err != nil {
		_ = svc.Close()
		reason := "service unreachable"
		if errors.Is(err, driven.ErrRequestRejected) {
			reason = "credentials or model rejected"
		}
		return nil, fmt.Errorf("%w: %s (%w). %s", domain.ErrLLMUnavailable, reason, err, settingsHint)
	}
	return svc, nil
}

// ValidateLLMConfig builds a throwaway service for settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(ctx, svc)
}

// CreateLLMService returns the adapter for settings.Provider without
// contacting it.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, errors.New("no LLM settings")
	}
	if !settings.Provider.IsValid() {
		return nil, fmt.Errorf("unsupported LLM provider: %q", settings.Provider)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%s requires an API key (llm.api_key or %s)",
			settings.Provider, settings.Provider.APIKeyEnv())
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil
	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	default:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})
	}
}

func ping(ctx context.Context, svc driven.LLMService) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}
