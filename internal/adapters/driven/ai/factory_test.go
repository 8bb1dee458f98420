package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name        string
		settings    *domain.LLMSettings
		wantModel   string
		errContains string
	}{
		{
			name:        "nil settings",
			settings:    nil,
			errContains: "no LLM settings",
		},
		{
			name:        "anthropic without key",
			settings:    &domain.LLMSettings{Provider: domain.AIProviderAnthropic},
			errContains: "ANTHROPIC_API_KEY",
		},
		{
			name:        "unknown provider",
			settings:    &domain.LLMSettings{Provider: "gemini", APIKey: "k"},
			errContains: "unsupported LLM provider",
		},
		{
			name:      "ollama",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "llama3.1"},
			wantModel: "llama3.1",
		},
		{
			name:      "openai default model",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk-test"},
			wantModel: "gpt-4o",
		},
		{
			name:      "anthropic default model",
			settings:  &domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant"},
			wantModel: "claude-sonnet-4-20250514",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(tt.settings)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			defer svc.Close()
			assert.Equal(t, tt.wantModel, svc.ModelName())
		})
	}
}

func TestCreateAndValidateLLMService(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:latest"}]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	t.Run("reachable", func(t *testing.T) {
		svc, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
		})
		require.NoError(t, err)
		assert.NotNil(t, svc)
		svc.Close()
	})

	t.Run("model not pulled", func(t *testing.T) {
		_, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  server.URL,
			Model:    "mistral",
		})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
		assert.ErrorContains(t, err, "credentials or model rejected")
		assert.ErrorContains(t, err, "ollama pull mistral")
	})

	t.Run("unreachable", func(t *testing.T) {
		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		_, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOllama,
			BaseURL:  dead.URL,
		})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})

	t.Run("misconfigured", func(t *testing.T) {
		_, err := CreateAndValidateLLMService(context.Background(), &domain.LLMSettings{
			Provider: domain.AIProviderOpenAI,
		})
		assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
	})
}

func TestValidateLLMConfig(t *testing.T) {
	status := http.StatusOK
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	settings := &domain.LLMSettings{
		Provider: domain.AIProviderAnthropic,
		APIKey:   "sk-ant",
		BaseURL:  server.URL,
	}
	assert.NoError(t, ValidateLLMConfig(context.Background(), settings))

	status = http.StatusUnauthorized
	assert.Error(t, ValidateLLMConfig(context.Background(), settings))
}
