package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/modeldoc/internal/core/domain"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driven"
	"github.com/custodia-labs/modeldoc/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRatePerMinute = "llm.requests_per_minute"
	keyModelPath        = "model.path"
	keyModelConnection  = "model.connection"
	keyModelDefinitions = "model.definition_path"
	keyModelServerCmd   = "model.server_command"
	keyModelServerArgs  = "model.server_args"
	keyBackupRoot       = "backup.root"
	keyGitRepo          = "git.repo"
	keyGitPriorRef      = "git.prior_ref"
	keyGitCurrentRef    = "git.current_ref"
	keyRetryMaxAttempts = "retry.max_attempts"
)

// intKeys are stored as integers rather than strings.
var intKeys = map[string]bool{
	keyLLMRatePerMinute: true,
	keyRetryMaxAttempts: true,
}

// SettingsService manages application settings and resolves the run configuration.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service. getenv supplies
// environment credentials; nil disables environment lookup.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// RunConfig returns the effective configuration. Stored values win over
// defaults; the API key falls back to the provider's environment variable.
func (s *SettingsService) RunConfig() (domain.RunConfig, error) {
	defaults := domain.DefaultRunConfig()

	cfg := domain.RunConfig{
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.getInt(keyLLMRatePerMinute, defaults.LLM.RequestsPerMinute),
		},
		Model: domain.ModelSettings{
			Path:           s.configStore.GetString(keyModelPath),
			Connection:     s.configStore.GetString(keyModelConnection),
			DefinitionPath: s.configStore.GetString(keyModelDefinitions),
			ServerCommand:  s.getString(keyModelServerCmd, defaults.Model.ServerCommand),
			ServerArgs:     s.configStore.GetStringSlice(keyModelServerArgs),
		},
		Git: domain.GitSettings{
			Repo:       s.getString(keyGitRepo, defaults.Git.Repo),
			PriorRef:   s.getString(keyGitPriorRef, defaults.Git.PriorRef),
			CurrentRef: s.configStore.GetString(keyGitCurrentRef),
		},
		BackupRoot:  s.getString(keyBackupRoot, defaults.BackupRoot),
		MaxAttempts: s.getInt(keyRetryMaxAttempts, defaults.MaxAttempts),
	}

	if cfg.LLM.APIKey == "" {
		if env := cfg.LLM.Provider.APIKeyEnv(); env != "" {
			cfg.LLM.APIKey = s.getenv(env)
		}
	}

	return cfg.WithDefaults(), nil
}

// Set stores a single setting by key.
func (s *SettingsService) Set(key, value string) error {
	if !s.isKnown(key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var stored any = value
	switch {
	case intKeys[key]:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = int64(n)
	case key == keyLLMProvider:
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid LLM provider: %s", domain.ErrInvalidInput, value)
		}
	case key == keyModelServerArgs:
		stored = strings.Fields(value)
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetAPIKey stores the credential for the configured provider.
func (s *SettingsService) SetAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%w: API key must not be empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyLLMAPIKey, apiKey); err != nil {
		return fmt.Errorf("save llm api_key: %w", err)
	}
	return nil
}

// Keys lists the recognised setting keys in sorted order.
func (s *SettingsService) Keys() []string {
	keys := []string{
		keyLLMProvider, keyLLMModel, keyLLMBaseURL, keyLLMAPIKey, keyLLMRatePerMinute,
		keyModelPath, keyModelConnection, keyModelDefinitions, keyModelServerCmd, keyModelServerArgs,
		keyBackupRoot, keyGitRepo, keyGitPriorRef, keyGitCurrentRef, keyRetryMaxAttempts,
	}
	sort.Strings(keys)
	return keys
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) isKnown(key string) bool {
	for _, k := range s.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getProvider(defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(keyLLMProvider)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
