package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

const unknownDescription = "Unknown"

// AIProvider identifies a reasoning service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// APIKeyEnv returns the environment variable conventionally holding the key.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// LLMSettings holds reasoning service configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name. Empty selects the provider default.
	Model string

	// BaseURL is the API endpoint. Empty selects the provider default.
	BaseURL string

	// APIKey is the credential (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute throttles calls to the service. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ModelSettings describes the semantic model and the server that serves it.
type ModelSettings struct {
	// Path is the model folder handed to the model server.
	Path string

	// Connection is the container reference used for entity operations.
	Connection string

	// DefinitionPath is the on-disk definition tree the model is exported to.
	DefinitionPath string

	// ServerCommand is the model server executable.
	ServerCommand string

	// ServerArgs are extra arguments for ServerCommand.
	ServerArgs []string
}

// GitSettings describes the version-control working tree.
type GitSettings struct {
	// Repo is the repository root.
	Repo string

	// PriorRef is the older side of the audit diff.
	PriorRef string

	// CurrentRef is the newer side of the audit diff. Empty means the working tree.
	CurrentRef string
}

// RunConfig is the explicit configuration handed to every component.
// Nothing in the pipeline reads the working directory or the environment.
type RunConfig struct {
	LLM        LLMSettings
	Model      ModelSettings
	Git        GitSettings
	BackupRoot string

	// MaxAttempts bounds retries of transient transport failures.
	MaxAttempts int
}

// Defaults applied by DefaultRunConfig and WithDefaults.
const (
	DefaultServerCommand     = "powerbi-mcp-server"
	DefaultBackupRoot        = "backups"
	DefaultPriorRef          = "HEAD"
	DefaultMaxAttempts       = 3
	DefaultRequestsPerMinute = 30
)

// DefaultRunConfig returns the configuration used when nothing is set.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		LLM: LLMSettings{
			Provider:          AIProviderAnthropic,
			RequestsPerMinute: DefaultRequestsPerMinute,
		},
		Model: ModelSettings{
			ServerCommand: DefaultServerCommand,
		},
		Git: GitSettings{
			Repo:     ".",
			PriorRef: DefaultPriorRef,
		},
		BackupRoot:  DefaultBackupRoot,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// WithDefaults fills derived values: the connection name and definition path
// follow the model path unless set explicitly.
func (c RunConfig) WithDefaults() RunConfig {
	if c.Model.Path != "" {
		if c.Model.DefinitionPath == "" {
			c.Model.DefinitionPath = filepath.Join(c.Model.Path, "definition")
		}
		if c.Model.Connection == "" {
			c.Model.Connection = DefaultConnectionName(c.Model.Path)
		}
	}
	if c.Model.ServerCommand == "" {
		c.Model.ServerCommand = DefaultServerCommand
	}
	if c.BackupRoot == "" {
		c.BackupRoot = DefaultBackupRoot
	}
	if c.Git.Repo == "" {
		c.Git.Repo = "."
	}
	if c.Git.PriorRef == "" {
		c.Git.PriorRef = DefaultPriorRef
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	return c
}

// DefaultConnectionName is the name the model server gives a folder connection.
func DefaultConnectionName(modelPath string) string {
	return "TMDL-" + strings.TrimRight(modelPath, `/\`) + "/definition"
}

// Validate checks the configuration is complete enough to run the pipeline.
func (c RunConfig) Validate() error {
	if c.Model.Path == "" {
		return fmt.Errorf("%w: model.path is required", ErrInvalidInput)
	}
	if c.Model.DefinitionPath == "" {
		return fmt.Errorf("%w: model.definition_path is required", ErrInvalidInput)
	}
	if !c.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm.provider %q", ErrInvalidInput, c.LLM.Provider)
	}
	if !c.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s requires an API key (llm.api_key or %s)",
			ErrInvalidInput, c.LLM.Provider, c.LLM.Provider.APIKeyEnv())
	}
	if c.LLM.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: llm.requests_per_minute must not be negative", ErrInvalidInput)
	}
	return nil
}
