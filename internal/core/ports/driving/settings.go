package driving

import "github.com/custodia-labs/modeldoc/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// RunConfig returns the effective configuration with defaults and
	// environment credentials applied.
	RunConfig() (domain.RunConfig, error)

	// Set stores a single setting by key.
	Set(key, value string) error

	// SetAPIKey stores the credential for the configured provider.
	SetAPIKey(apiKey string) error

	// Keys lists the recognised setting keys.
	Keys() []string

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
