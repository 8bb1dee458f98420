package driven

// ConfigStore holds flat settings addressed by dotted keys such as
// "llm.provider". Typed getters return the zero value for a missing key
// or a value of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetStringSlice(key string) []string

	// Set stores value under key and persists it before returning.
	Set(key string, value any) error

	// Path names where settings are persisted, for display.
	Path() string
}
