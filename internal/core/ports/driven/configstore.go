package driven

// ConfigStore reads and writes flat dot-notation settings such as
// "storage.bucket". Typed getters return the zero value for missing or
// mistyped keys.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save persists the current configuration.
	Save() error

	// Load replaces the in-memory configuration from storage.
	Load() error

	// Path returns where the configuration is stored.
	Path() string
}
