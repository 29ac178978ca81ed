package driven

import "github.com/custodia-labs/scenetext/internal/core/domain"

// ConfigStore provides key-level access to the project file.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type ConfigStore interface {
	// Get retrieves a configuration value by dotted key, e.g. "tools.lzss".
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	// Returns 0 if key doesn't exist or isn't an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetStringSlice retrieves a string slice configuration value.
	// Returns nil if key doesn't exist or isn't a slice.
	GetStringSlice(key string) []string

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Keys returns every dotted key in sorted order.
	Keys() []string

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// ProjectStore loads the typed project configuration.
type ProjectStore interface {
	// Project decodes the project file. Missing fields take their defaults.
	Project() (*domain.Project, error)

	// Init writes a default project file if none exists.
	Init(name string) (*domain.Project, error)
}

// DialectStore loads dialect files.
type DialectStore interface {
	// Dialect returns the dialect stored at path. Results are cached per path.
	Dialect(path string) (domain.Dialect, error)
}
