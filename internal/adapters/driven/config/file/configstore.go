package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/core/ports/driven"
)

// DefaultProjectFile is the project file name looked up in the working directory.
const DefaultProjectFile = "project.toml"

// Ensure ConfigStore implements the interfaces.
var (
	_ driven.ConfigStore  = (*ConfigStore)(nil)
	_ driven.ProjectStore = (*ConfigStore)(nil)
)

// ConfigStore is the TOML project file. It offers a flattened key view
// (driven.ConfigStore) and the typed project (driven.ProjectStore).
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
	data     map[string]any
}

// NewConfigStore opens the project file at path.
// If path is empty, defaults to ./project.toml. A missing file is not an error.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		path = DefaultProjectFile
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	s := &ConfigStore{
		filePath: abs,
		data:     make(map[string]any),
	}

	// Load existing data if file exists
	if err := s.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	return s, nil
}

// Get retrieves a configuration value by dotted key.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.data[key]
	return val, ok
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	val, ok := s.Get(key)
	if !ok {
		return ""
	}

	str, ok := val.(string)
	if !ok {
		return ""
	}
	return str
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	val, ok := s.Get(key)
	if !ok {
		return 0
	}

	// TOML integers are parsed as int64
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	val, ok := s.Get(key)
	if !ok {
		return false
	}

	b, ok := val.(bool)
	if !ok {
		return false
	}
	return b
}

// GetStringSlice retrieves a string slice configuration value.
func (s *ConfigStore) GetStringSlice(key string) []string {
	val, ok := s.Get(key)
	if !ok {
		return nil
	}

	// TOML arrays are parsed as []any
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		result := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				result = append(result, str)
			}
		}
		return result
	default:
		return nil
	}
}

// Keys returns every dotted key in sorted order.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores a configuration value and persists immediately.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return s.save()
}

// Save persists the current configuration to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// save writes configuration to the TOML file (caller must hold lock).
func (s *ConfigStore) save() error {
	data, err := toml.Marshal(unflattenMap(s.data))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0o644)
}

// Load reads configuration from the TOML file.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// No project file yet - that's fine, start empty
			s.data = make(map[string]any)
			return nil
		}
		return err
	}

	var loaded map[string]any
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return err
	}

	if loaded == nil {
		loaded = make(map[string]any)
	}

	// Flatten nested maps into dot-notation keys for easier access
	s.data = flattenMap(loaded, "")
	return nil
}

// Project decodes the project file over the defaults.
// Returns domain.ErrNotFound if the file does not exist.
func (s *ConfigStore) Project() (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: project file %s", domain.ErrNotFound, s.filePath)
	}
	if err != nil {
		return nil, err
	}

	p := domain.DefaultProject()
	if err := toml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, s.filePath, err)
	}
	p.Root = filepath.Dir(s.filePath)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Init writes a default project file unless one exists.
func (s *ConfigStore) Init(name string) (*domain.Project, error) {
	s.mu.Lock()
	if _, err := os.Stat(s.filePath); err == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyExists, s.filePath)
	}
	p := domain.DefaultProject()
	p.Name = name
	data, err := toml.Marshal(p)
	if err == nil {
		err = os.MkdirAll(filepath.Dir(s.filePath), 0o755)
	}
	if err == nil {
		err = os.WriteFile(s.filePath, data, 0o644)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.Load(); err != nil {
		return nil, err
	}
	p.Root = filepath.Dir(s.filePath)
	return &p, nil
}

// FlattenMap converts nested maps to dot-notation keys.
// E.g., {"a": {"b": 1}} becomes {"a.b": 1}.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)

	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			// Recursively flatten nested maps
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
		} else {
			result[fullKey] = value
		}
	}

	return result
}

// unflattenMap is the inverse of flattenMap.
func unflattenMap(m map[string]any) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		parts := strings.Split(key, ".")
		node := result
		for _, p := range parts[:len(parts)-1] {
			next, ok := node[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				node[p] = next
			}
			node = next
		}
		node[parts[len(parts)-1]] = value
	}
	return result
}

// Path returns the project file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}
