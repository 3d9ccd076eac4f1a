package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/waiverdesk/internal/adapters/driven/config"
	"github.com/custodia-labs/waiverdesk/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps settings in a TOML file. Nested tables are held as flat
// dot keys ("storage.bucket") and written back as tables. Environment
// variables named WAIVERDESK_<KEY> take precedence over the file.
type ConfigStore struct {
	mu        sync.RWMutex
	path      string
	values    map[string]any
	lookupEnv func(string) (string, bool)
}

// DefaultPath returns ~/.waiverdesk/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".waiverdesk", "config.toml"), nil
}

// NewConfigStore opens the config file at path, or DefaultPath when path is
// empty. The parent directory is created; the file itself need not exist.
func NewConfigStore(path string) (*ConfigStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	s := &ConfigStore{path: path, lookupEnv: os.LookupEnv}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the raw value for key.
func (s *ConfigStore) Get(key string) (any, bool) {
	if v, ok := s.lookupEnv(config.EnvName(key)); ok {
		return v, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) value(key string) any {
	v, _ := s.Get(key)
	return v
}

// GetString returns key as a string, or "".
func (s *ConfigStore) GetString(key string) string { return config.AsString(s.value(key)) }

// GetInt returns key as an int, or 0.
func (s *ConfigStore) GetInt(key string) int { return config.AsInt(s.value(key)) }

// GetBool returns key as a bool, or false.
func (s *ConfigStore) GetBool(key string) bool { return config.AsBool(s.value(key)) }

// Set stores value under key and writes the file.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return s.writeLocked()
}

// Save writes the file.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked()
}

func (s *ConfigStore) writeLocked() error {
	data, err := toml.Marshal(config.Nest(s.values))
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", s.path, err)
	}
	return nil
}

// Load re-reads the file, discarding unsaved values. A missing file loads
// as an empty config.
func (s *ConfigStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = make(map[string]any)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config %s: %w", s.path, err)
	}

	var tables map[string]any
	if err := toml.Unmarshal(data, &tables); err != nil {
		return fmt.Errorf("parse config %s: %w", s.path, err)
	}
	s.values = config.Flatten(tables, "")
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.path
}
