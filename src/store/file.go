package store

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"jenkwatch-agent/src/ci"
	"jenkwatch-agent/src/logger"
)

// FileSettingsStore persists settings as a YAML file.
type FileSettingsStore struct {
	path string
	log  logger.Logger
}

// NewFileSettingsStore creates a settings store at path.
func NewFileSettingsStore(path string, log logger.Logger) *FileSettingsStore {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &FileSettingsStore{path: path, log: log}
}

func (s *FileSettingsStore) Save(settings ci.Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// Load returns the persisted settings, or the full defaults when the file is
// missing, unreadable, or fails validation. Decode problems are logged at
// debug level and otherwise swallowed.
func (s *FileSettingsStore) Load() ci.Settings {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Debug("settings unreadable, using defaults: %v", err)
		}
		return ci.DefaultSettings()
	}

	var settings ci.Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		s.log.Debug("settings corrupt, using defaults: %v", err)
		return ci.DefaultSettings()
	}
	if !settings.Valid() {
		s.log.Debug("settings out of range, using defaults")
		return ci.DefaultSettings()
	}
	return settings
}
