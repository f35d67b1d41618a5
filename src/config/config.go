// Package config provides environment-based configuration for jenkwatch.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds process-level configuration. Credentials normally live in the
// OS keyring and user settings in the settings file; the environment only
// carries deployment concerns plus optional login defaults.
type Config struct {
	// SettingsPath is the settings file location. Defaults to
	// ~/.config/jenkwatch/settings.yaml.
	SettingsPath string

	// RedpandaBrokers enables event publishing to a Kafka-compatible
	// cluster when non-empty. Comma-separated addresses.
	RedpandaBrokers []string

	// Login defaults so `jenkwatch login` can run non-interactively.
	ServerURL string
	Username  string
	APIToken  string
}

// Load reads configuration from the environment, honoring a .env file in the
// working directory when present.
func Load() *Config {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := &Config{
		SettingsPath: os.Getenv("JENKWATCH_SETTINGS_PATH"),
		ServerURL:    os.Getenv("JENKINS_URL"),
		Username:     os.Getenv("JENKINS_USERNAME"),
		APIToken:     os.Getenv("JENKINS_API_TOKEN"),
	}

	if brokers := os.Getenv("REDPANDA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.RedpandaBrokers = append(cfg.RedpandaBrokers, b)
			}
		}
	}

	if cfg.SettingsPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.SettingsPath = filepath.Join(home, ".config", "jenkwatch", "settings.yaml")
		} else {
			cfg.SettingsPath = "jenkwatch-settings.yaml"
		}
	}
	return cfg
}

// PublishingEnabled reports whether Redpanda event publishing is configured.
func (c *Config) PublishingEnabled() bool {
	return len(c.RedpandaBrokers) > 0
}
