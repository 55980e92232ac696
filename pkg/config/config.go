// Package config loads dotkeep's application configuration.
//
// Configuration is merged from three sources, lowest priority first:
// embedded defaults, the optional ~/.dotkeep/config.toml file, and
// DOTKEEP_-prefixed environment variables (DOTKEEP_BACKUP_WORKERS=8
// overrides backup.workers).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Config holds the merged application settings.
type Config struct {
	Backup  BackupConfig  `koanf:"backup"`
	Migrate MigrateConfig `koanf:"migrate"`
	Secrets SecretsConfig `koanf:"secrets"`
	Profile ProfileConfig `koanf:"profile"`
}

// BackupConfig controls the backup and restore batch operations.
type BackupConfig struct {
	Workers     int  `koanf:"workers"`
	SkipSecrets bool `koanf:"skip_secrets"`
}

// MigrateConfig controls the migrate command.
type MigrateConfig struct {
	Target string `koanf:"target"`
}

// SecretsConfig controls the encrypted entry codec.
type SecretsConfig struct {
	EncryptNames bool `koanf:"encrypt_names"`
}

// ProfileConfig carries the fallback profile.
type ProfileConfig struct {
	Default string `koanf:"default"`
}

// Load merges defaults, the given config file (skipped when missing) and
// environment overrides into a Config.
func Load(configFilePath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. User config file, if present
	if configFilePath != "" {
		if _, err := os.Stat(configFilePath); err == nil {
			if err := k.Load(file.Provider(configFilePath), toml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config from %s: %w", configFilePath, err)
			}
		}
	}

	// 3. Environment: DOTKEEP_BACKUP_WORKERS -> backup.workers
	if err := k.Load(env.Provider("DOTKEEP_", ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, "DOTKEEP_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Backup.Workers < 1 {
		cfg.Backup.Workers = 1
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading any files.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// The embedded defaults always parse; this is unreachable in
		// practice but keeps the signature convenient.
		return &Config{Backup: BackupConfig{Workers: 4}, Migrate: MigrateConfig{Target: "common"}}
	}
	return cfg
}
