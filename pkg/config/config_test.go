package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Backup.Workers)
	assert.False(t, cfg.Backup.SkipSecrets)
	assert.Equal(t, "common", cfg.Migrate.Target)
	assert.False(t, cfg.Secrets.EncryptNames)
	assert.Equal(t, "", cfg.Profile.Default)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Backup.Workers)
}

func TestLoadUserFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[backup]
workers = 8

[migrate]
target = "machine"

[profile]
default = "work"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Backup.Workers)
	assert.Equal(t, "machine", cfg.Migrate.Target)
	assert.Equal(t, "work", cfg.Profile.Default)
	// Untouched settings keep their defaults
	assert.False(t, cfg.Secrets.EncryptNames)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backup]\nworkers = 8\n"), 0644))
	t.Setenv("DOTKEEP_BACKUP_WORKERS", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Backup.Workers)
}

func TestLoadInvalidTomlFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadClampsWorkers(t *testing.T) {
	t.Setenv("DOTKEEP_BACKUP_WORKERS", "0")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Backup.Workers)
}
