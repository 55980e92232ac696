package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	rootCmd.SetArgs(nil)
	return err
}

func setupKeepDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("DOTKEEP_DIR", dir)
	return dir
}

func TestCommandsAreRegistered(t *testing.T) {
	expected := []string{
		"registry", "packages", "secrets", "profile", "use",
		"migrate", "validate", "backup", "restore", "sync",
		"version", "completion",
	}
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, names[name], "command %s not registered", name)
	}
}

func TestRegistryAddAndList(t *testing.T) {
	dir := setupKeepDir(t)

	err := runCommand(t, "registry", "add", "starship",
		"--name", "Starship prompt",
		"--source", "starship.toml",
		"--target", "starship.toml",
		"--target-kind", "config",
		"--category", "shell",
		"--file-format", "toml")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "configs_registry.json"))
	require.NoError(t, err)

	var doc struct {
		Version string                     `json:"version"`
		Entries map[string]json.RawMessage `json:"entries"`
		Order   []string                   `json:"order"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "1.0.0", doc.Version)
	assert.Contains(t, doc.Entries, "starship")
	// Seeded defaults come first, new entries append
	assert.Equal(t, "starship", doc.Order[len(doc.Order)-1])

	err = runCommand(t, "registry", "list", "--format", "text")
	assert.NoError(t, err)
}

func TestRegistryAddDuplicateFails(t *testing.T) {
	setupKeepDir(t)

	args := []string{"registry", "add", "dup",
		"--name", "Dup", "--source", "dup", "--target", ".dup"}
	require.NoError(t, runCommand(t, args...))
	assert.Error(t, runCommand(t, args...))
}

func TestRegistryToggleFlips(t *testing.T) {
	dir := setupKeepDir(t)

	require.NoError(t, runCommand(t, "registry", "toggle", "zshrc"))

	data, err := os.ReadFile(filepath.Join(dir, "configs_registry.json"))
	require.NoError(t, err)
	var doc struct {
		Entries map[string]struct {
			Enabled bool `json:"enabled"`
		} `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.False(t, doc.Entries["zshrc"].Enabled)
}

func TestUseRequiresExistingProfile(t *testing.T) {
	setupKeepDir(t)
	assert.Error(t, runCommand(t, "use", "nope"))
}

func TestProfileCreateAndUse(t *testing.T) {
	dir := setupKeepDir(t)

	require.NoError(t, runCommand(t, "profile", "create", "work",
		"--description", "Work laptop"))
	require.NoError(t, runCommand(t, "use", "work"))

	state, err := os.ReadFile(filepath.Join(dir, ".active-profile"))
	require.NoError(t, err)
	assert.Equal(t, "work\n", string(state))

	require.NoError(t, runCommand(t, "use", "none"))
	_, err = os.ReadFile(filepath.Join(dir, ".active-profile"))
	assert.Error(t, err)
}

func TestValidateCleanDirectory(t *testing.T) {
	setupKeepDir(t)
	// Default seeds produce warnings at most, never errors
	assert.NoError(t, runCommand(t, "validate", "--format", "text"))
}

func TestMigrateDryRun(t *testing.T) {
	dir := setupKeepDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "backup"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup", ".zshrc"), []byte("x"), 0644))

	require.NoError(t, runCommand(t, "migrate", "--dry-run"))
	_, err := os.Stat(filepath.Join(dir, "backup", "common", ".zshrc"))
	assert.True(t, os.IsNotExist(err))

	// reset the persistent flag for later tests
	dryRun = false
}

func TestMigrateMovesLegacyContent(t *testing.T) {
	dir := setupKeepDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "backup"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup", ".zshrc"), []byte("x"), 0644))

	require.NoError(t, runCommand(t, "migrate"))
	data, err := os.ReadFile(filepath.Join(dir, "backup", "common", ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))
}
