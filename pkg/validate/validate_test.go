package validate

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotkeep/pkg/config"
	"github.com/arthur-debert/dotkeep/pkg/crypt"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/resolver"
	"github.com/arthur-debert/dotkeep/pkg/system"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

type fixture struct {
	fs     types.FS
	paths  paths.Paths
	cfg    *config.Config
	runner *system.FakeRunner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		fs:     filesystem.NewMemory(),
		paths:  paths.New("/keep"),
		cfg:    config.Default(),
		runner: system.NewFakeRunner(),
	}
}

func (f *fixture) run(t *testing.T, ctx profile.Context) *Report {
	t.Helper()
	res := resolver.New(f.fs, f.paths, ctx)
	return NewRunner(f.fs, f.paths, res, f.cfg, f.runner).Run()
}

func (f *fixture) saveConfigs(t *testing.T, entries map[string]types.ConfigEntry) {
	t.Helper()
	reg := registry.New[types.ConfigEntry]()
	for id, e := range entries {
		require.NoError(t, reg.Add(id, e))
	}
	store := registry.NewStore[types.ConfigEntry](f.fs, f.paths.ConfigsRegistryPath(), nil)
	require.NoError(t, store.Save(reg))
}

func (f *fixture) saveEmptyRegistries(t *testing.T) {
	t.Helper()
	f.saveConfigs(t, nil)
	require.NoError(t, registry.NewStore[types.PackageEntry](f.fs, f.paths.PackageRegistryPath(),
		nil).Save(registry.New[types.PackageEntry]()))
	require.NoError(t, registry.NewStore[types.SecretEntry](f.fs, f.paths.SecretsRegistryPath(),
		nil).Save(registry.New[types.SecretEntry]()))
}

func (f *fixture) write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, f.fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, f.fs.WriteFile(path, []byte(content), 0644))
}

func findingsFor(report *Report, check string) []Finding {
	var out []Finding
	for _, f := range report.Findings {
		if f.Check == check {
			out = append(out, f)
		}
	}
	return out
}

func TestCleanDirectoryPasses(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)

	report := f.run(t, profile.Context{})
	assert.False(t, report.HasErrors())
	assert.Zero(t, report.Warnings())
}

func TestRunIsReadOnly(t *testing.T) {
	f := newFixture(t)
	f.run(t, profile.Context{})

	_, err := f.fs.Stat(f.paths.ConfigsRegistryPath())
	assert.Error(t, err)
}

func TestCorruptRegistryIsAnError(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.write(t, f.paths.ConfigsRegistryPath(), "{not json")

	report := f.run(t, profile.Context{})
	assert.True(t, report.HasErrors())
	findings := findingsFor(report, "registry")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "configs registry")
}

func TestDuplicateSourcePathsAreAWarning(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"zshrc_a": {Name: "A", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: true},
		"zshrc_b": {Name: "B", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: true},
	})
	f.write(t, "/keep/backup/common/.zshrc", "x")

	report := f.run(t, profile.Context{})
	assert.False(t, report.HasErrors())
	findings := findingsFor(report, "duplicates")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Contains(t, findings[0].Message, ".zshrc")
}

func TestNeverBackedUpIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"zshrc": {Name: "Zsh", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: true},
	})

	report := f.run(t, profile.Context{})
	assert.False(t, report.HasErrors())
	findings := findingsFor(report, "placement")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Equal(t, "run dotkeep backup", findings[0].Fix)
}

func TestLegacyOnlyContentSuggestsMigrate(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"zshrc": {Name: "Zsh", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: true},
	})
	f.write(t, "/keep/backup/.zshrc", "legacy")

	report := f.run(t, profile.Context{})
	findings := findingsFor(report, "placement")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
	assert.Equal(t, "run dotkeep migrate", findings[0].Fix)
}

func TestShadowedCopiesAreInfo(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"zshrc": {Name: "Zsh", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: true},
	})
	f.write(t, "/keep/backup/profiles/work/.zshrc", "profile")
	f.write(t, "/keep/backup/common/.zshrc", "common")

	report := f.run(t, profile.Context{Profile: "work"})
	findings := findingsFor(report, "placement")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityInfo, findings[0].Severity)
	assert.Contains(t, findings[0].Message, "2 layers")
}

func TestDisabledEntriesAreNotChecked(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"zshrc": {Name: "Zsh", SourcePath: ".zshrc", TargetPath: types.HomeTarget(".zshrc"), Enabled: false},
	})

	report := f.run(t, profile.Context{})
	assert.Empty(t, findingsFor(report, "placement"))
}

func TestSymlinkInStructuredLayerIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.saveConfigs(t, map[string]types.ConfigEntry{
		"vimrc": {Name: "Vim", SourcePath: ".vimrc", TargetPath: types.HomeTarget(".vimrc"), Enabled: true},
	})
	require.NoError(t, f.fs.MkdirAll("/keep/backup/common", 0755))
	require.NoError(t, f.fs.Symlink("/home/user/.vimrc", "/keep/backup/common/.vimrc"))

	report := f.run(t, profile.Context{})
	findings := findingsFor(report, "placement")
	require.Len(t, findings, 1)
	assert.Contains(t, findings[0].Message, "symlink")
}

func TestFormatValidation(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		content string
		wantErr bool
	}{
		{"valid json", "json", `{"editor.fontSize": 13}`, false},
		{"broken json", "json", `{"editor.fontSize": }`, true},
		{"valid yaml", "yaml", "theme: dark\nkeys:\n  - a\n", false},
		{"broken yaml", "yaml", "theme: [dark\n", true},
		{"valid toml", "toml", "[ui]\ntheme = \"dark\"\n", false},
		{"broken toml", "toml", "[ui\ntheme", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.saveEmptyRegistries(t)
			f.saveConfigs(t, map[string]types.ConfigEntry{
				"settings": {Name: "Settings", SourcePath: "settings", Format: tt.format,
					TargetPath: types.ConfigTarget("settings"), Enabled: true},
			})
			f.write(t, "/keep/backup/common/settings", tt.content)

			report := f.run(t, profile.Context{})
			findings := findingsFor(report, "format")
			if tt.wantErr {
				require.Len(t, findings, 1)
				assert.Equal(t, SeverityWarning, findings[0].Severity)
				assert.Contains(t, findings[0].Message, "common layer")
				assert.False(t, report.HasErrors())
			} else {
				assert.Empty(t, findings)
			}
		})
	}
}

func TestMissingPackageCommandIsInfo(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	reg := registry.New[types.PackageEntry]()
	require.NoError(t, reg.Add("brew", types.PackageEntry{
		Name: "Homebrew", Command: "brew", Args: []string{"leaves"},
		OutputFile: "brew.txt", Enabled: true,
	}))
	require.NoError(t, registry.NewStore[types.PackageEntry](f.fs, f.paths.PackageRegistryPath(), nil).Save(reg))

	report := f.run(t, profile.Context{})
	findings := findingsFor(report, "packages")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityInfo, findings[0].Severity)
	assert.False(t, report.HasErrors())
}

func TestSecretWithoutPayloadIsAWarning(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	reg := registry.New[types.SecretEntry]()
	require.NoError(t, reg.Add("ssh_config", types.SecretEntry{
		Name: "SSH config", SourcePath: "config",
		TargetPath: "/home/user/.ssh/config", Enabled: true,
	}))
	require.NoError(t, registry.NewStore[types.SecretEntry](f.fs, f.paths.SecretsRegistryPath(), nil).Save(reg))

	report := f.run(t, profile.Context{})
	findings := findingsFor(report, "secrets")
	require.Len(t, findings, 1)
	assert.Equal(t, SeverityWarning, findings[0].Severity)
}

func TestSecretPayloadCheckHonorsGlobalNameHashing(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	f.cfg.Secrets.EncryptNames = true
	reg := registry.New[types.SecretEntry]()
	require.NoError(t, reg.Add("ssh_config", types.SecretEntry{
		Name: "SSH config", SourcePath: "config",
		TargetPath: "/home/user/.ssh/config", Enabled: true,
	}))
	require.NoError(t, registry.NewStore[types.SecretEntry](f.fs, f.paths.SecretsRegistryPath(), nil).Save(reg))

	// Backup with encrypt_names stores payloads under the hashed name,
	// so that is where the check has to look.
	f.write(t, "/keep/backup/common/encrypted/"+crypt.StoredName("config", true), "sealed")

	report := f.run(t, profile.Context{})
	assert.Empty(t, findingsFor(report, "secrets"))
}

func TestRelativeSecretTargetIsAnError(t *testing.T) {
	f := newFixture(t)
	f.saveEmptyRegistries(t)
	reg := registry.New[types.SecretEntry]()
	require.NoError(t, reg.Add("ssh_config", types.SecretEntry{
		Name: "SSH config", SourcePath: "config",
		TargetPath: ".ssh/config", Enabled: true,
	}))
	require.NoError(t, registry.NewStore[types.SecretEntry](f.fs, f.paths.SecretsRegistryPath(), nil).Save(reg))
	f.write(t, "/keep/backup/common/encrypted/config.age", "sealed")

	report := f.run(t, profile.Context{})
	assert.True(t, report.HasErrors())
}
