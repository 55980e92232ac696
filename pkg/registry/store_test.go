package registry

import (
	"encoding/json"
	"testing"

	keeperr "github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storePath = "/keep/configs_registry.json"

func newStore(fs types.FS) *Store[types.ConfigEntry] {
	return NewStore[types.ConfigEntry](fs, storePath, nil)
}

func TestLoadMissingInitializesEmpty(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)

	reg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())

	// The initialized document was persisted
	_, err = fs.Stat(storePath)
	assert.NoError(t, err)
}

func TestLoadMissingInitializesSeed(t *testing.T) {
	fs := filesystem.NewMemory()
	store := NewStore(fs, storePath, DefaultConfigs)

	reg, err := store.Load()
	require.NoError(t, err)
	_, ok := reg.Get("zshrc")
	assert.True(t, ok)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)

	reg := New[types.ConfigEntry]()
	original := types.ConfigEntry{
		Name:        "Git Configuration",
		SourcePath:  ".gitconfig",
		TargetPath:  types.HomeTarget(".gitconfig"),
		Category:    types.CategoryDevelopment,
		Enabled:     true,
		Description: "global git settings",
	}
	require.NoError(t, reg.Add("gitconfig", original))
	require.NoError(t, reg.Add("zshrc", entry("zshrc", false)))
	require.NoError(t, store.Save(reg))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	got, ok := loaded.Get("gitconfig")
	require.True(t, ok)
	assert.Equal(t, original, got)

	z, _ := loaded.Get("zshrc")
	assert.False(t, z.Enabled)

	// Insertion order survives the round trip
	assert.Equal(t, []string{"gitconfig", "zshrc"}, loaded.IDs())
}

func TestLoadRejectsUnknownSchemaVersion(t *testing.T) {
	fs := filesystem.NewMemory()
	doc := `{"version": "9.0.0", "entries": {}}`
	require.NoError(t, fs.MkdirAll("/keep", 0755))
	require.NoError(t, fs.WriteFile(storePath, []byte(doc), 0644))

	_, err := newStore(fs).Load()
	assert.True(t, keeperr.IsCode(err, keeperr.ErrSchemaVersion))
}

func TestLoadRejectsMalformedDocument(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, fs.MkdirAll("/keep", 0755))
	require.NoError(t, fs.WriteFile(storePath, []byte("{ not json"), 0644))

	_, err := newStore(fs).Load()
	assert.True(t, keeperr.IsCode(err, keeperr.ErrIO))
}

func TestLoadWithoutOrderFallsBackToSortedIDs(t *testing.T) {
	fs := filesystem.NewMemory()
	doc := map[string]interface{}{
		"version": SchemaVersion,
		"entries": map[string]types.ConfigEntry{
			"zshrc":   entry("zshrc", true),
			"aliases": entry("aliases", true),
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll("/keep", 0755))
	require.NoError(t, fs.WriteFile(storePath, data, 0644))

	reg, err := newStore(fs).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"aliases", "zshrc"}, reg.IDs())
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)
	require.NoError(t, store.Save(New[types.ConfigEntry]()))

	entries, err := fs.ReadDir("/keep")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "configs_registry.json", entries[0].Name())
}

func TestMutatePersistsChange(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)

	err := store.Mutate(func(reg *Registry[types.ConfigEntry]) error {
		return reg.Add("zshrc", entry("zshrc", true))
	})
	require.NoError(t, err)

	reg, err := store.Load()
	require.NoError(t, err)
	_, ok := reg.Get("zshrc")
	assert.True(t, ok)

	// Lock is released afterwards
	_, err = fs.Stat(storePath + lockSuffix)
	assert.Error(t, err)
}

func TestMutateFailedFnDoesNotSave(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)
	require.NoError(t, store.Save(New[types.ConfigEntry]()))

	err := store.Mutate(func(reg *Registry[types.ConfigEntry]) error {
		require.NoError(t, reg.Add("zshrc", entry("zshrc", true)))
		return reg.Add("zshrc", entry("zshrc", true))
	})
	assert.True(t, keeperr.IsCode(err, keeperr.ErrDuplicateID))

	reg, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Len())
}

func TestMutateBlockedByFreshLock(t *testing.T) {
	fs := filesystem.NewMemory()
	store := newStore(fs)
	require.NoError(t, fs.MkdirAll("/keep", 0755))

	lock := NewFileLock(fs, storePath+lockSuffix)
	require.NoError(t, lock.Acquire())

	err := store.Mutate(func(reg *Registry[types.ConfigEntry]) error { return nil })
	assert.True(t, keeperr.IsCode(err, keeperr.ErrLocked))

	require.NoError(t, lock.Release())
	assert.NoError(t, store.Mutate(func(reg *Registry[types.ConfigEntry]) error { return nil }))
}
