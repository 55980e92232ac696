package resolver

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	keeperr "github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

func testResolver(t *testing.T, ctx profile.Context) (*LayerResolver, types.FS, paths.Paths) {
	t.Helper()
	fs := filesystem.NewMemory()
	p := paths.New("/keep")
	return New(fs, p, ctx), fs, p
}

func writeFile(t *testing.T, fs types.FS, path string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte("content"), 0644))
}

func TestCandidatesFullContext(t *testing.T) {
	r, _, _ := testResolver(t, profile.Context{Profile: "work", Machine: "mbp"})

	got := r.Candidates(".zshrc")
	require.Len(t, got, 4)
	assert.Equal(t, Candidate{Path: "/keep/backup/profiles/work/.zshrc", Layer: types.LayerProfile}, got[0])
	assert.Equal(t, Candidate{Path: "/keep/backup/machines/mbp/.zshrc", Layer: types.LayerMachine}, got[1])
	assert.Equal(t, Candidate{Path: "/keep/backup/common/.zshrc", Layer: types.LayerCommon}, got[2])
	assert.Equal(t, Candidate{Path: "/keep/backup/.zshrc", Layer: types.LayerLegacy}, got[3])
}

func TestCandidatesSkipMissingContext(t *testing.T) {
	tests := []struct {
		name       string
		ctx        profile.Context
		wantLayers []types.Layer
	}{
		{
			name:       "no profile",
			ctx:        profile.Context{Machine: "mbp"},
			wantLayers: []types.Layer{types.LayerMachine, types.LayerCommon, types.LayerLegacy},
		},
		{
			name:       "no machine",
			ctx:        profile.Context{Profile: "work"},
			wantLayers: []types.Layer{types.LayerProfile, types.LayerCommon, types.LayerLegacy},
		},
		{
			name:       "neither",
			ctx:        profile.Context{},
			wantLayers: []types.Layer{types.LayerCommon, types.LayerLegacy},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := testResolver(t, tt.ctx)
			got := r.Candidates(".zshrc")
			layers := make([]types.Layer, len(got))
			for i, c := range got {
				layers[i] = c.Layer
			}
			assert.Equal(t, tt.wantLayers, layers)
		})
	}
}

func TestResolveSourceHigherLayerWins(t *testing.T) {
	r, fs, _ := testResolver(t, profile.Context{Profile: "work", Machine: "mbp"})
	writeFile(t, fs, "/keep/backup/profiles/work/.zshrc")
	writeFile(t, fs, "/keep/backup/common/.zshrc")

	src, err := r.ResolveSource(".zshrc")
	require.NoError(t, err)
	assert.Equal(t, "/keep/backup/profiles/work/.zshrc", src.Path)
	assert.Equal(t, types.LayerProfile, src.Layer)
}

func TestResolveSourceFallsThroughToLegacy(t *testing.T) {
	r, fs, _ := testResolver(t, profile.Context{Profile: "work", Machine: "mbp"})
	writeFile(t, fs, "/keep/backup/.zshrc")

	src, err := r.ResolveSource(".zshrc")
	require.NoError(t, err)
	assert.Equal(t, types.LayerLegacy, src.Layer)
}

func TestResolveSourceNotFound(t *testing.T) {
	r, _, _ := testResolver(t, profile.Context{Profile: "work", Machine: "mbp"})

	_, err := r.ResolveSource(".zshrc")
	assert.True(t, keeperr.IsCode(err, keeperr.ErrNotFound))
}

func TestResolveAllReportsShadowedCopies(t *testing.T) {
	r, fs, _ := testResolver(t, profile.Context{Profile: "work", Machine: "mbp"})
	writeFile(t, fs, "/keep/backup/machines/mbp/.zshrc")
	writeFile(t, fs, "/keep/backup/common/.zshrc")
	writeFile(t, fs, "/keep/backup/.zshrc")

	all := r.ResolveAll(".zshrc")
	require.Len(t, all, 3)
	assert.Equal(t, types.LayerMachine, all[0].Layer)
	assert.Equal(t, types.LayerCommon, all[1].Layer)
	assert.Equal(t, types.LayerLegacy, all[2].Layer)
}

func TestEncryptedCandidates(t *testing.T) {
	r, _, _ := testResolver(t, profile.Context{Profile: "work"})

	got := r.EncryptedCandidates("id_ed25519.age")
	require.Len(t, got, 3)
	assert.Equal(t, "/keep/backup/profiles/work/encrypted/id_ed25519.age", got[0].Path)
	assert.Equal(t, "/keep/backup/common/encrypted/id_ed25519.age", got[1].Path)
	assert.Equal(t, "/keep/backup/encrypted/id_ed25519.age", got[2].Path)
}

func TestResolveEncrypted(t *testing.T) {
	r, fs, _ := testResolver(t, profile.Context{})
	writeFile(t, fs, "/keep/backup/common/encrypted/id_ed25519.age")

	src, err := r.ResolveEncrypted("id_ed25519.age")
	require.NoError(t, err)
	assert.Equal(t, "/keep/backup/common/encrypted/id_ed25519.age", src.Path)
	assert.Equal(t, types.LayerCommon, src.Layer)
}

func TestWriteLayerFollowsProfile(t *testing.T) {
	r, _, _ := testResolver(t, profile.Context{Profile: "work"})
	assert.Equal(t, types.LayerProfile, r.WriteLayer())
	assert.Equal(t, "/keep/backup/profiles/work", r.WriteRoot())

	r, _, _ = testResolver(t, profile.Context{Machine: "mbp"})
	assert.Equal(t, types.LayerCommon, r.WriteLayer())
	assert.Equal(t, "/keep/backup/common", r.WriteRoot())
}

func TestResolveTarget(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	xdg.Reload()

	tests := []struct {
		name    string
		target  types.TargetPath
		want    string
		wantErr bool
	}{
		{
			name:   "home relative",
			target: types.HomeTarget(".zshrc"),
			want:   filepath.Join(home, ".zshrc"),
		},
		{
			name:   "config relative",
			target: types.ConfigTarget("ghostty/config"),
			want:   filepath.Join(home, ".config", "ghostty", "config"),
		},
		{
			name:   "data relative",
			target: types.DataTarget("dotkeep/state"),
			want:   filepath.Join(home, ".local", "share", "dotkeep", "state"),
		},
		{
			name:   "absolute verbatim",
			target: types.AbsoluteTarget("/etc/hosts"),
			want:   "/etc/hosts",
		},
		{
			name:    "absolute kind with relative path",
			target:  types.AbsoluteTarget("etc/hosts"),
			wantErr: true,
		},
		{
			name:    "empty path",
			target:  types.HomeTarget(""),
			wantErr: true,
		},
		{
			name:    "unknown kind",
			target:  types.TargetPath{Kind: "registry", Path: "x"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveTarget(tt.target)
			if tt.wantErr {
				assert.True(t, keeperr.IsCode(err, keeperr.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsurePlatform(t *testing.T) {
	assert.NoError(t, EnsurePlatform(nil, types.PlatformLinux))
	assert.NoError(t, EnsurePlatform(
		[]types.Platform{types.PlatformMacOS, types.PlatformLinux}, types.PlatformLinux))

	err := EnsurePlatform([]types.Platform{types.PlatformMacOS}, types.PlatformLinux)
	assert.True(t, keeperr.IsCode(err, keeperr.ErrUnsupportedPlatform))
}
