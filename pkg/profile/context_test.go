package profile

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
)

func testPaths() paths.Paths {
	return paths.New("/keep")
}

func TestResolveFlagWinsOverEverything(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	t.Setenv(paths.EnvProfile, "from-env")
	require.NoError(t, SetActiveProfile(fs, p.ActiveProfilePath(), "from-state"))

	ctx := Resolve(fs, p, "from-flag", "from-config")
	assert.Equal(t, "from-flag", ctx.Profile)
}

func TestResolveEnvBeatsStateFile(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	t.Setenv(paths.EnvProfile, "from-env")
	require.NoError(t, SetActiveProfile(fs, p.ActiveProfilePath(), "from-state"))

	ctx := Resolve(fs, p, "", "")
	assert.Equal(t, "from-env", ctx.Profile)
}

func TestResolveStateFileBeatsConfigDefault(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	t.Setenv(paths.EnvProfile, "")
	require.NoError(t, SetActiveProfile(fs, p.ActiveProfilePath(), "from-state"))

	ctx := Resolve(fs, p, "", "from-config")
	assert.Equal(t, "from-state", ctx.Profile)
}

func TestResolveFallsBackToConfigDefault(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	t.Setenv(paths.EnvProfile, "")

	ctx := Resolve(fs, p, "", "from-config")
	assert.Equal(t, "from-config", ctx.Profile)
}

func TestResolveDegradesToCommonOnly(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	t.Setenv(paths.EnvProfile, "")

	ctx := Resolve(fs, p, "", "")
	assert.False(t, ctx.HasProfile())
	assert.Contains(t, ctx.String(), "common")
}

func TestResolveCommonAndNoneClearProfile(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()

	for _, name := range []string{"common", "none"} {
		ctx := Resolve(fs, p, name, "")
		assert.False(t, ctx.HasProfile(), "flag %q should clear the profile", name)
	}
}

func TestResolveWarnsOnUndefinedProfile(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()
	profs := NewProfiles()
	require.NoError(t, profs.Create("work", ""))
	require.NoError(t, SaveProfiles(fs, p.ProfilesPath(), profs))

	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	ctx := Resolve(fs, p, "wrok", "")
	// A typo still resolves (it just hits no profile layer) but warns
	assert.Equal(t, "wrok", ctx.Profile)
	assert.Contains(t, buf.String(), "not defined")

	buf.Reset()
	Resolve(fs, p, "work", "")
	assert.NotContains(t, buf.String(), "not defined")
}

func TestResolveMachineIsHostname(t *testing.T) {
	fs := filesystem.NewMemory()
	ctx := Resolve(fs, testPaths(), "", "")
	// Hostname is environment dependent; just assert the field is wired
	assert.Equal(t, ctx.HasMachine(), ctx.Machine != "")
}

func TestActiveProfileStateRoundTrip(t *testing.T) {
	fs := filesystem.NewMemory()
	p := testPaths()

	assert.Equal(t, "", ReadActiveProfile(fs, p.ActiveProfilePath()))

	require.NoError(t, SetActiveProfile(fs, p.ActiveProfilePath(), "work"))
	assert.Equal(t, "work", ReadActiveProfile(fs, p.ActiveProfilePath()))

	require.NoError(t, ClearActiveProfile(fs, p.ActiveProfilePath()))
	assert.Equal(t, "", ReadActiveProfile(fs, p.ActiveProfilePath()))

	// Clearing twice is fine
	require.NoError(t, ClearActiveProfile(fs, p.ActiveProfilePath()))
}
