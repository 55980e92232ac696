package profile

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Context is the resolved identity one command invocation runs under.
// It is computed once at startup and never changes mid-run.
type Context struct {
	// Profile is the active profile name; "" means common-only
	Profile string
	// Machine is the hostname used for the machine layer; "" skips
	// that layer
	Machine string
}

// HasProfile reports whether a profile layer applies.
func (c Context) HasProfile() bool { return c.Profile != "" }

// HasMachine reports whether a machine layer applies.
func (c Context) HasMachine() bool { return c.Machine != "" }

// String renders the context for command headers and logs.
func (c Context) String() string {
	if c.Profile != "" {
		return fmt.Sprintf("profile=%s", c.Profile)
	}
	return "common (no active profile)"
}

// Resolve computes the context for this invocation. Profile priority,
// highest first: the CLI flag, the DOTKEEP_PROFILE environment variable,
// the persisted state file, the configured default. When none of those
// name a profile the context degrades to common-only rather than
// failing; callers treat that as "use common and legacy layers only".
func Resolve(fs types.FS, p paths.Paths, flagProfile, configDefault string) Context {
	ctx := Context{Machine: hostname()}

	switch {
	case flagProfile != "":
		ctx.Profile = flagProfile
	case os.Getenv(paths.EnvProfile) != "":
		ctx.Profile = os.Getenv(paths.EnvProfile)
	case ReadActiveProfile(fs, p.ActiveProfilePath()) != "":
		ctx.Profile = ReadActiveProfile(fs, p.ActiveProfilePath())
	default:
		ctx.Profile = configDefault
	}

	// "common" and "none" explicitly select common-only resolution
	if ctx.Profile == "common" || ctx.Profile == "none" {
		ctx.Profile = ""
	}

	log := logging.GetLogger("profile")
	if ctx.Profile != "" {
		if profs, err := LoadProfiles(fs, p.ProfilesPath()); err == nil && !profs.Exists(ctx.Profile) {
			log.Warn().Str("profile", ctx.Profile).
				Msg("active profile is not defined, run dotkeep profile create")
		}
	}
	log.Debug().
		Str("profile", ctx.Profile).
		Str("machine", ctx.Machine).
		Msg("resolved context")
	return ctx
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		log := logging.GetLogger("profile")
		log.Warn().Err(err).
			Msg("could not determine hostname, skipping machine layer")
		return ""
	}
	return name
}
