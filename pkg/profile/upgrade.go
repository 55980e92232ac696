package profile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// legacyProfiles is the retired 0.x document: profiles named a
// machine id + environment pair and resolution used per-environment
// layer directories.
type legacyProfiles struct {
	Version  string                      `json:"version"`
	Profiles map[string]legacyDefinition `json:"profiles"`
}

type legacyDefinition struct {
	MachineID   string `json:"machine_id"`
	Environment string `json:"environment"`
	Description string `json:"description,omitempty"`
}

// UpgradeReport describes what the one-time converter did.
type UpgradeReport struct {
	Converted []string
	MovedDirs []string
	Skipped   []string
}

// Upgrade converts a 0.x machine+environment profiles document into the
// profile-centric schema. Definitions become plain profiles; each
// environment layer directory (backup/environments/<env>) is renamed to
// the corresponding profile layer directory. The conversion is explicit
// and runs once; there is no silent compatibility between the schemas.
func Upgrade(fs types.FS, p paths.Paths) (*UpgradeReport, error) {
	log := logging.GetLogger("profile")
	path := p.ProfilesPath()

	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrNotFound, "no profiles document at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read profiles %s", path)
	}

	var legacy legacyProfiles
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to parse profiles %s", path)
	}
	if !strings.HasPrefix(legacy.Version, "0.") {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"profiles %s has version %q, nothing to upgrade", path, legacy.Version)
	}

	report := &UpgradeReport{}
	upgraded := NewProfiles()

	names := make([]string, 0, len(legacy.Profiles))
	for name := range legacy.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		def := legacy.Profiles[name]
		description := def.Description
		if description == "" && def.Environment != "" {
			description = "converted from environment " + def.Environment
		}
		upgraded.Profiles[name] = Definition{Description: description}
		report.Converted = append(report.Converted, name)

		if def.Environment == "" {
			continue
		}
		envDir := filepath.Join(p.BackupRoot(), "environments", def.Environment)
		if _, err := fs.Stat(envDir); err != nil {
			continue
		}
		profileDir := p.ProfileRoot(name)
		if _, err := fs.Stat(profileDir); err == nil {
			// Never clobber an existing profile layer
			report.Skipped = append(report.Skipped, name)
			log.Warn().Str("profile", name).Str("dir", profileDir).
				Msg("profile layer already exists, leaving environment directory in place")
			continue
		}
		if err := fs.MkdirAll(filepath.Dir(profileDir), 0755); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO, "failed to create %s", filepath.Dir(profileDir))
		}
		if err := fs.Rename(envDir, profileDir); err != nil {
			return nil, errors.Wrapf(err, errors.ErrIO,
				"failed to move %s to %s", envDir, profileDir)
		}
		report.MovedDirs = append(report.MovedDirs, name)
	}

	if err := SaveProfiles(fs, path, upgraded); err != nil {
		return nil, err
	}
	log.Info().Int("profiles", len(report.Converted)).Msg("profiles document upgraded")
	return report, nil
}
