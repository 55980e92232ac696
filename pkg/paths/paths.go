// Package paths provides centralized path handling for dotkeep.
// All knowledge about where registries, layers and state files live
// is kept here so the rest of the codebase never assembles paths
// by hand.
package paths

import (
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Environment variable names
const (
	// EnvKeepDir overrides the dotkeep directory location
	EnvKeepDir = "DOTKEEP_DIR"

	// EnvProfile overrides the active profile
	EnvProfile = "DOTKEEP_PROFILE"
)

// Directory and file names.
// IMPORTANT: These constants define dotkeep's on-disk layout and are NOT
// user-configurable. They must remain consistent across installations so
// that a synced dotkeep directory works on every machine.
const (
	// KeepDirName is the dotkeep directory under the user's home
	KeepDirName = ".dotkeep"

	// BackupDirName is the backup root; its top level doubles as the
	// legacy flat layer
	BackupDirName = "backup"

	// CommonDirName holds files shared by all machines and profiles
	CommonDirName = "common"

	// MachinesDirName holds one subdirectory per machine hostname
	MachinesDirName = "machines"

	// ProfilesDirName holds one subdirectory per named profile
	ProfilesDirName = "profiles"

	// PackagesDirName holds package-manager list snapshots
	PackagesDirName = "packages"

	// EncryptedDirName is the per-layer subdirectory for secret payloads
	EncryptedDirName = "encrypted"

	// ConfigFileName is the optional app configuration file
	ConfigFileName = "config.toml"

	// ConfigsRegistryFileName is the tracked-configs registry document
	ConfigsRegistryFileName = "configs_registry.json"

	// PackageRegistryFileName is the package-manager registry document
	PackageRegistryFileName = "package_registry.json"

	// SecretsRegistryFileName is the encrypted-configs registry document
	SecretsRegistryFileName = "secrets_registry.json"

	// ProfilesFileName is the profile definitions document
	ProfilesFileName = "profiles.json"

	// ActiveProfileFileName stores the persisted active profile name
	ActiveProfileFileName = ".active-profile"

	// LockSuffix is appended to a document path to form its lock file
	LockSuffix = ".lock"
)

// Paths provides centralized path management for dotkeep
type Paths interface {
	Root() string
	ConfigFilePath() string
	ConfigsRegistryPath() string
	PackageRegistryPath() string
	SecretsRegistryPath() string
	ProfilesPath() string
	ActiveProfilePath() string

	// BackupRoot is the legacy flat layer root
	BackupRoot() string
	CommonRoot() string
	MachineRoot(machine string) string
	ProfileRoot(profile string) string
	PackagesDir() string

	// LayerRoot maps a layer to its root directory. The name argument
	// is the machine hostname or profile name, ignored for the others.
	LayerRoot(layer types.Layer, name string) string

	// LockPath returns the lock file guarding the given document
	LockPath(documentPath string) string
}

type paths struct {
	root string
}

// New creates a Paths instance rooted at the given directory. If root is
// empty it is determined from DOTKEEP_DIR or defaults to ~/.dotkeep.
func New(root string) Paths {
	if root == "" {
		root = os.Getenv(EnvKeepDir)
	}
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			// Last resort, keeps path operations relative to cwd
			home = "."
		}
		root = filepath.Join(home, KeepDirName)
	}
	return &paths{root: root}
}

func (p *paths) Root() string { return p.root }

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.root, ConfigFileName)
}

func (p *paths) ConfigsRegistryPath() string {
	return filepath.Join(p.root, ConfigsRegistryFileName)
}

func (p *paths) PackageRegistryPath() string {
	return filepath.Join(p.root, PackageRegistryFileName)
}

func (p *paths) SecretsRegistryPath() string {
	return filepath.Join(p.root, SecretsRegistryFileName)
}

func (p *paths) ProfilesPath() string {
	return filepath.Join(p.root, ProfilesFileName)
}

func (p *paths) ActiveProfilePath() string {
	return filepath.Join(p.root, ActiveProfileFileName)
}

func (p *paths) BackupRoot() string {
	return filepath.Join(p.root, BackupDirName)
}

func (p *paths) CommonRoot() string {
	return filepath.Join(p.BackupRoot(), CommonDirName)
}

func (p *paths) MachineRoot(machine string) string {
	return filepath.Join(p.BackupRoot(), MachinesDirName, machine)
}

func (p *paths) ProfileRoot(profile string) string {
	return filepath.Join(p.BackupRoot(), ProfilesDirName, profile)
}

func (p *paths) PackagesDir() string {
	return filepath.Join(p.BackupRoot(), PackagesDirName)
}

func (p *paths) LayerRoot(layer types.Layer, name string) string {
	switch layer {
	case types.LayerProfile:
		return p.ProfileRoot(name)
	case types.LayerMachine:
		return p.MachineRoot(name)
	case types.LayerCommon:
		return p.CommonRoot()
	default:
		return p.BackupRoot()
	}
}

func (p *paths) LockPath(documentPath string) string {
	return documentPath + LockSuffix
}
