package types

import (
	"fmt"
	"strings"
)

// Category organizes registry entries for listing and filtering.
type Category string

const (
	CategoryShell       Category = "shell"
	CategoryEditor      Category = "editor"
	CategoryTerminal    Category = "terminal"
	CategorySystem      Category = "system"
	CategoryDevelopment Category = "development"
	CategoryApplication Category = "application"
)

// Categories returns every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryShell,
		CategoryEditor,
		CategoryTerminal,
		CategorySystem,
		CategoryDevelopment,
		CategoryApplication,
	}
}

// ParseCategory converts a user-supplied string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryShell, CategoryEditor, CategoryTerminal,
		CategorySystem, CategoryDevelopment, CategoryApplication:
		return c, nil
	}
	return "", fmt.Errorf("unknown category %q (valid: shell, editor, terminal, system, development, application)", s)
}

// TargetKind tags how a target path should be resolved.
type TargetKind string

const (
	// TargetHome is resolved relative to the user's home directory
	TargetHome TargetKind = "home"
	// TargetConfig is resolved relative to the platform config directory
	TargetConfig TargetKind = "config"
	// TargetData is resolved relative to the platform data directory
	TargetData TargetKind = "data"
	// TargetAbsolute is used verbatim
	TargetAbsolute TargetKind = "absolute"
)

// TargetPath is a symbolic target location. The concrete absolute path
// depends on the platform and is computed by the resolver.
type TargetPath struct {
	Kind TargetKind `json:"kind"`
	Path string     `json:"path"`
}

// HomeTarget returns a home-relative target path.
func HomeTarget(path string) TargetPath {
	return TargetPath{Kind: TargetHome, Path: path}
}

// ConfigTarget returns a config-dir-relative target path.
func ConfigTarget(path string) TargetPath {
	return TargetPath{Kind: TargetConfig, Path: path}
}

// DataTarget returns a data-dir-relative target path.
func DataTarget(path string) TargetPath {
	return TargetPath{Kind: TargetData, Path: path}
}

// AbsoluteTarget returns a target used verbatim.
func AbsoluteTarget(path string) TargetPath {
	return TargetPath{Kind: TargetAbsolute, Path: path}
}

// Display returns a human-readable form for listings.
func (t TargetPath) Display() string {
	switch t.Kind {
	case TargetHome:
		return "~/" + t.Path
	case TargetConfig:
		return "~/.config/" + t.Path
	case TargetData:
		return "<data-dir>/" + t.Path
	default:
		return t.Path
	}
}

// Entry is the capability set shared by all registry entry kinds.
type Entry interface {
	DisplayName() string
	IsEnabled() bool
}

// Settable is implemented by entry types that can produce a copy of
// themselves with the enabled flag changed. Registries use it for toggle
// without mutating shared entry values.
type Settable[E any] interface {
	Entry
	WithEnabled(enabled bool) E
}

// ConfigEntry is one tracked configuration file or directory.
type ConfigEntry struct {
	// Name is the human-readable name for this entry
	Name string `json:"name"`
	// SourcePath is relative to a layer root
	SourcePath string `json:"source_path"`
	// TargetPath is where the file lives on the machine
	TargetPath TargetPath `json:"target_path"`
	// Category for organization
	Category Category `json:"category"`
	// Enabled allows temporarily disabling entries without removing them
	Enabled bool `json:"enabled"`
	// Description is free text
	Description string `json:"description,omitempty"`
	// Format declares the structured format of the content, if any
	// (json, yaml, toml). Validation parses entries that declare one.
	Format string `json:"format,omitempty"`
}

func (e ConfigEntry) DisplayName() string { return e.Name }
func (e ConfigEntry) IsEnabled() bool     { return e.Enabled }

func (e ConfigEntry) WithEnabled(enabled bool) ConfigEntry {
	e.Enabled = enabled
	return e
}

// PackageEntry describes one package manager whose installed-package list
// dotkeep snapshots during backup.
type PackageEntry struct {
	Name        string   `json:"name"`
	Command     string   `json:"command"`
	Args        []string `json:"args"`
	// OutputFile is the file under backup/packages/ the command's stdout
	// is written to
	OutputFile  string     `json:"output_file"`
	Enabled     bool       `json:"enabled"`
	Description string     `json:"description,omitempty"`
	// Platforms limits the entry to specific operating systems.
	// Empty means all platforms.
	Platforms []Platform `json:"platforms,omitempty"`
}

func (e PackageEntry) DisplayName() string { return e.Name }
func (e PackageEntry) IsEnabled() bool     { return e.Enabled }

func (e PackageEntry) WithEnabled(enabled bool) PackageEntry {
	e.Enabled = enabled
	return e
}

// SupportsPlatform reports whether the entry applies on the given platform.
func (e PackageEntry) SupportsPlatform(p Platform) bool {
	if len(e.Platforms) == 0 {
		return true
	}
	for _, candidate := range e.Platforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// SecretEntry is a tracked sensitive file. Its payload is stored
// age-encrypted under the encrypted/ subdirectory of a layer and never
// touches a layer directory in plaintext.
type SecretEntry struct {
	Name       string `json:"name"`
	SourcePath string `json:"source_path"`
	// TargetPath is always absolute for secrets
	TargetPath  string `json:"target_path"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
	// EncryptFilename hashes the stored filename so directory listings
	// do not leak what the secret is
	EncryptFilename bool `json:"encrypt_filename"`
}

func (e SecretEntry) DisplayName() string { return e.Name }
func (e SecretEntry) IsEnabled() bool     { return e.Enabled }

func (e SecretEntry) WithEnabled(enabled bool) SecretEntry {
	e.Enabled = enabled
	return e
}
