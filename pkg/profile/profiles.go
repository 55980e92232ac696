package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// SchemaVersion is the profiles document version this build supports.
const SchemaVersion = "1.0.0"

// Definition describes one named profile.
type Definition struct {
	Description string `json:"description,omitempty"`
	// Default marks the profile used when nothing else selects one.
	// At most one profile may be default.
	Default bool `json:"default,omitempty"`
}

// Profiles is the persisted profile definitions document.
type Profiles struct {
	Version  string                `json:"version"`
	Profiles map[string]Definition `json:"profiles"`
}

// NewProfiles returns an empty document at the current schema version.
func NewProfiles() *Profiles {
	return &Profiles{Version: SchemaVersion, Profiles: make(map[string]Definition)}
}

// LoadProfiles reads the profiles document. A missing file yields the
// empty document. Documents with a 0.x version are the retired
// machine+environment schema and must be converted explicitly.
func LoadProfiles(fs types.FS, path string) (*Profiles, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewProfiles(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read profiles %s", path)
	}

	var p Profiles
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to parse profiles %s", path)
	}
	if strings.HasPrefix(p.Version, "0.") {
		return nil, errors.Newf(errors.ErrSchemaVersion,
			"profiles %s uses the retired machine/environment schema (version %s); run 'dotkeep profile upgrade'",
			path, p.Version)
	}
	if p.Version != SchemaVersion {
		return nil, errors.Newf(errors.ErrSchemaVersion,
			"profiles %s has schema version %q, this build supports %q", path, p.Version, SchemaVersion)
	}
	if p.Profiles == nil {
		p.Profiles = make(map[string]Definition)
	}
	return &p, nil
}

// SaveProfiles writes the document, creating parent directories.
func SaveProfiles(fs types.FS, path string, p *Profiles) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode profiles")
	}
	data = append(data, '\n')
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", filepath.Dir(path))
	}
	tmp := fmt.Sprintf("%s.tmp.%d", path, os.Getpid())
	if err := fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write %s", tmp)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "failed to replace %s", path)
	}
	return nil
}

// Exists reports whether the named profile is defined.
func (p *Profiles) Exists(name string) bool {
	_, ok := p.Profiles[name]
	return ok
}

// Names returns the defined profile names, sorted.
func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create defines a profile. Fails with DUPLICATE_ID when it exists.
func (p *Profiles) Create(name, description string) error {
	if name == "" || name == "common" || name == "none" {
		return errors.Newf(errors.ErrInvalidInput, "%q is not a valid profile name", name)
	}
	if p.Exists(name) {
		return errors.Newf(errors.ErrDuplicateID, "profile %q already exists", name)
	}
	p.Profiles[name] = Definition{Description: description}
	return nil
}

// Delete removes a profile definition. Fails with NOT_FOUND when absent.
func (p *Profiles) Delete(name string) error {
	if !p.Exists(name) {
		return errors.Newf(errors.ErrNotFound, "profile %q not found", name)
	}
	delete(p.Profiles, name)
	return nil
}

// SetDefault marks the named profile as default, clearing any previous
// default. An empty name clears the default entirely.
func (p *Profiles) SetDefault(name string) error {
	if name != "" && !p.Exists(name) {
		return errors.Newf(errors.ErrNotFound, "profile %q not found", name)
	}
	for n, def := range p.Profiles {
		def.Default = n == name
		p.Profiles[n] = def
	}
	return nil
}

// DefaultName returns the profile marked default, or "".
func (p *Profiles) DefaultName() string {
	for name, def := range p.Profiles {
		if def.Default {
			return name
		}
	}
	return ""
}
