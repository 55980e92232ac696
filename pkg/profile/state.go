package profile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// ReadActiveProfile returns the persisted active profile name, or ""
// when none is set. The state file holds a single trimmed line.
func ReadActiveProfile(fs types.FS, path string) string {
	data, err := fs.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// SetActiveProfile persists the active profile name.
func SetActiveProfile(fs types.FS, path, name string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", filepath.Dir(path))
	}
	if err := fs.WriteFile(path, []byte(name+"\n"), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write active profile %s", path)
	}
	return nil
}

// ClearActiveProfile removes the persisted active profile.
func ClearActiveProfile(fs types.FS, path string) error {
	if err := fs.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIO, "failed to clear active profile %s", path)
	}
	return nil
}
