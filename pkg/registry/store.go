package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// document is the persisted form of a registry: a schema version, the
// id-keyed entry mapping, and the insertion order of the ids. Older
// documents without an order field load with sorted ids.
type document[E types.Settable[E]] struct {
	Version string       `json:"version"`
	Entries map[string]E `json:"entries"`
	Order   []string     `json:"order,omitempty"`
}

// Store persists one registry document. Seed provides the stock entries
// written on first load when the document does not exist yet; a nil Seed
// initializes an empty registry.
type Store[E types.Settable[E]] struct {
	fs   types.FS
	path string
	seed func() *Registry[E]
}

// NewStore creates a store for the document at path.
func NewStore[E types.Settable[E]](fs types.FS, path string, seed func() *Registry[E]) *Store[E] {
	return &Store[E]{fs: fs, path: path, seed: seed}
}

// Path returns the backing document path.
func (s *Store[E]) Path() string { return s.path }

// Load reads the registry document. A missing document initializes the
// seeded default (persisting it) rather than failing; any other read or
// parse failure is structural and fatal to the calling command.
func (s *Store[E]) Load() (*Registry[E], error) {
	data, err := s.fs.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			reg := s.seeded()
			if saveErr := s.Save(reg); saveErr != nil {
				return nil, saveErr
			}
			log := logging.GetLogger("registry")
			log.Debug().
				Str("path", s.path).Int("entries", reg.Len()).
				Msg("initialized registry document")
			return reg, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to read registry %s", s.path)
	}

	var doc document[E]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to parse registry %s", s.path)
	}
	if doc.Version != SchemaVersion {
		return nil, errors.Newf(errors.ErrSchemaVersion,
			"registry %s has schema version %q, this build supports %q",
			s.path, doc.Version, SchemaVersion)
	}

	reg := &Registry[E]{
		version: doc.Version,
		entries: doc.Entries,
		order:   doc.Order,
	}
	if reg.entries == nil {
		reg.entries = make(map[string]E)
	}
	reg.normalizeOrder()
	return reg, nil
}

// Peek is Load without the first-run persistence: a missing document
// returns the seeded default but writes nothing. Read-only commands use
// it so inspecting a dotkeep directory never modifies it.
func (s *Store[E]) Peek() (*Registry[E], error) {
	if _, err := s.fs.Stat(s.path); os.IsNotExist(err) {
		return s.seeded(), nil
	}
	return s.Load()
}

// Save atomically rewrites the backing document: the new content is
// written to a temp file in the same directory and renamed over the
// original, so a crash mid-write cannot leave a corrupt document.
func (s *Store[E]) Save(reg *Registry[E]) error {
	doc := document[E]{
		Version: reg.version,
		Entries: reg.entries,
		Order:   reg.order,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to encode registry %s", s.path)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", dir)
	}

	tmp := fmt.Sprintf("%s.tmp.%d", s.path, os.Getpid())
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.Wrapf(err, errors.ErrIO, "failed to replace %s", s.path)
	}
	return nil
}

// Mutate runs fn on the loaded registry and saves the result, holding the
// document lock for the whole read-modify-write cycle so two concurrent
// invocations cannot lose an update.
func (s *Store[E]) Mutate(fn func(*Registry[E]) error) error {
	lock := NewFileLock(s.fs, s.path+lockSuffix)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	reg, err := s.Load()
	if err != nil {
		return err
	}
	if err := fn(reg); err != nil {
		return err
	}
	return s.Save(reg)
}

func (s *Store[E]) seeded() *Registry[E] {
	if s.seed == nil {
		return New[E]()
	}
	return s.seed()
}
