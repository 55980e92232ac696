package registry

import (
	"sort"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// SchemaVersion is the registry document version this build reads and
// writes. Documents with any other version are rejected rather than
// silently truncated.
const SchemaVersion = "1.0.0"

// Item pairs an entry with its id for listing.
type Item[E types.Settable[E]] struct {
	ID    string
	Entry E
}

// Filter selects a subset of entries during List.
type Filter[E types.Settable[E]] func(id string, entry E) bool

// Registry is an in-memory snapshot of one registry document. It is not
// safe for concurrent mutation; commands load it once, mutate under the
// store's lock, and save.
type Registry[E types.Settable[E]] struct {
	version string
	entries map[string]E
	order   []string
}

// New returns an empty registry at the current schema version.
func New[E types.Settable[E]]() *Registry[E] {
	return &Registry[E]{
		version: SchemaVersion,
		entries: make(map[string]E),
	}
}

// Version returns the document schema version.
func (r *Registry[E]) Version() string { return r.version }

// Len returns the number of entries.
func (r *Registry[E]) Len() int { return len(r.entries) }

// Add inserts a new entry under id. Fails with DUPLICATE_ID when the id
// is already present.
func (r *Registry[E]) Add(id string, entry E) error {
	if id == "" {
		return errors.New(errors.ErrInvalidInput, "entry id must not be empty")
	}
	if _, exists := r.entries[id]; exists {
		return errors.Newf(errors.ErrDuplicateID, "entry %q already exists", id)
	}
	r.entries[id] = entry
	r.order = append(r.order, id)
	return nil
}

// Remove deletes the entry under id and returns it. Fails with NOT_FOUND
// when absent.
func (r *Registry[E]) Remove(id string) (E, error) {
	entry, exists := r.entries[id]
	if !exists {
		var zero E
		return zero, errors.Newf(errors.ErrNotFound, "entry %q not found", id)
	}
	delete(r.entries, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return entry, nil
}

// Toggle sets the enabled flag of the entry under id, leaving every other
// field untouched. Fails with NOT_FOUND when absent.
func (r *Registry[E]) Toggle(id string, enabled bool) error {
	entry, exists := r.entries[id]
	if !exists {
		return errors.Newf(errors.ErrNotFound, "entry %q not found", id)
	}
	r.entries[id] = entry.WithEnabled(enabled)
	return nil
}

// Update replaces the entry under id. Fails with NOT_FOUND when absent.
func (r *Registry[E]) Update(id string, entry E) error {
	if _, exists := r.entries[id]; !exists {
		return errors.Newf(errors.ErrNotFound, "entry %q not found", id)
	}
	r.entries[id] = entry
	return nil
}

// Get returns the entry under id.
func (r *Registry[E]) Get(id string) (E, bool) {
	entry, ok := r.entries[id]
	return entry, ok
}

// IDs returns all ids in insertion order.
func (r *Registry[E]) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns entries in insertion order, keeping only those every
// filter accepts.
func (r *Registry[E]) List(filters ...Filter[E]) []Item[E] {
	var items []Item[E]
next:
	for _, id := range r.order {
		entry := r.entries[id]
		for _, filter := range filters {
			if !filter(id, entry) {
				continue next
			}
		}
		items = append(items, Item[E]{ID: id, Entry: entry})
	}
	return items
}

// Enabled returns the enabled entries in insertion order.
func (r *Registry[E]) Enabled() []Item[E] {
	return r.List(func(_ string, e E) bool { return e.IsEnabled() })
}

// normalizeOrder reconciles the order slice with the entry map after
// load: unknown ids are dropped, entries missing from the order are
// appended sorted, so every entry is listed exactly once.
func (r *Registry[E]) normalizeOrder() {
	seen := make(map[string]bool, len(r.order))
	normalized := r.order[:0]
	for _, id := range r.order {
		if _, ok := r.entries[id]; ok && !seen[id] {
			normalized = append(normalized, id)
			seen[id] = true
		}
	}
	var missing []string
	for id := range r.entries {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	r.order = append(normalized, missing...)
}

// EnabledFilter keeps entries matching the given enabled state.
func EnabledFilter[E types.Settable[E]](enabled bool) Filter[E] {
	return func(_ string, e E) bool { return e.IsEnabled() == enabled }
}

// CategoryFilter keeps config entries in the given category.
func CategoryFilter(category types.Category) Filter[types.ConfigEntry] {
	return func(_ string, e types.ConfigEntry) bool { return e.Category == category }
}

// PlatformFilter keeps package entries compatible with the platform.
func PlatformFilter(platform types.Platform) Filter[types.PackageEntry] {
	return func(_ string, e types.PackageEntry) bool { return e.SupportsPlatform(platform) }
}
