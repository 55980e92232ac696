// Package resolver implements layered source resolution. A tracked
// entry's content can live in several layer directories at once; the
// resolver walks them in priority order (profile, machine, common,
// legacy) and picks the first existing copy. It also maps symbolic
// target paths to concrete locations on the current machine.
package resolver

import (
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Candidate is one layer location an entry could resolve from.
type Candidate struct {
	Path  string
	Layer types.Layer
}

// LayerResolver resolves entry sources against a fixed context. The
// context is captured at construction so every lookup in one command
// invocation sees the same layer ordering.
type LayerResolver struct {
	fs    types.FS
	paths paths.Paths
	ctx   profile.Context
}

// New creates a LayerResolver for the given context.
func New(fs types.FS, p paths.Paths, ctx profile.Context) *LayerResolver {
	return &LayerResolver{fs: fs, paths: p, ctx: ctx}
}

// Context returns the resolution context the resolver was built with.
func (r *LayerResolver) Context() profile.Context {
	return r.ctx
}

// Candidates returns the ordered list of locations the given
// layer-relative path could resolve from, highest priority first. The
// profile layer is absent when no profile is active, the machine layer
// when the hostname is unknown.
func (r *LayerResolver) Candidates(rel string) []Candidate {
	candidates := make([]Candidate, 0, 4)
	if r.ctx.HasProfile() {
		candidates = append(candidates, Candidate{
			Path:  filepath.Join(r.paths.ProfileRoot(r.ctx.Profile), rel),
			Layer: types.LayerProfile,
		})
	}
	if r.ctx.HasMachine() {
		candidates = append(candidates, Candidate{
			Path:  filepath.Join(r.paths.MachineRoot(r.ctx.Machine), rel),
			Layer: types.LayerMachine,
		})
	}
	candidates = append(candidates,
		Candidate{Path: filepath.Join(r.paths.CommonRoot(), rel), Layer: types.LayerCommon},
		Candidate{Path: filepath.Join(r.paths.BackupRoot(), rel), Layer: types.LayerLegacy},
	)
	return candidates
}

// EncryptedCandidates returns the ordered candidate locations for an
// encrypted payload. Secrets live under the encrypted/ subdirectory of
// each layer; storedName is the final on-disk file name, hashing and
// suffix already applied.
func (r *LayerResolver) EncryptedCandidates(storedName string) []Candidate {
	plain := r.Candidates(storedName)
	candidates := make([]Candidate, 0, len(plain))
	for _, c := range plain {
		dir := filepath.Dir(c.Path)
		candidates = append(candidates, Candidate{
			Path:  filepath.Join(dir, paths.EncryptedDirName, filepath.Base(c.Path)),
			Layer: c.Layer,
		})
	}
	return candidates
}

// ResolveSource returns the highest-priority existing copy of the given
// layer-relative path. A NOT_FOUND error means no layer has the file;
// callers treat that as "nothing backed up yet", not a failure.
func (r *LayerResolver) ResolveSource(rel string) (types.ResolvedSource, error) {
	return r.firstExisting(r.Candidates(rel), rel)
}

// ResolveEncrypted is ResolveSource for encrypted payloads.
func (r *LayerResolver) ResolveEncrypted(storedName string) (types.ResolvedSource, error) {
	return r.firstExisting(r.EncryptedCandidates(storedName), storedName)
}

func (r *LayerResolver) firstExisting(candidates []Candidate, rel string) (types.ResolvedSource, error) {
	for _, c := range candidates {
		if _, err := r.fs.Stat(c.Path); err == nil {
			return types.ResolvedSource{Path: c.Path, Layer: c.Layer}, nil
		}
	}
	return types.ResolvedSource{}, errors.Newf(errors.ErrNotFound,
		"%s not found in any layer", rel)
}

// ResolveAll returns every existing copy of the given path across the
// candidate layers, in priority order. Validation uses it to report
// shadowed copies and content still sitting in the legacy layer.
func (r *LayerResolver) ResolveAll(rel string) []types.ResolvedSource {
	var found []types.ResolvedSource
	for _, c := range r.Candidates(rel) {
		if _, err := r.fs.Stat(c.Path); err == nil {
			found = append(found, types.ResolvedSource{Path: c.Path, Layer: c.Layer})
		}
	}
	return found
}

// WriteLayer returns the layer new content should be written to for the
// current context: the profile layer when a profile is active, otherwise
// the common layer. The legacy layer is never a write target.
func (r *LayerResolver) WriteLayer() types.Layer {
	if r.ctx.HasProfile() {
		return types.LayerProfile
	}
	return types.LayerCommon
}

// WriteRoot returns the directory backing WriteLayer.
func (r *LayerResolver) WriteRoot() string {
	if r.ctx.HasProfile() {
		return r.paths.ProfileRoot(r.ctx.Profile)
	}
	return r.paths.CommonRoot()
}

// ResolveTarget maps a symbolic target path to a concrete absolute path
// on this machine. Home, config and data targets follow the XDG base
// directories (with the platform conventions xdg applies on macOS and
// Windows); absolute targets are used verbatim.
func ResolveTarget(t types.TargetPath) (string, error) {
	if t.Path == "" {
		return "", errors.New(errors.ErrInvalidInput, "target path is empty")
	}
	switch t.Kind {
	case types.TargetHome:
		return filepath.Join(xdg.Home, t.Path), nil
	case types.TargetConfig:
		return filepath.Join(xdg.ConfigHome, t.Path), nil
	case types.TargetData:
		return filepath.Join(xdg.DataHome, t.Path), nil
	case types.TargetAbsolute:
		if !filepath.IsAbs(t.Path) {
			return "", errors.Newf(errors.ErrInvalidInput,
				"target %q is marked absolute but is not an absolute path", t.Path)
		}
		return t.Path, nil
	default:
		return "", errors.Newf(errors.ErrInvalidInput, "unknown target kind %q", t.Kind)
	}
}

// EnsurePlatform checks an entry's platform restriction against the
// platform this process runs on. An empty set means unrestricted.
func EnsurePlatform(supported []types.Platform, current types.Platform) error {
	if len(supported) == 0 {
		return nil
	}
	for _, p := range supported {
		if p == current {
			return nil
		}
	}
	return errors.Newf(errors.ErrUnsupportedPlatform, "not supported on %s", current)
}
