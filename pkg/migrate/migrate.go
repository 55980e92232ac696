// Package migrate moves tracked content out of the legacy flat backup
// layer into the structured layers. Migration is registry-driven and
// non-destructive: only enabled entries move, originals stay in place
// unless pruning is explicitly requested, and entries already present
// in any structured layer are skipped rather than duplicated.
package migrate

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// ActionKind classifies a planned migration step.
type ActionKind string

const (
	// ActionCopy moves the item into the target layer
	ActionCopy ActionKind = "copy"
	// ActionSkip leaves the item alone, Reason says why
	ActionSkip ActionKind = "skip"
)

// Action is one planned step for one legacy item.
type Action struct {
	Rel     string
	Kind    ActionKind
	Source  string
	Dest    string
	Symlink bool
	Reason  string
}

// Plan is the full decision pass over the legacy layer. Apply executes
// exactly this plan, so a dry run shows precisely what a real run would
// do.
type Plan struct {
	Actions []Action
}

// Copies returns the number of planned copy actions.
func (p *Plan) Copies() int {
	n := 0
	for _, a := range p.Actions {
		if a.Kind == ActionCopy {
			n++
		}
	}
	return n
}

// Report summarizes an applied migration.
type Report struct {
	Moved     []string
	Skipped   []string
	Converted []string
	Pruned    []string
	Failed    []Failure
}

// Failure is one item that could not be migrated.
type Failure struct {
	Rel string
	Err error
}

// HasFailures reports whether any item failed.
func (r *Report) HasFailures() bool { return len(r.Failed) > 0 }

// Engine plans and applies legacy layer migrations.
type Engine struct {
	fs     types.FS
	paths  paths.Paths
	target types.Layer
	name   string
	prune  bool
}

// Options configures a migration run.
type Options struct {
	// Target is the structured layer to move content into
	Target types.Layer
	// TargetName is the profile or machine name, required for those layers
	TargetName string
	// Prune removes legacy originals after a successful copy
	Prune bool
}

// New creates a migration engine. The target must be a structured layer.
func New(fs types.FS, p paths.Paths, opts Options) (*Engine, error) {
	if !opts.Target.Structured() {
		return nil, errors.Newf(errors.ErrInvalidInput,
			"cannot migrate into the %s layer", opts.Target)
	}
	switch opts.Target {
	case types.LayerProfile, types.LayerMachine:
		if opts.TargetName == "" {
			return nil, errors.Newf(errors.ErrInvalidInput,
				"migrating into the %s layer requires a name", opts.Target)
		}
	}
	return &Engine{
		fs:     fs,
		paths:  p,
		target: opts.Target,
		name:   opts.TargetName,
		prune:  opts.Prune,
	}, nil
}

// layerRoot pairs a structured layer root with the layer it belongs to,
// for skip reasons.
type layerRoot struct {
	layer types.Layer
	root  string
}

// structuredRoots lists every structured layer root that currently
// exists: common plus each machine and profile directory.
func (e *Engine) structuredRoots() []layerRoot {
	roots := []layerRoot{{layer: types.LayerCommon, root: e.paths.CommonRoot()}}
	backup := e.paths.BackupRoot()
	roots = append(roots, e.namedRoots(types.LayerMachine,
		filepath.Join(backup, paths.MachinesDirName))...)
	roots = append(roots, e.namedRoots(types.LayerProfile,
		filepath.Join(backup, paths.ProfilesDirName))...)
	return roots
}

func (e *Engine) namedRoots(layer types.Layer, parent string) []layerRoot {
	entries, err := e.fs.ReadDir(parent)
	if err != nil {
		return nil
	}
	var roots []layerRoot
	for _, entry := range entries {
		if entry.IsDir() {
			roots = append(roots, layerRoot{layer: layer, root: filepath.Join(parent, entry.Name())})
		}
	}
	return roots
}

// Plan decides, per enabled registry entry, whether its legacy copy can
// be moved into the target layer. Entries already present in any
// structured layer are skipped, regardless of which layer the migration
// targets, so re-running with a different target never duplicates
// content. Entries with no legacy copy and disabled or untracked legacy
// files are left alone. Plan never writes.
func (e *Engine) Plan(reg *registry.Registry[types.ConfigEntry]) (*Plan, error) {
	root := e.paths.BackupRoot()
	if _, err := e.fs.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return &Plan{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to stat %s", root)
	}

	targetRoot := e.paths.LayerRoot(e.target, e.name)
	structured := e.structuredRoots()

	plan := &Plan{}
	for _, item := range reg.Enabled() {
		rel := item.Entry.SourcePath
		source := filepath.Join(root, rel)
		info, err := e.fs.Lstat(source)
		if err != nil {
			continue
		}
		action := Action{
			Rel:     rel,
			Source:  source,
			Dest:    filepath.Join(targetRoot, rel),
			Symlink: info.Mode()&os.ModeSymlink != 0,
		}
		if layer, ok := e.inStructuredLayer(structured, rel); ok {
			action.Kind = ActionSkip
			action.Reason = "already present in the " + string(layer) + " layer"
		} else {
			action.Kind = ActionCopy
		}
		plan.Actions = append(plan.Actions, action)
	}
	sort.Slice(plan.Actions, func(i, j int) bool {
		return plan.Actions[i].Rel < plan.Actions[j].Rel
	})
	return plan, nil
}

// inStructuredLayer reports which structured layer, if any, already
// holds the given relative path.
func (e *Engine) inStructuredLayer(roots []layerRoot, rel string) (types.Layer, bool) {
	for _, lr := range roots {
		if _, err := e.fs.Stat(filepath.Join(lr.root, rel)); err == nil {
			return lr.layer, true
		}
	}
	return "", false
}

// Apply executes a plan. Failures are collected per item so one broken
// file does not abort the rest of the migration.
func (e *Engine) Apply(plan *Plan) *Report {
	log := logging.GetLogger("migrate")
	report := &Report{}

	for _, action := range plan.Actions {
		switch action.Kind {
		case ActionSkip:
			report.Skipped = append(report.Skipped, action.Rel)
			log.Debug().Str("item", action.Rel).Str("reason", action.Reason).Msg("skipped")
			continue
		case ActionCopy:
			converted, err := e.copyItem(action)
			if err != nil {
				report.Failed = append(report.Failed, Failure{Rel: action.Rel, Err: err})
				log.Warn().Err(err).Str("item", action.Rel).Msg("migration failed")
				continue
			}
			report.Moved = append(report.Moved, action.Rel)
			if converted {
				report.Converted = append(report.Converted, action.Rel)
			}
			if e.prune {
				if err := e.fs.RemoveAll(action.Source); err != nil {
					report.Failed = append(report.Failed, Failure{Rel: action.Rel,
						Err: errors.Wrapf(err, errors.ErrIO, "failed to prune %s", action.Source)})
					continue
				}
				report.Pruned = append(report.Pruned, action.Rel)
			}
		}
	}
	return report
}

// copyItem copies one legacy item to its destination. Symlinks are
// dereferenced so the structured layer holds real content, never links.
// The returned bool reports whether a symlink was converted.
func (e *Engine) copyItem(action Action) (bool, error) {
	if action.Symlink {
		src, err := e.resolveLink(action.Source)
		if err != nil {
			return false, err
		}
		return true, e.copyPath(src, action.Dest)
	}
	return false, e.copyPath(action.Source, action.Dest)
}

// resolveLink returns the path a symlink points at, made absolute
// relative to the link's directory.
func (e *Engine) resolveLink(link string) (string, error) {
	target, err := e.fs.Readlink(link)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "failed to read link %s", link)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	if _, err := e.fs.Stat(target); err != nil {
		return "", errors.Wrapf(err, errors.ErrNotFound,
			"link %s points at missing %s", link, target)
	}
	return target, nil
}

func (e *Engine) copyPath(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to stat %s", src)
	}
	if info.IsDir() {
		return e.copyDir(src, dst)
	}
	return e.copyFile(src, dst, info.Mode().Perm())
}

func (e *Engine) copyDir(src, dst string) error {
	if err := e.fs.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", dst)
	}
	entries, err := e.fs.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to read %s", src)
	}
	for _, entry := range entries {
		childSrc := filepath.Join(src, entry.Name())
		childDst := filepath.Join(dst, entry.Name())
		if entry.Type()&os.ModeSymlink != 0 {
			resolved, err := e.resolveLink(childSrc)
			if err != nil {
				return err
			}
			childSrc = resolved
		}
		if err := e.copyPath(childSrc, childDst); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) copyFile(src, dst string, perm os.FileMode) error {
	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to read %s", src)
	}
	if err := e.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", filepath.Dir(dst))
	}
	if perm == 0 {
		perm = 0644
	}
	if err := e.fs.WriteFile(dst, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write %s", dst)
	}
	return nil
}
