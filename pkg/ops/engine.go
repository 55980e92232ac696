// Package ops implements the batch operations: backing tracked content
// up into the layered store, restoring it onto the machine, snapshotting
// package-manager lists and sealing secrets. Entries are processed by a
// bounded worker pool; one failing entry never aborts the batch.
package ops

import (
	"context"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/arthur-debert/dotkeep/pkg/config"
	"github.com/arthur-debert/dotkeep/pkg/crypt"
	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/resolver"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Engine runs batch operations against one dotkeep directory. It works
// on registry snapshots loaded by the caller; registries are never
// mutated here.
type Engine struct {
	fs       types.FS
	paths    paths.Paths
	resolver *resolver.LayerResolver
	cfg      *config.Config
	runner   types.CommandRunner
	dryRun   bool
}

// NewEngine creates a batch engine.
func NewEngine(fs types.FS, p paths.Paths, res *resolver.LayerResolver,
	cfg *config.Config, runner types.CommandRunner, dryRun bool) *Engine {
	return &Engine{
		fs:       fs,
		paths:    p,
		resolver: res,
		cfg:      cfg,
		runner:   runner,
		dryRun:   dryRun,
	}
}

// forEach runs fn for every item through a worker pool sized by the
// backup.workers setting. fn records its outcome in the report and only
// returns an error for context cancellation.
func forEach[E types.Settable[E]](ctx context.Context, workers int,
	items []registry.Item[E], fn func(registry.Item[E])) {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(item)
			return nil
		})
	}
	_ = g.Wait()
}

// BackupConfigs copies every enabled tracked file from its machine
// location into the active write layer.
func (e *Engine) BackupConfigs(ctx context.Context, reg *registry.Registry[types.ConfigEntry]) *types.BatchReport {
	log := logging.GetLogger("ops")
	report := &types.BatchReport{}
	root := e.resolver.WriteRoot()

	forEach(ctx, e.cfg.Backup.Workers, reg.Enabled(), func(item registry.Item[types.ConfigEntry]) {
		target, err := resolver.ResolveTarget(item.Entry.TargetPath)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		if _, err := e.fs.Stat(target); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSkipped, Detail: "not present on this machine"})
			return
		}
		dest := filepath.Join(root, item.Entry.SourcePath)
		if e.dryRun {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSuccess, Detail: "would copy to " + dest})
			return
		}
		if err := e.copyPath(target, dest); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		log.Debug().Str("entry", item.ID).Str("dest", dest).Msg("backed up")
		report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
			Outcome: types.OutcomeSuccess})
	})
	return report
}

// BackupPackages snapshots each enabled package manager's installed
// list into backup/packages/. Managers not installed on this machine
// are skipped, as are entries for other platforms.
func (e *Engine) BackupPackages(ctx context.Context, reg *registry.Registry[types.PackageEntry]) *types.BatchReport {
	report := &types.BatchReport{}
	platform := types.CurrentPlatform()

	forEach(ctx, e.cfg.Backup.Workers, reg.Enabled(), func(item registry.Item[types.PackageEntry]) {
		if err := resolver.EnsurePlatform(item.Entry.Platforms, platform); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSkipped, Detail: err.Error()})
			return
		}
		if _, err := e.runner.LookPath(item.Entry.Command); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSkipped, Detail: item.Entry.Command + " not installed"})
			return
		}
		outFile := filepath.Join(e.paths.PackagesDir(), item.Entry.OutputFile)
		if e.dryRun {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSuccess, Detail: "would write " + outFile})
			return
		}
		out, err := e.runner.Run(item.Entry.Command, item.Entry.Args...)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		if err := e.writeFile(outFile, out, 0644); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
			Outcome: types.OutcomeSuccess})
	})
	return report
}

// BackupSecrets seals each enabled secret with the passphrase and
// stores it under the write layer's encrypted/ directory. Plaintext
// never lands in a layer.
func (e *Engine) BackupSecrets(ctx context.Context, reg *registry.Registry[types.SecretEntry], passphrase string) *types.BatchReport {
	report := &types.BatchReport{}
	encDir := filepath.Join(e.resolver.WriteRoot(), paths.EncryptedDirName)

	forEach(ctx, e.cfg.Backup.Workers, reg.Enabled(), func(item registry.Item[types.SecretEntry]) {
		if _, err := e.fs.Stat(item.Entry.TargetPath); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSkipped, Detail: "not present on this machine"})
			return
		}
		stored := crypt.StoredName(item.Entry.SourcePath, e.encryptNames(item.Entry))
		dest := filepath.Join(encDir, stored)
		if e.dryRun {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSuccess, Detail: "would seal to " + dest})
			return
		}
		plaintext, err := e.fs.ReadFile(item.Entry.TargetPath)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		sealed, err := crypt.Encrypt(plaintext, passphrase)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		if err := e.writeFile(dest, sealed, 0600); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
			Outcome: types.OutcomeSuccess})
	})
	return report
}

// RestoreConfigs copies each enabled entry's winning layer copy back to
// its machine location. Entries with no copy in any layer are skipped.
func (e *Engine) RestoreConfigs(ctx context.Context, reg *registry.Registry[types.ConfigEntry]) *types.BatchReport {
	report := &types.BatchReport{}

	forEach(ctx, e.cfg.Backup.Workers, reg.Enabled(), func(item registry.Item[types.ConfigEntry]) {
		src, err := e.resolver.ResolveSource(item.Entry.SourcePath)
		if err != nil {
			if errors.IsCode(err, errors.ErrNotFound) {
				report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
					Outcome: types.OutcomeSkipped, Detail: "no copy in any layer"})
				return
			}
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		target, err := resolver.ResolveTarget(item.Entry.TargetPath)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		if e.dryRun {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSuccess,
				Detail:  "would copy " + string(src.Layer) + " copy to " + target})
			return
		}
		if err := e.copyPath(src.Path, target); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
			Outcome: types.OutcomeSuccess, Detail: "from " + string(src.Layer) + " layer"})
	})
	return report
}

// RestoreSecrets opens each enabled secret's sealed payload and writes
// the plaintext to its absolute target with owner-only permissions.
func (e *Engine) RestoreSecrets(ctx context.Context, reg *registry.Registry[types.SecretEntry], passphrase string) *types.BatchReport {
	report := &types.BatchReport{}

	forEach(ctx, e.cfg.Backup.Workers, reg.Enabled(), func(item registry.Item[types.SecretEntry]) {
		stored := crypt.StoredName(item.Entry.SourcePath, e.encryptNames(item.Entry))
		src, err := e.resolver.ResolveEncrypted(stored)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSkipped, Detail: "no sealed payload in any layer"})
			return
		}
		if e.dryRun {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeSuccess, Detail: "would restore to " + item.Entry.TargetPath})
			return
		}
		sealed, err := e.fs.ReadFile(src.Path)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		plaintext, err := crypt.Decrypt(sealed, passphrase)
		if err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		if err := e.writeFile(item.Entry.TargetPath, plaintext, 0600); err != nil {
			report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
				Outcome: types.OutcomeFailed, Detail: err.Error()})
			return
		}
		report.Add(types.EntryResult{ID: item.ID, Name: item.Entry.Name,
			Outcome: types.OutcomeSuccess})
	})
	return report
}

// encryptNames resolves the per-entry filename hashing flag against the
// global setting. Either turns it on.
func (e *Engine) encryptNames(entry types.SecretEntry) bool {
	return entry.EncryptFilename || e.cfg.Secrets.EncryptNames
}

func (e *Engine) writeFile(path string, data []byte, perm os.FileMode) error {
	if err := e.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to create %s", filepath.Dir(path))
	}
	if err := e.fs.WriteFile(path, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to write %s", path)
	}
	return nil
}

func (e *Engine) copyPath(src, dst string) error {
	info, err := e.fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to stat %s", src)
	}
	if info.IsDir() {
		entries, err := e.fs.ReadDir(src)
		if err != nil {
			return errors.Wrapf(err, errors.ErrIO, "failed to read %s", src)
		}
		if err := e.fs.MkdirAll(dst, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "failed to create %s", dst)
		}
		for _, entry := range entries {
			if err := e.copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	data, err := e.fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIO, "failed to read %s", src)
	}
	perm := info.Mode().Perm()
	if perm == 0 {
		perm = 0644
	}
	return e.writeFile(dst, data, perm)
}
