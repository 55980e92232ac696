// Package validate runs read-only health checks over the dotkeep
// directory: registry documents, layer placement of tracked content,
// structured file formats and package-manager availability. Checks
// never modify anything; each finding carries a suggested fix.
package validate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/dotkeep/pkg/config"
	"github.com/arthur-debert/dotkeep/pkg/crypt"
	"github.com/arthur-debert/dotkeep/pkg/logging"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/resolver"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

// Severity ranks a finding. Only errors fail validation.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// Finding is one validation result.
type Finding struct {
	Severity Severity
	Check    string
	Message  string
	// Fix is a suggested remediation, usually a dotkeep command
	Fix string
}

// Report collects findings from a validation run.
type Report struct {
	Findings []Finding
}

func (r *Report) add(f Finding) {
	r.Findings = append(r.Findings, f)
}

// Errors returns the number of error-severity findings.
func (r *Report) Errors() int { return r.count(SeverityError) }

// Warnings returns the number of warning-severity findings.
func (r *Report) Warnings() int { return r.count(SeverityWarning) }

// HasErrors reports whether validation should fail the command.
func (r *Report) HasErrors() bool { return r.Errors() > 0 }

func (r *Report) count(s Severity) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == s {
			n++
		}
	}
	return n
}

// Runner executes the validation checks against one dotkeep directory.
type Runner struct {
	fs       types.FS
	paths    paths.Paths
	resolver *resolver.LayerResolver
	cfg      *config.Config
	cmdRun   types.CommandRunner
}

// NewRunner creates a validation runner for the given context.
func NewRunner(fs types.FS, p paths.Paths, res *resolver.LayerResolver, cfg *config.Config, cmdRun types.CommandRunner) *Runner {
	return &Runner{fs: fs, paths: p, resolver: res, cfg: cfg, cmdRun: cmdRun}
}

// Run executes every check and returns the combined report. A check
// that cannot run degrades to a warning instead of aborting the rest.
func (r *Runner) Run() *Report {
	log := logging.GetLogger("validate")
	report := &Report{}

	configs := r.checkConfigsRegistry(report)
	packages := r.checkPackagesRegistry(report)
	secrets := r.checkSecretsRegistry(report)
	r.checkProfilesDocument(report)

	if configs != nil {
		r.checkDuplicateSources(report, configs)
		r.checkLayerPlacement(report, configs)
		r.checkFormats(report, configs)
	}
	if packages != nil {
		r.checkPackageCommands(report, packages)
	}
	if secrets != nil {
		r.checkSecretPayloads(report, secrets)
	}

	log.Debug().Int("findings", len(report.Findings)).
		Int("errors", report.Errors()).Msg("validation complete")
	return report
}

func (r *Runner) checkConfigsRegistry(report *Report) *registry.Registry[types.ConfigEntry] {
	store := registry.NewStore(r.fs, r.paths.ConfigsRegistryPath(), registry.DefaultConfigs)
	reg, err := store.Peek()
	if err != nil {
		report.add(Finding{
			Severity: SeverityError,
			Check:    "registry",
			Message:  fmt.Sprintf("configs registry unreadable: %v", err),
			Fix:      "restore " + r.paths.ConfigsRegistryPath() + " from git history",
		})
		return nil
	}
	return reg
}

func (r *Runner) checkPackagesRegistry(report *Report) *registry.Registry[types.PackageEntry] {
	store := registry.NewStore(r.fs, r.paths.PackageRegistryPath(), registry.DefaultPackages)
	reg, err := store.Peek()
	if err != nil {
		report.add(Finding{
			Severity: SeverityError,
			Check:    "registry",
			Message:  fmt.Sprintf("package registry unreadable: %v", err),
			Fix:      "restore " + r.paths.PackageRegistryPath() + " from git history",
		})
		return nil
	}
	return reg
}

func (r *Runner) checkSecretsRegistry(report *Report) *registry.Registry[types.SecretEntry] {
	store := registry.NewStore(r.fs, r.paths.SecretsRegistryPath(), registry.DefaultSecrets)
	reg, err := store.Peek()
	if err != nil {
		report.add(Finding{
			Severity: SeverityError,
			Check:    "registry",
			Message:  fmt.Sprintf("secrets registry unreadable: %v", err),
			Fix:      "restore " + r.paths.SecretsRegistryPath() + " from git history",
		})
		return nil
	}
	return reg
}

func (r *Runner) checkProfilesDocument(report *Report) {
	if _, err := r.fs.Stat(r.paths.ProfilesPath()); err != nil {
		return
	}
	if _, err := profile.LoadProfiles(r.fs, r.paths.ProfilesPath()); err != nil {
		report.add(Finding{
			Severity: SeverityError,
			Check:    "profiles",
			Message:  fmt.Sprintf("profiles document unreadable: %v", err),
			Fix:      "run dotkeep profile upgrade if this is a pre-1.0 document",
		})
	}
}

func (r *Runner) checkDuplicateSources(report *Report, reg *registry.Registry[types.ConfigEntry]) {
	seen := make(map[string]string)
	for _, item := range reg.List() {
		src := item.Entry.SourcePath
		if other, dup := seen[src]; dup {
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "duplicates",
				Message:  fmt.Sprintf("entries %q and %q share source path %s", other, item.ID, src),
				Fix:      "remove one with dotkeep registry remove",
			})
			continue
		}
		seen[src] = item.ID
	}
}

func (r *Runner) checkLayerPlacement(report *Report, reg *registry.Registry[types.ConfigEntry]) {
	for _, item := range reg.List(registry.EnabledFilter[types.ConfigEntry](true)) {
		copies := r.resolver.ResolveAll(item.Entry.SourcePath)
		switch {
		case len(copies) == 0:
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "placement",
				Message:  fmt.Sprintf("%s has never been backed up", item.ID),
				Fix:      "run dotkeep backup",
			})
		case copies[0].Layer == types.LayerLegacy:
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "placement",
				Message:  fmt.Sprintf("%s only exists in the legacy flat layer", item.ID),
				Fix:      "run dotkeep migrate",
			})
		case len(copies) > 1:
			report.add(Finding{
				Severity: SeverityInfo,
				Check:    "placement",
				Message: fmt.Sprintf("%s exists in %d layers, %s wins",
					item.ID, len(copies), copies[0].Layer),
			})
		}

		if winner, err := r.resolver.ResolveSource(item.Entry.SourcePath); err == nil {
			r.checkNotSymlink(report, item.ID, winner)
		}
	}
}

// checkNotSymlink flags symlinks inside structured layers. Those layers
// hold real content; a link there silently tracks whatever it points at.
func (r *Runner) checkNotSymlink(report *Report, id string, src types.ResolvedSource) {
	if !src.Layer.Structured() {
		return
	}
	info, err := r.fs.Lstat(src.Path)
	if err != nil {
		return
	}
	if info.Mode()&os.ModeSymlink != 0 {
		report.add(Finding{
			Severity: SeverityWarning,
			Check:    "placement",
			Message:  fmt.Sprintf("%s is a symlink inside the %s layer", id, src.Layer),
			Fix:      "replace the link with the real file and re-run dotkeep backup",
		})
	}
}

func (r *Runner) checkFormats(report *Report, reg *registry.Registry[types.ConfigEntry]) {
	for _, item := range reg.List(registry.EnabledFilter[types.ConfigEntry](true)) {
		if item.Entry.Format == "" {
			continue
		}
		src, err := r.resolver.ResolveSource(item.Entry.SourcePath)
		if err != nil {
			continue
		}
		info, err := r.fs.Stat(src.Path)
		if err != nil || info.IsDir() {
			continue
		}
		data, err := r.fs.ReadFile(src.Path)
		if err != nil {
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "format",
				Message:  fmt.Sprintf("%s could not be read for format validation: %v", item.ID, err),
			})
			continue
		}
		if err := parseFormat(item.Entry.Format, data); err != nil {
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "format",
				Message: fmt.Sprintf("%s in the %s layer is not valid %s: %v",
					item.ID, src.Layer, item.Entry.Format, err),
				Fix: "fix the syntax error in " + src.Path,
			})
		}
	}
}

func parseFormat(format string, data []byte) error {
	switch format {
	case "json":
		var v interface{}
		return json.Unmarshal(data, &v)
	case "yaml":
		var v interface{}
		return yaml.Unmarshal(data, &v)
	case "toml":
		var v interface{}
		return toml.Unmarshal(data, &v)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func (r *Runner) checkPackageCommands(report *Report, reg *registry.Registry[types.PackageEntry]) {
	platform := types.CurrentPlatform()
	for _, item := range reg.List(registry.EnabledFilter[types.PackageEntry](true)) {
		if !item.Entry.SupportsPlatform(platform) {
			continue
		}
		if _, err := r.cmdRun.LookPath(item.Entry.Command); err != nil {
			report.add(Finding{
				Severity: SeverityInfo,
				Check:    "packages",
				Message:  fmt.Sprintf("%s: command %q not found on this machine", item.ID, item.Entry.Command),
				Fix:      "install it or disable with dotkeep packages toggle " + item.ID,
			})
		}
	}
}

func (r *Runner) checkSecretPayloads(report *Report, reg *registry.Registry[types.SecretEntry]) {
	for _, item := range reg.List(registry.EnabledFilter[types.SecretEntry](true)) {
		stored := crypt.StoredName(item.Entry.SourcePath,
			item.Entry.EncryptFilename || r.cfg.Secrets.EncryptNames)
		if _, err := r.resolver.ResolveEncrypted(stored); err != nil {
			report.add(Finding{
				Severity: SeverityWarning,
				Check:    "secrets",
				Message:  fmt.Sprintf("%s has no encrypted payload in any layer", item.ID),
				Fix:      "run dotkeep backup to capture it",
			})
		}
		if !filepath.IsAbs(item.Entry.TargetPath) {
			report.add(Finding{
				Severity: SeverityError,
				Check:    "secrets",
				Message:  fmt.Sprintf("%s target %q is not absolute", item.ID, item.Entry.TargetPath),
				Fix:      "fix the entry with dotkeep secrets remove and re-add",
			})
		}
	}
}
