package main

import (
	"os"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotkeep/pkg/config"
	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/filesystem"
	"github.com/arthur-debert/dotkeep/pkg/paths"
	"github.com/arthur-debert/dotkeep/pkg/profile"
	"github.com/arthur-debert/dotkeep/pkg/registry"
	"github.com/arthur-debert/dotkeep/pkg/resolver"
	"github.com/arthur-debert/dotkeep/pkg/types"
	"github.com/arthur-debert/dotkeep/pkg/ui"
)

// envPassphrase lets scripts pass the secrets passphrase without a prompt
const envPassphrase = "DOTKEEP_PASSPHRASE"

// app bundles the collaborators every command needs: filesystem, paths,
// merged config and the resolution context for this invocation.
type app struct {
	fs       types.FS
	paths    paths.Paths
	cfg      *config.Config
	ctx      profile.Context
	resolver *resolver.LayerResolver
}

func newApp() (*app, error) {
	fs := filesystem.NewOS()
	p := paths.New("")
	cfg, err := config.Load(p.ConfigFilePath())
	if err != nil {
		return nil, err
	}
	ctx := profile.Resolve(fs, p, flagProfile, cfg.Profile.Default)
	return &app{
		fs:       fs,
		paths:    p,
		cfg:      cfg,
		ctx:      ctx,
		resolver: resolver.New(fs, p, ctx),
	}, nil
}

func (a *app) renderer() (*ui.Renderer, error) {
	format, err := ui.ParseFormat(flagFormat)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid --format")
	}
	return ui.NewRenderer(os.Stdout, ui.ResolveFormat(format, os.Stdout)), nil
}

func (a *app) configStore() *registry.Store[types.ConfigEntry] {
	return registry.NewStore(a.fs, a.paths.ConfigsRegistryPath(), registry.DefaultConfigs)
}

func (a *app) packageStore() *registry.Store[types.PackageEntry] {
	return registry.NewStore(a.fs, a.paths.PackageRegistryPath(), registry.DefaultPackages)
}

func (a *app) secretStore() *registry.Store[types.SecretEntry] {
	return registry.NewStore(a.fs, a.paths.SecretsRegistryPath(), registry.DefaultSecrets)
}

// passphrase returns the secrets passphrase from the environment or an
// interactive prompt. Prompting fails when stdin is not a terminal.
func (a *app) passphrase() (string, error) {
	if pass := os.Getenv(envPassphrase); pass != "" {
		return pass, nil
	}
	pass, err := pterm.DefaultInteractiveTextInput.
		WithMask("*").
		Show("Passphrase")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInvalidInput,
			"no passphrase: set "+envPassphrase+" or run interactively")
	}
	if pass == "" {
		return "", errors.New(errors.ErrInvalidInput, "passphrase is empty")
	}
	return pass, nil
}
