package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/ops"
	"github.com/arthur-debert/dotkeep/pkg/system"
)

var backupSkipSecrets bool

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Copy tracked content into the layered store",
	Long: `Copy every enabled tracked file from this machine into the active
write layer, snapshot package-manager lists and seal secrets. The write
layer is the active profile's directory, or the common layer when no
profile is active.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}

		configs, err := a.configStore().Load()
		if err != nil {
			return err
		}
		packages, err := a.packageStore().Load()
		if err != nil {
			return err
		}

		engine := ops.NewEngine(a.fs, a.paths, a.resolver, a.cfg, system.NewRunner(), dryRun)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		failed := false
		report := engine.BackupConfigs(ctx, configs)
		failed = failed || report.HasFailures()
		if err := renderer.BatchReport("configs", report); err != nil {
			return err
		}

		report = engine.BackupPackages(ctx, packages)
		failed = failed || report.HasFailures()
		if err := renderer.BatchReport("packages", report); err != nil {
			return err
		}

		if !backupSkipSecrets && !a.cfg.Backup.SkipSecrets {
			secrets, err := a.secretStore().Load()
			if err != nil {
				return err
			}
			if len(secrets.Enabled()) > 0 {
				pass := ""
				if !dryRun {
					if pass, err = a.passphrase(); err != nil {
						return err
					}
				}
				report = engine.BackupSecrets(ctx, secrets, pass)
				failed = failed || report.HasFailures()
				if err := renderer.BatchReport("secrets", report); err != nil {
					return err
				}
			}
		}

		if failed {
			return errors.New(errors.ErrInternal, "some entries failed, see report above")
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Copy tracked content from the layered store onto this machine",
	Long: `Resolve every enabled tracked file through the layer priority
(profile, machine, common, legacy) and copy the winning copy to its
target location. Secrets are decrypted and written with owner-only
permissions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		renderer, err := a.renderer()
		if err != nil {
			return err
		}

		configs, err := a.configStore().Load()
		if err != nil {
			return err
		}
		secrets, err := a.secretStore().Load()
		if err != nil {
			return err
		}

		engine := ops.NewEngine(a.fs, a.paths, a.resolver, a.cfg, system.NewRunner(), dryRun)
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		failed := false
		report := engine.RestoreConfigs(ctx, configs)
		failed = failed || report.HasFailures()
		if err := renderer.BatchReport("configs", report); err != nil {
			return err
		}

		if len(secrets.Enabled()) > 0 {
			pass := ""
			if !dryRun {
				if pass, err = a.passphrase(); err != nil {
					return err
				}
			}
			report = engine.RestoreSecrets(ctx, secrets, pass)
			failed = failed || report.HasFailures()
			if err := renderer.BatchReport("secrets", report); err != nil {
				return err
			}
		}

		if failed {
			return errors.New(errors.ErrInternal, "some entries failed, see report above")
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().BoolVar(&backupSkipSecrets, "skip-secrets", false, "Do not back up secrets")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}
