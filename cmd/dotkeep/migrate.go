package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotkeep/pkg/errors"
	"github.com/arthur-debert/dotkeep/pkg/migrate"
	"github.com/arthur-debert/dotkeep/pkg/types"
)

var (
	migrateTo    string
	migratePrune bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move legacy flat-layer content into the structured layers",
	Long: `Copy tracked entries sitting at the top of the backup directory into
a structured layer. Only enabled registry entries move, entries already
present in any structured layer are skipped, and originals stay in
place unless --prune is given. Symlinks are replaced by the content
they point at.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		target := migrateTo
		if target == "" {
			target = a.cfg.Migrate.Target
		}
		opts := migrate.Options{Prune: migratePrune}
		switch target {
		case "common", "":
			opts.Target = types.LayerCommon
		case "machine":
			if !a.ctx.HasMachine() {
				return errors.New(errors.ErrAmbiguousContext,
					"hostname unknown, cannot migrate into the machine layer")
			}
			opts.Target = types.LayerMachine
			opts.TargetName = a.ctx.Machine
		case "profile":
			if !a.ctx.HasProfile() {
				return errors.New(errors.ErrAmbiguousContext,
					"no active profile, run dotkeep use first or pass --profile")
			}
			opts.Target = types.LayerProfile
			opts.TargetName = a.ctx.Profile
		default:
			return errors.Newf(errors.ErrInvalidInput,
				"unknown migration target %q (valid: common, machine, profile)", target)
		}

		engine, err := migrate.New(a.fs, a.paths, opts)
		if err != nil {
			return err
		}
		configs, err := a.configStore().Peek()
		if err != nil {
			return err
		}
		plan, err := engine.Plan(configs)
		if err != nil {
			return err
		}

		if dryRun {
			for _, action := range plan.Actions {
				if action.Kind == migrate.ActionSkip {
					fmt.Printf("  skip  %s (%s)\n", action.Rel, action.Reason)
					continue
				}
				verb := "copy"
				if action.Symlink {
					verb = "deref"
				}
				fmt.Printf("  %-5s %s -> %s\n", verb, action.Rel, action.Dest)
			}
			fmt.Printf("would migrate %d item(s)\n", plan.Copies())
			return nil
		}

		report := engine.Apply(plan)
		fmt.Printf("migrated %d, skipped %d, converted %d symlink(s), pruned %d\n",
			len(report.Moved), len(report.Skipped), len(report.Converted), len(report.Pruned))
		if report.HasFailures() {
			for _, f := range report.Failed {
				fmt.Printf("  failed %s: %v\n", f.Rel, f.Err)
			}
			return errors.New(errors.ErrMigrationConflict, "some items failed to migrate")
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "Target layer (common, machine, profile)")
	migrateCmd.Flags().BoolVar(&migratePrune, "prune", false, "Remove legacy originals after a successful copy")

	rootCmd.AddCommand(migrateCmd)
}
